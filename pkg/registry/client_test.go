package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkgstale/pkgstale/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(serverUrl string, adjust func(settings *ClientSettings)) *RegistryClient {
	settings := &ClientSettings{
		RegistryUrl:          serverUrl,
		RetryBaseDelay:       1 * time.Millisecond,
		MaxRequestsPerMinute: 10000,
	}
	if adjust != nil {
		adjust(settings)
	}
	return NewRegistryClient(settings)
}

func packageBody(name string) string {
	return fmt.Sprintf(`{"packages":{"%s":[
		{"version":"v2.0.0","version_normalized":"2.0.0.0","time":"2024-06-01T00:00:00+00:00"},
		{"version":"v1.2.3","version_normalized":"1.2.3.0","time":"2024-01-01T00:00:00+00:00"},
		{"version":"v3.0.0-beta1","version_normalized":"3.0.0.0-beta1","time":"2024-07-01T00:00:00+00:00"}
	]}}`, name)
}

func TestFetchOne(t *testing.T) {
	assert := assert.New(t)

	requestCount := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		assert.Equal("/p2/acme/widget.json", r.URL.Path)
		fmt.Fprint(w, packageBody("acme/widget"))
	}))
	defer server.Close()

	client := testClient(server.URL, nil)
	releaseInfo, err := client.FetchOne(context.Background(), &common.PackageQuery{Name: "acme/widget", CurrentVersion: "v1.2.3"})
	require.NoError(t, err)
	assert.Equal("acme/widget", releaseInfo.PackageName)
	assert.True(releaseInfo.ReleaseDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	// The beta is newer but unstable, so the latest stable version wins
	assert.Equal("v2.0.0", releaseInfo.LatestVersion)
	assert.True(releaseInfo.LatestReleaseDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(int32(1), atomic.LoadInt32(&requestCount))
}

func TestNotFoundIsNotRetried(t *testing.T) {
	assert := assert.New(t)

	requestCount := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server.URL, nil)
	_, err := client.FetchOne(context.Background(), &common.PackageQuery{Name: "acme/missing", CurrentVersion: "v1.0.0"})
	assert.ErrorIs(err, ErrPackageNotFound)
	assert.Equal(int32(1), atomic.LoadInt32(&requestCount))
}

func TestTransientFailureIsRetried(t *testing.T) {
	assert := assert.New(t)

	requestCount := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, packageBody("acme/widget"))
	}))
	defer server.Close()

	client := testClient(server.URL, nil)
	releaseInfo, err := client.FetchOne(context.Background(), &common.PackageQuery{Name: "acme/widget", CurrentVersion: "v1.2.3"})
	require.NoError(t, err)
	assert.NotNil(releaseInfo)
	assert.Equal(int32(3), atomic.LoadInt32(&requestCount))
}

func TestRetryDelaysGrowExponentially(t *testing.T) {
	assert := assert.New(t)

	client := NewRegistryClient(&ClientSettings{
		RetryBaseDelay:  100 * time.Millisecond,
		RetryMultiplier: 1.5,
	})

	// Without jitter the schedule is exactly base * multiplier^(n-1)
	delaySchedule := client.newDelaySchedule()
	assert.Equal(100*time.Millisecond, delaySchedule.NextBackOff())
	assert.Equal(150*time.Millisecond, delaySchedule.NextBackOff())
	assert.Equal(225*time.Millisecond, delaySchedule.NextBackOff())

	// Every call produces a fresh schedule that starts at the base again
	assert.Equal(100*time.Millisecond, client.newDelaySchedule().NextBackOff())
}

func TestExhaustedRetries(t *testing.T) {
	assert := assert.New(t)

	requestCount := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL, func(settings *ClientSettings) { settings.RetryAttempts = 2 })
	_, err := client.FetchOne(context.Background(), &common.PackageQuery{Name: "acme/widget", CurrentVersion: "v1.2.3"})
	assert.Error(err)
	assert.NotErrorIs(err, ErrPackageNotFound)
	assert.Contains(err.Error(), "after 2 attempts")
	assert.Equal(int32(2), atomic.LoadInt32(&requestCount))
}

func TestMalformedBodyIsTransient(t *testing.T) {
	assert := assert.New(t)

	requestCount := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		// An array is not a valid metadata object
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	client := testClient(server.URL, func(settings *ClientSettings) { settings.RetryAttempts = 2 })
	_, err := client.FetchOne(context.Background(), &common.PackageQuery{Name: "acme/widget", CurrentVersion: "v1.2.3"})
	assert.Error(err)
	assert.Equal(int32(2), atomic.LoadInt32(&requestCount))
}

func TestFetchManyBoundsConcurrency(t *testing.T) {
	assert := assert.New(t)

	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0
	totalRequests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		totalRequests++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		time.Sleep(30 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		name := r.URL.Path[len("/p2/") : len(r.URL.Path)-len(".json")]
		fmt.Fprint(w, packageBody(name))
	}))
	defer server.Close()

	queries := []*common.PackageQuery{}
	for i := 0; i < 7; i++ {
		queries = append(queries, &common.PackageQuery{Name: fmt.Sprintf("acme/pkg%d", i), CurrentVersion: "v1.2.3"})
	}

	client := testClient(server.URL, func(settings *ClientSettings) { settings.MaxConcurrentRequests = 5 })
	results := client.FetchMany(context.Background(), queries)

	assert.Len(results, 7)
	for _, query := range queries {
		assert.NotNil(results[query.Name])
	}
	assert.Equal(7, totalRequests)
	assert.LessOrEqual(maxInFlight, 5)
	assert.Greater(maxInFlight, 1)
}

func TestFetchManyDegradesToNil(t *testing.T) {
	assert := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/p2/acme/missing.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		name := r.URL.Path[len("/p2/") : len(r.URL.Path)-len(".json")]
		fmt.Fprint(w, packageBody(name))
	}))
	defer server.Close()

	client := testClient(server.URL, nil)
	results := client.FetchMany(context.Background(), []*common.PackageQuery{
		{Name: "acme/widget", CurrentVersion: "v1.2.3"},
		{Name: "acme/missing", CurrentVersion: "v1.0.0"},
	})

	assert.Len(results, 2)
	assert.NotNil(results["acme/widget"])
	assert.Nil(results["acme/missing"])
}
