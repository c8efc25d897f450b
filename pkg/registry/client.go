package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenk/backoff"
	"github.com/pkgstale/pkgstale/pkg/common"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const DefaultRegistryUrl = "https://repo.packagist.org"

const userAgent = "pkgstale"

// Returned when the registry does not know the requested package. This is
// terminal, such a lookup is never retried.
var ErrPackageNotFound = errors.New("package not found in registry")

type ClientSettings struct {
	// The logger to use for the client.
	Logger *slog.Logger
	// The base url of the registry. Defaults to the public Packagist metadata url.
	RegistryUrl string
	// The maximum number of requests that are in flight at the same time. Defaults to 5.
	MaxConcurrentRequests int
	// The number of attempts per package before giving up. Defaults to 3.
	RetryAttempts int
	// The delay before the first retry. Defaults to 1 second.
	RetryBaseDelay time.Duration
	// The factor by which the retry delay grows per attempt. Defaults to 1.5.
	RetryMultiplier float64
	// The maximum number of requests within a rolling minute. Defaults to 60.
	MaxRequestsPerMinute int
	// The timeout for establishing a connection. Defaults to 10 seconds.
	ConnectTimeout time.Duration
	// The timeout for a whole request. Defaults to 30 seconds.
	RequestTimeout time.Duration
	// Host rules that might apply when talking to the registry.
	HostRules []*common.HostRule
}

// A client for the Packagist metadata (p2) endpoint. Lookups are batched with a
// bounded number of in-flight requests, each request is retried with exponential
// backoff, and a process-wide rolling-minute rate limit plus a circuit breaker
// protect the registry from hammering.
type RegistryClient struct {
	settings   *ClientSettings
	logger     *slog.Logger
	httpClient *http.Client
	breaker    *circuit.Breaker
	limiter    *rateLimiter
}

func NewRegistryClient(settings *ClientSettings) *RegistryClient {
	if settings == nil {
		settings = &ClientSettings{}
	}
	if settings.Logger == nil {
		settings.Logger = slog.Default()
	}
	if settings.RegistryUrl == "" {
		settings.RegistryUrl = DefaultRegistryUrl
	}
	settings.RegistryUrl = strings.TrimSuffix(settings.RegistryUrl, "/")
	if settings.MaxConcurrentRequests <= 0 {
		settings.MaxConcurrentRequests = 5
	}
	if settings.RetryAttempts <= 0 {
		settings.RetryAttempts = 3
	}
	if settings.RetryBaseDelay <= 0 {
		settings.RetryBaseDelay = 1 * time.Second
	}
	if settings.RetryMultiplier <= 0 {
		settings.RetryMultiplier = 1.5
	}
	if settings.MaxRequestsPerMinute <= 0 {
		settings.MaxRequestsPerMinute = 60
	}
	if settings.ConnectTimeout <= 0 {
		settings.ConnectTimeout = 10 * time.Second
	}
	if settings.RequestTimeout <= 0 {
		settings.RequestTimeout = 30 * time.Second
	}

	dialer := &net.Dialer{Timeout: settings.ConnectTimeout}
	httpClient := &http.Client{
		Timeout: settings.RequestTimeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: settings.ConnectTimeout,
			MaxIdleConnsPerHost: settings.MaxConcurrentRequests,
		},
	}

	// The breaker trips after consecutive failures and recovers with its own backoff
	breakerBackoff := backoff.NewExponentialBackOff()
	breakerBackoff.InitialInterval = 30 * time.Second
	breakerBackoff.MaxInterval = 5 * time.Minute
	breakerBackoff.Multiplier = 2.0
	breakerBackoff.Reset()
	breaker := circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    breakerBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})

	return &RegistryClient{
		settings:   settings,
		logger:     settings.Logger.With(slog.String("registry", settings.RegistryUrl)),
		httpClient: httpClient,
		breaker:    breaker,
		limiter:    newRateLimiter(settings.MaxRequestsPerMinute, 1*time.Minute),
	}
}

// Fetches the release information for a single package. Transient failures are
// retried with exponential backoff, a missing package fails immediately with
// ErrPackageNotFound.
func (c *RegistryClient) FetchOne(ctx context.Context, query *common.PackageQuery) (*common.ReleaseInfo, error) {
	delaySchedule := c.newDelaySchedule()
	var lastErr error
	for attempt := 1; attempt <= c.settings.RetryAttempts; attempt++ {
		if attempt > 1 {
			delay := delaySchedule.NextBackOff()
			c.logger.Debug(fmt.Sprintf("Retrying '%s' in %s", query.Name, delay), slog.Int("attempt", attempt))
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		releaseInfo, err := c.fetchOnce(ctx, query)
		if err == nil {
			return releaseInfo, nil
		}
		if errors.Is(err, ErrPackageNotFound) {
			return nil, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed fetching '%s' after %d attempts: %w", query.Name, c.settings.RetryAttempts, lastErr)
}

// Fetches the release information for many packages. The queries are processed
// in batches of at most MaxConcurrentRequests, each batch is fully joined before
// the next one starts. A package that cannot be resolved maps to "nil", the
// batch as a whole never fails.
func (c *RegistryClient) FetchMany(ctx context.Context, queries []*common.PackageQuery) map[string]*common.ReleaseInfo {
	results := make(map[string]*common.ReleaseInfo, len(queries))
	for _, batch := range lo.Chunk(queries, c.settings.MaxConcurrentRequests) {
		batchResults := make([]*common.ReleaseInfo, len(batch))
		group, groupCtx := errgroup.WithContext(ctx)
		for i, query := range batch {
			group.Go(func() error {
				releaseInfo, err := c.FetchOne(groupCtx, query)
				if err != nil {
					if errors.Is(err, ErrPackageNotFound) {
						c.logger.Debug(fmt.Sprintf("Package '%s' not found in registry", query.Name))
					} else {
						c.logger.Warn(fmt.Sprintf("Failed fetching '%s': %v", query.Name, err))
					}
					return nil
				}
				batchResults[i] = releaseInfo
				return nil
			})
		}
		// The goroutines never return an error, the per-package failures degrade to nil
		_ = group.Wait()
		for i, query := range batch {
			results[query.Name] = batchResults[i]
		}
	}
	return results
}

////////////////////////////////////////////////////////////
// Internal
////////////////////////////////////////////////////////////

func (c *RegistryClient) fetchOnce(ctx context.Context, query *common.PackageQuery) (*common.ReleaseInfo, error) {
	// Wait for a rate limit slot before doing anything
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if !c.breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for '%s'", c.settings.RegistryUrl)
	}

	requestUrl, err := url.JoinPath(c.settings.RegistryUrl, "p2", query.Name+".json")
	if err != nil {
		return nil, err
	}

	var bodyBytes []byte
	notFound := false
	err = c.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)
		c.applyHostRule(req)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			// Not a registry health problem, do not count it against the breaker
			notFound = true
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code %d for '%s'", resp.StatusCode, requestUrl)
		}
		bodyBytes, err = io.ReadAll(resp.Body)
		return err
	}, 0)
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, query.Name)
	}

	// Parse the response, it must be an object with a "packages" member
	var jsonData packagistResponse
	if err := json.Unmarshal(bodyBytes, &jsonData); err != nil {
		return nil, fmt.Errorf("failed parsing the response for '%s': %w", query.Name, err)
	}
	if jsonData.Packages == nil {
		return nil, fmt.Errorf("unexpected response shape for '%s'", query.Name)
	}
	versions, ok := jsonData.Packages[query.Name]
	if !ok || len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, query.Name)
	}

	return buildReleaseInfo(query, versions), nil
}

func (c *RegistryClient) newDelaySchedule() backoff.BackOff {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.settings.RetryBaseDelay
	expBackoff.Multiplier = c.settings.RetryMultiplier
	expBackoff.RandomizationFactor = 0
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.MaxElapsedTime = 0
	expBackoff.Reset()
	return expBackoff
}

func (c *RegistryClient) applyHostRule(req *http.Request) {
	for _, hostRule := range c.settings.HostRules {
		if !strings.Contains(req.URL.Host, hostRule.MatchHost) {
			continue
		}
		if token := hostRule.TokenExpanded(); token != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		} else if hostRule.Username != "" && hostRule.Password != "" {
			req.SetBasicAuth(hostRule.UsernameExpanded(), hostRule.PasswordExpanded())
		}
		return
	}
}
