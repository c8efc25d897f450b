package composer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLockfile(t *testing.T, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), "composer.lock")
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	return filePath
}

func TestReadLockfile(t *testing.T) {
	assert := assert.New(t)

	filePath := writeLockfile(t, `{
		"packages": [
			{"name": "acme/widget", "version": "v1.2.3"},
			{"name": "acme/gadget", "version": "2.0.0"}
		],
		"packages-dev": [
			{"name": "phpunit/phpunit", "version": "v10.5.0"}
		]
	}`)

	queries, err := ReadLockfile(filePath, false)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal("acme/widget", queries[0].Name)
	assert.Equal("v1.2.3", queries[0].CurrentVersion)
	assert.False(queries[0].IsDev)
	assert.Equal("acme/gadget", queries[1].Name)
}

func TestReadLockfileWithDevPackages(t *testing.T) {
	assert := assert.New(t)

	filePath := writeLockfile(t, `{
		"packages": [{"name": "acme/widget", "version": "v1.2.3"}],
		"packages-dev": [{"name": "phpunit/phpunit", "version": "v10.5.0"}]
	}`)

	queries, err := ReadLockfile(filePath, true)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal("phpunit/phpunit", queries[1].Name)
	assert.True(queries[1].IsDev)
}

func TestReadLockfileMissingFile(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadLockfile(filepath.Join(t.TempDir(), "composer.lock"), false)
	assert.Error(err)
}

func TestReadLockfileInvalidJson(t *testing.T) {
	assert := assert.New(t)

	filePath := writeLockfile(t, "{not json")
	_, err := ReadLockfile(filePath, false)
	assert.Error(err)
}

func TestReadLockfileInvalidPackageName(t *testing.T) {
	assert := assert.New(t)

	filePath := writeLockfile(t, `{"packages": [{"name": "no-vendor-part", "version": "v1.0.0"}]}`)
	_, err := ReadLockfile(filePath, false)
	assert.ErrorContains(err, "no-vendor-part")
}

func TestReadLockfileEmptySections(t *testing.T) {
	assert := assert.New(t)

	filePath := writeLockfile(t, `{}`)
	queries, err := ReadLockfile(filePath, true)
	require.NoError(t, err)
	assert.Empty(queries)
}
