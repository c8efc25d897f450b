package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePackageName(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(ValidatePackageName("acme/widget"))
	assert.NoError(ValidatePackageName("symfony/http-kernel"))
	assert.NoError(ValidatePackageName("phpstan/phpstan-phpunit"))
	assert.NoError(ValidatePackageName("acme/widget_extra.tools"))

	assert.Error(ValidatePackageName(""))
	assert.Error(ValidatePackageName("no-vendor-part"))
	assert.Error(ValidatePackageName("Acme/Widget"))
	assert.Error(ValidatePackageName("acme/"))
	assert.Error(ValidatePackageName("/widget"))
	assert.Error(ValidatePackageName("acme/widget/extra"))
}

func TestPackageMatchesPattern(t *testing.T) {
	assert := assert.New(t)

	isMatch, err := PackageMatchesPattern("symfony/http-kernel", "symfony/*")
	require.NoError(t, err)
	assert.True(isMatch)

	isMatch, err = PackageMatchesPattern("acme/widget", "symfony/*", "acme/widget")
	require.NoError(t, err)
	assert.True(isMatch)

	isMatch, err = PackageMatchesPattern("acme/widget", "symfony/*")
	require.NoError(t, err)
	assert.False(isMatch)

	isMatch, err = PackageMatchesPattern("acme/widget")
	require.NoError(t, err)
	assert.False(isMatch)
}

func TestPackageQueryString(t *testing.T) {
	assert := assert.New(t)

	query := &PackageQuery{Name: "acme/widget", CurrentVersion: "v1.2.3", IsDev: true}
	assert.Equal("{name: acme/widget, version: v1.2.3, dev}", query.String())

	bare := &PackageQuery{Name: "acme/widget"}
	assert.Equal("{name: acme/widget}", bare.String())
}

func TestCountString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0 packages", CountString([]int{}, "package"))
	assert.Equal("1 package", CountString([]int{1}, "package"))
	assert.Equal("3 packages", CountString([]int{1, 2, 3}, "package"))
}

func TestHostRuleExpansion(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("PKGSTALE_TEST_TOKEN", "secret-token")
	rule := &HostRule{MatchHost: "repo.example.com", Token: "${PKGSTALE_TEST_TOKEN}"}
	assert.Equal("secret-token", rule.TokenExpanded())

	plain := &HostRule{Username: "user", Password: "pass"}
	assert.Equal("user", plain.UsernameExpanded())
	assert.Equal("pass", plain.PasswordExpanded())
}
