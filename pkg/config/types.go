package config

import (
	"fmt"
	"time"

	"github.com/pkgstale/pkgstale/pkg/age"
	"github.com/pkgstale/pkgstale/pkg/common"
)

// This type represents the pkgstale config object. All scalar settings are
// pointers so that merging can distinguish "unset" from an explicit value.
type PkgstaleConfig struct {
	// The age thresholds used for bucketing.
	Thresholds *ThresholdConfig `json:"thresholds" yaml:"thresholds"`
	// Settings for the registry client.
	Registry *RegistryConfig `json:"registry" yaml:"registry"`
	// Settings for the release cache.
	Cache *CacheConfig `json:"cache" yaml:"cache"`
	// A list of package name patterns that are excluded from the report.
	IgnorePatterns []string `json:"ignorePatterns" yaml:"ignorePatterns"`
	// An optional path to a file with patterns, only matching packages are reported.
	WhitelistFile string `json:"whitelistFile" yaml:"whitelistFile"`
	// A flag that controls if dev packages are included. Defaults to true.
	IncludeDev *bool `json:"includeDev" yaml:"includeDev"`
	// Never talk to the registry, use only the cache.
	Offline *bool `json:"offline" yaml:"offline"`
	// The output format of the report.
	Output common.OutputFormat `json:"output" yaml:"output"`
	// A list of rules that apply to registry hosts.
	HostRules []*common.HostRule `json:"hostRules" yaml:"hostRules"`
}

type ThresholdConfig struct {
	CurrentYears *float64 `json:"currentYears" yaml:"currentYears"`
	MediumYears  *float64 `json:"mediumYears" yaml:"mediumYears"`
	OldYears     *float64 `json:"oldYears" yaml:"oldYears"`
}

type RegistryConfig struct {
	// The base url of the registry.
	Url string `json:"url" yaml:"url"`
	// The maximum number of concurrent requests per batch.
	MaxConcurrentRequests *int `json:"maxConcurrentRequests" yaml:"maxConcurrentRequests"`
	// The number of attempts per package.
	RetryAttempts *int `json:"retryAttempts" yaml:"retryAttempts"`
	// The growth factor of the retry delay.
	RetryMultiplier *float64 `json:"retryMultiplier" yaml:"retryMultiplier"`
	// The delay before the first retry, in seconds.
	RetryBaseDelaySeconds *float64 `json:"retryBaseDelaySeconds" yaml:"retryBaseDelaySeconds"`
	// The request quota within a rolling minute.
	MaxRequestsPerMinute *int `json:"maxRequestsPerMinute" yaml:"maxRequestsPerMinute"`
}

type CacheConfig struct {
	// The path of the cache file.
	File string `json:"file" yaml:"file"`
	// The time-to-live of cache entries, in hours.
	TtlHours *float64 `json:"ttlHours" yaml:"ttlHours"`
	// Disables the cache entirely.
	Disabled *bool `json:"disabled" yaml:"disabled"`
}

// Builds the concrete thresholds, falling back to the defaults per field.
func (c *PkgstaleConfig) BuildThresholds() age.Thresholds {
	thresholds := age.DefaultThresholds()
	if c.Thresholds != nil {
		if c.Thresholds.CurrentYears != nil {
			thresholds.CurrentYears = *c.Thresholds.CurrentYears
		}
		if c.Thresholds.MediumYears != nil {
			thresholds.MediumYears = *c.Thresholds.MediumYears
		}
		if c.Thresholds.OldYears != nil {
			thresholds.OldYears = *c.Thresholds.OldYears
		}
	}
	return thresholds
}

func (c *PkgstaleConfig) CacheTtl() time.Duration {
	if c.Cache != nil && c.Cache.TtlHours != nil {
		return time.Duration(*c.Cache.TtlHours * float64(time.Hour))
	}
	return 0
}

func (c *PkgstaleConfig) CacheDisabled() bool {
	return c.Cache != nil && c.Cache.Disabled != nil && *c.Cache.Disabled
}

func (c *PkgstaleConfig) IsOffline() bool {
	return c.Offline != nil && *c.Offline
}

func (c *PkgstaleConfig) WithDevPackages() bool {
	return c.IncludeDev == nil || *c.IncludeDev
}

func (c *PkgstaleConfig) OutputFormat() common.OutputFormat {
	if c.Output == "" {
		return common.OUTPUT_FORMAT_TABLE
	}
	return c.Output
}

// Validates the config. This runs before any network activity, violations are
// fatal for the whole command.
func (c *PkgstaleConfig) Validate() error {
	if err := c.BuildThresholds().Validate(); err != nil {
		return err
	}
	switch c.OutputFormat() {
	case common.OUTPUT_FORMAT_TABLE, common.OUTPUT_FORMAT_JSON, common.OUTPUT_FORMAT_MARKDOWN, common.OUTPUT_FORMAT_SUMMARY:
	default:
		return fmt.Errorf("unknown output format '%s'", c.Output)
	}
	if c.Registry != nil {
		if c.Registry.MaxConcurrentRequests != nil && *c.Registry.MaxConcurrentRequests < 1 {
			return fmt.Errorf("maxConcurrentRequests must be at least 1")
		}
		if c.Registry.RetryAttempts != nil && *c.Registry.RetryAttempts < 1 {
			return fmt.Errorf("retryAttempts must be at least 1")
		}
		if c.Registry.RetryMultiplier != nil && *c.Registry.RetryMultiplier < 1 {
			return fmt.Errorf("retryMultiplier must be at least 1")
		}
		if c.Registry.MaxRequestsPerMinute != nil && *c.Registry.MaxRequestsPerMinute < 1 {
			return fmt.Errorf("maxRequestsPerMinute must be at least 1")
		}
	}
	if c.Cache != nil && c.Cache.TtlHours != nil && *c.Cache.TtlHours <= 0 {
		return fmt.Errorf("ttlHours must be positive")
	}
	return nil
}
