package config

import (
	"github.com/samber/lo"
)

func (configA *PkgstaleConfig) MergeWithAsCopy(configB *PkgstaleConfig) *PkgstaleConfig {
	merged := &PkgstaleConfig{}
	merged.MergeWith(configA)
	merged.MergeWith(configB)
	return merged
}

func (configA *PkgstaleConfig) MergeWith(configB *PkgstaleConfig) {
	if configB == nil {
		return
	}
	// Thresholds
	if configB.Thresholds != nil {
		if configA.Thresholds == nil {
			configA.Thresholds = &ThresholdConfig{}
		}
		configA.Thresholds.MergeWith(configB.Thresholds)
	}
	// Registry
	if configB.Registry != nil {
		if configA.Registry == nil {
			configA.Registry = &RegistryConfig{}
		}
		configA.Registry.MergeWith(configB.Registry)
	}
	// Cache
	if configB.Cache != nil {
		if configA.Cache == nil {
			configA.Cache = &CacheConfig{}
		}
		configA.Cache.MergeWith(configB.Cache)
	}
	// IgnorePatterns
	configA.IgnorePatterns = lo.Union(configA.IgnorePatterns, configB.IgnorePatterns)
	// WhitelistFile
	if configB.WhitelistFile != "" {
		configA.WhitelistFile = configB.WhitelistFile
	}
	// IncludeDev
	if configB.IncludeDev != nil {
		configA.IncludeDev = configB.IncludeDev
	}
	// Offline
	if configB.Offline != nil {
		configA.Offline = configB.Offline
	}
	// Output
	if configB.Output != "" {
		configA.Output = configB.Output
	}
	// Host Rules
	configA.HostRules = append(configA.HostRules, configB.HostRules...)
}

func (configA *ThresholdConfig) MergeWith(configB *ThresholdConfig) {
	if configB == nil {
		return
	}
	if configB.CurrentYears != nil {
		configA.CurrentYears = configB.CurrentYears
	}
	if configB.MediumYears != nil {
		configA.MediumYears = configB.MediumYears
	}
	if configB.OldYears != nil {
		configA.OldYears = configB.OldYears
	}
}

func (configA *RegistryConfig) MergeWith(configB *RegistryConfig) {
	if configB == nil {
		return
	}
	if configB.Url != "" {
		configA.Url = configB.Url
	}
	if configB.MaxConcurrentRequests != nil {
		configA.MaxConcurrentRequests = configB.MaxConcurrentRequests
	}
	if configB.RetryAttempts != nil {
		configA.RetryAttempts = configB.RetryAttempts
	}
	if configB.RetryMultiplier != nil {
		configA.RetryMultiplier = configB.RetryMultiplier
	}
	if configB.RetryBaseDelaySeconds != nil {
		configA.RetryBaseDelaySeconds = configB.RetryBaseDelaySeconds
	}
	if configB.MaxRequestsPerMinute != nil {
		configA.MaxRequestsPerMinute = configB.MaxRequestsPerMinute
	}
}

func (configA *CacheConfig) MergeWith(configB *CacheConfig) {
	if configB == nil {
		return
	}
	if configB.File != "" {
		configA.File = configB.File
	}
	if configB.TtlHours != nil {
		configA.TtlHours = configB.TtlHours
	}
	if configB.Disabled != nil {
		configA.Disabled = configB.Disabled
	}
}
