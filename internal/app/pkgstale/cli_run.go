package pkgstale

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkgstale/pkgstale/pkg/age"
	"github.com/pkgstale/pkgstale/pkg/cache"
	"github.com/pkgstale/pkgstale/pkg/common"
	"github.com/pkgstale/pkgstale/pkg/composer"
	"github.com/pkgstale/pkgstale/pkg/config"
	"github.com/pkgstale/pkgstale/pkg/logging"
	"github.com/pkgstale/pkgstale/pkg/packageinfo"
	"github.com/pkgstale/pkgstale/pkg/registry"
	"github.com/pkgstale/pkgstale/pkg/report"
	"github.com/samber/lo"
)

func ReportCmd(args []string) error {
	// Flags and help for the command
	var verbose bool
	var configFile string
	var workingDirectory string
	var lockfilePath string
	var composerJsonPath string
	var output string
	var registryUrl string
	var cacheFile string
	var whitelistFile string
	var noCache bool
	var offline bool
	var noDev bool
	var ttlHours float64
	var maxConcurrent int
	var retryAttempts int
	var ignorePatterns stringSliceFlag
	flagSet := flag.NewFlagSet("report", flag.ExitOnError)
	flagSet.BoolVar(&verbose, "verbose", false, "The flag to set in order to get verbose output")
	flagSet.BoolVar(&verbose, "v", verbose, "Alias for -verbose")
	flagSet.StringVar(&configFile, "config", "", "The path to the config file to read")
	flagSet.StringVar(&workingDirectory, "workDir", "", "The path to the working directory")
	flagSet.StringVar(&lockfilePath, "lockfile", "composer.lock", "The path to the lockfile to analyze")
	flagSet.StringVar(&composerJsonPath, "composerJson", "composer.json", "The path to the composer.json to read settings from")
	flagSet.StringVar(&output, "output", "", "The output format: table, json, markdown or summary")
	flagSet.StringVar(&output, "o", output, "Alias for -output")
	flagSet.StringVar(&registryUrl, "registry", "", "The base url of the registry")
	flagSet.StringVar(&cacheFile, "cache-file", "", "The path of the cache file")
	flagSet.StringVar(&whitelistFile, "whitelist", "", "The path to a whitelist file, only matching packages are reported")
	flagSet.BoolVar(&noCache, "no-cache", false, "The flag to set in order to skip the cache entirely")
	flagSet.BoolVar(&offline, "offline", false, "The flag to set in order to use only cached data, without network access")
	flagSet.BoolVar(&noDev, "no-dev", false, "The flag to set in order to skip dev packages")
	flagSet.Float64Var(&ttlHours, "ttl", 0, "The time-to-live of cache entries in hours")
	flagSet.IntVar(&maxConcurrent, "concurrency", 0, "The maximum number of concurrent registry requests")
	flagSet.IntVar(&retryAttempts, "retries", 0, "The number of attempts per package")
	flagSet.Var(&ignorePatterns, "ignore", "A package name pattern to exclude. Can be passed multiple times.")
	flagSet.Usage = func() { printCmdUsage(flagSet, "report", "") }
	flagSet.Parse(args)

	// Create a logger. Log lines go to stderr so that stdout stays machine readable.
	desiredLogLevel := lo.Ternary(verbose, slog.LevelDebug, slog.LevelInfo)
	logger := slog.New(logging.NewReadableTextHandler(os.Stderr, &logging.ReadableTextHandlerOptions{Level: desiredLogLevel}))
	logger.Debug(fmt.Sprintf("Initialized logger with level: %s", desiredLogLevel))

	// Change the working directory
	if workingDirectory != "" && workingDirectory != "." {
		logger.Debug(fmt.Sprintf("Changing working directory to: %s", workingDirectory))
		if err := os.Chdir(workingDirectory); err != nil {
			return err
		}
	}

	// Build the configuration: composer.json extra section first, then the
	// config file, then the explicitly passed flags on top
	mergedConfig := &config.PkgstaleConfig{}
	composerExtraConfig, err := config.LoadComposerExtra(composerJsonPath)
	if err != nil {
		return err
	}
	mergedConfig.MergeWith(composerExtraConfig)
	fileConfig, err := config.Load(configFile)
	if err != nil {
		return err
	}
	mergedConfig.MergeWith(fileConfig)

	flagConfig := &config.PkgstaleConfig{}
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output", "o":
			flagConfig.Output = common.OutputFormat(output)
		case "registry":
			ensureRegistryConfig(flagConfig).Url = registryUrl
		case "concurrency":
			ensureRegistryConfig(flagConfig).MaxConcurrentRequests = &maxConcurrent
		case "retries":
			ensureRegistryConfig(flagConfig).RetryAttempts = &retryAttempts
		case "cache-file":
			ensureCacheConfig(flagConfig).File = cacheFile
		case "ttl":
			ensureCacheConfig(flagConfig).TtlHours = &ttlHours
		case "no-cache":
			ensureCacheConfig(flagConfig).Disabled = common.TruePtr
		case "offline":
			flagConfig.Offline = common.TruePtr
		case "no-dev":
			flagConfig.IncludeDev = common.FalsePtr
		case "ignore":
			flagConfig.IgnorePatterns = ignorePatterns
		case "whitelist":
			flagConfig.WhitelistFile = whitelistFile
		}
	})
	mergedConfig.MergeWith(flagConfig)

	// Validate before anything talks to the network
	if err := mergedConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Read the lockfile
	queries, err := composer.ReadLockfile(lockfilePath, mergedConfig.WithDevPackages())
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Found %s in the lockfile", common.CountString(queries, "package")))

	// Apply the whitelist and the ignore patterns
	queries, err = filterQueries(queries, mergedConfig, logger)
	if err != nil {
		return err
	}

	// Prepare the cache
	var releaseCache common.IReleaseCache
	if !mergedConfig.CacheDisabled() {
		cacheFilePath, err := resolveCacheFilePath(mergedConfig, logger)
		if err != nil {
			// A missing cache location degrades to running without a cache
			logger.Warn(fmt.Sprintf("Continuing without cache: %v", err))
		} else {
			logger.Debug(fmt.Sprintf("Using cache file '%s'", cacheFilePath))
			releaseCache = cache.NewReleaseCache(cacheFilePath, logger)
		}
	}

	// Prepare the client and the service
	client := registry.NewRegistryClient(buildClientSettings(mergedConfig, logger))
	service := packageinfo.NewService(&packageinfo.ServiceSettings{
		Logger:  logger,
		Client:  client,
		Cache:   releaseCache,
		Ttl:     mergedConfig.CacheTtl(),
		NoCache: mergedConfig.CacheDisabled(),
		Offline: mergedConfig.IsOffline(),
	})

	// Resolve the packages and build the report
	now := time.Now()
	resolved := service.Resolve(context.Background(), queries)
	thresholds := mergedConfig.BuildThresholds()
	packageAges := age.Evaluate(queries, resolved, now, thresholds)
	rating := age.Rate(packageAges, thresholds)
	return report.New(packageAges, rating, now).Render(os.Stdout, mergedConfig.OutputFormat())
}

////////////////////////////////////////////////////////////
// Internal
////////////////////////////////////////////////////////////

func ensureRegistryConfig(c *config.PkgstaleConfig) *config.RegistryConfig {
	if c.Registry == nil {
		c.Registry = &config.RegistryConfig{}
	}
	return c.Registry
}

func ensureCacheConfig(c *config.PkgstaleConfig) *config.CacheConfig {
	if c.Cache == nil {
		c.Cache = &config.CacheConfig{}
	}
	return c.Cache
}

func buildClientSettings(c *config.PkgstaleConfig, logger *slog.Logger) *registry.ClientSettings {
	settings := &registry.ClientSettings{
		Logger:    logger,
		HostRules: c.HostRules,
	}
	if c.Registry != nil {
		settings.RegistryUrl = c.Registry.Url
		if c.Registry.MaxConcurrentRequests != nil {
			settings.MaxConcurrentRequests = *c.Registry.MaxConcurrentRequests
		}
		if c.Registry.RetryAttempts != nil {
			settings.RetryAttempts = *c.Registry.RetryAttempts
		}
		if c.Registry.RetryMultiplier != nil {
			settings.RetryMultiplier = *c.Registry.RetryMultiplier
		}
		if c.Registry.RetryBaseDelaySeconds != nil {
			settings.RetryBaseDelay = time.Duration(*c.Registry.RetryBaseDelaySeconds * float64(time.Second))
		}
		if c.Registry.MaxRequestsPerMinute != nil {
			settings.MaxRequestsPerMinute = *c.Registry.MaxRequestsPerMinute
		}
	}
	return settings
}

func filterQueries(queries []*common.PackageQuery, c *config.PkgstaleConfig, logger *slog.Logger) ([]*common.PackageQuery, error) {
	if c.WhitelistFile != "" {
		patterns, err := config.LoadWhitelistFile(c.WhitelistFile)
		if err != nil {
			return nil, err
		}
		whitelisted := []*common.PackageQuery{}
		for _, query := range queries {
			isMatch, err := common.PackageMatchesPattern(query.Name, patterns...)
			if err != nil {
				return nil, err
			}
			if isMatch {
				whitelisted = append(whitelisted, query)
			}
		}
		logger.Debug(fmt.Sprintf("Whitelist kept %d of %s", len(whitelisted), common.CountString(queries, "package")))
		queries = whitelisted
	}
	if len(c.IgnorePatterns) > 0 {
		kept := []*common.PackageQuery{}
		for _, query := range queries {
			isMatch, err := common.PackageMatchesPattern(query.Name, c.IgnorePatterns...)
			if err != nil {
				return nil, err
			}
			if isMatch {
				logger.Debug(fmt.Sprintf("Ignoring package '%s'", query.Name))
				continue
			}
			kept = append(kept, query)
		}
		queries = kept
	}
	return queries, nil
}

func resolveCacheFilePath(c *config.PkgstaleConfig, logger *slog.Logger) (string, error) {
	if c.Cache != nil && c.Cache.File != "" {
		return c.Cache.File, nil
	}
	// Prefer the composer cache dir so the file lives next to composers own cache
	if composerCacheDir, err := composer.CacheDir(); err == nil {
		return filepath.Join(composerCacheDir, "pkgstale", "packages.json"), nil
	} else {
		logger.Debug(fmt.Sprintf("Composer cache dir not available: %v", err))
	}
	cacheDir, err := common.ResolveCacheDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "packages.json"), nil
}
