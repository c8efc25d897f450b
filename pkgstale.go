package pkgstale

import (
	"log/slog"

	"github.com/pkgstale/pkgstale/pkg/cache"
	"github.com/pkgstale/pkgstale/pkg/common"
	"github.com/pkgstale/pkgstale/pkg/config"
	"github.com/pkgstale/pkgstale/pkg/packageinfo"
	"github.com/pkgstale/pkgstale/pkg/registry"
)

// Create a registry client with the given settings.
func NewRegistryClient(settings *registry.ClientSettings) common.IRegistryClient {
	return registry.NewRegistryClient(settings)
}

// Create a file backed release cache.
func NewReleaseCache(filePath string, logger *slog.Logger) common.IReleaseCache {
	return cache.NewReleaseCache(filePath, logger)
}

// Create a package info service with the given settings.
func NewService(settings *packageinfo.ServiceSettings) *packageinfo.Service {
	return packageinfo.NewService(settings)
}

// Load the configuration from the given path.
func LoadConfig(configPath string) (*config.PkgstaleConfig, error) {
	return config.Load(configPath)
}
