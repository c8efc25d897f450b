package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adhocore/jsonc"
	"github.com/goccy/go-yaml"
	"github.com/pkgstale/pkgstale/pkg/common"
)

// The base name of the config file that is searched when no path is given.
const defaultConfigName = "pkgstale"

// Loads the given configuration file. When configPath is empty, a default
// config file (pkgstale.json/yaml/yml) is searched in the working directory;
// if none exists, an empty config is returned.
func Load(configPath string) (*PkgstaleConfig, error) {
	searchedDefault := configPath == ""
	if searchedDefault {
		configPath = defaultConfigName
	}
	foundPath, err := SearchConfigFileFromPath(configPath)
	if err != nil {
		return nil, err
	}
	if foundPath == "" {
		if searchedDefault {
			return &PkgstaleConfig{}, nil
		}
		return nil, fmt.Errorf("config file '%s' not found", configPath)
	}
	return loadConfigFromFile(foundPath)
}

// Reads the tool settings embedded in a composer.json file under
// "extra.pkgstale". A missing file or missing section yields an empty config.
func LoadComposerExtra(composerJsonPath string) (*PkgstaleConfig, error) {
	fileContentBytes, err := os.ReadFile(composerJsonPath)
	if errors.Is(err, os.ErrNotExist) {
		return &PkgstaleConfig{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed reading '%s': %w", composerJsonPath, err)
	}
	wrapper := &struct {
		Extra struct {
			Pkgstale *PkgstaleConfig `json:"pkgstale"`
		} `json:"extra"`
	}{}
	if err := json.Unmarshal(fileContentBytes, wrapper); err != nil {
		return nil, fmt.Errorf("failed parsing '%s': %w", composerJsonPath, err)
	}
	if wrapper.Extra.Pkgstale == nil {
		return &PkgstaleConfig{}, nil
	}
	return wrapper.Extra.Pkgstale, nil
}

// Searches for a config file based on the given path. If the path has no
// extension, the known extensions are tried in order. Returns an empty string
// when nothing exists.
func SearchConfigFileFromPath(configPath string) (string, error) {
	if filepath.Ext(configPath) != "" {
		exists, err := common.FileExists(configPath)
		if err != nil {
			return "", err
		}
		if exists {
			return configPath, nil
		}
		return "", nil
	}
	for _, extension := range []string{".json", ".yaml", ".yml"} {
		candidate := configPath + extension
		exists, err := common.FileExists(candidate)
		if err != nil {
			return "", err
		}
		if exists {
			return candidate, nil
		}
	}
	return "", nil
}

////////////////////////////////////////////////////////////
// Internal
////////////////////////////////////////////////////////////

func loadConfigFromFile(configPath string) (*PkgstaleConfig, error) {
	fileContentBytes, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed reading config '%s': %w", configPath, err)
	}
	config := &PkgstaleConfig{}
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".json":
		// Allow comments in json config files, so strip them first
		j := jsonc.New()
		strippedJson := j.StripS(string(fileContentBytes))
		if err := json.Unmarshal([]byte(strippedJson), config); err != nil {
			return nil, fmt.Errorf("failed parsing config '%s': %w", configPath, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileContentBytes, config); err != nil {
			return nil, fmt.Errorf("failed parsing config '%s': %w", configPath, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file type '%s'", filepath.Ext(configPath))
	}
	return config, nil
}
