// Package config loads matrixctl configuration by layering default, user,
// and project settings. The user file lives at
// ~/.config/matrixctl/config.yaml and the project file at
// .matrixctl/config.yaml in the working directory; both are optional and
// the project file wins on conflicts.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/matrixctl"
	projectConfigDir = ".matrixctl"
	configFileName   = "config.yaml"
)

// Load builds the effective configuration.
func Load() (Config, error) {
	config := DefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional; warn and continue with defaults.
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
			userConfig, err := loadConfigFromFile(userConfigPath)
			if err != nil {
				return Config{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
			}
			config = mergeConfigs(config, userConfig)
		}
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
			projectConfig, err := loadConfigFromFile(projectConfigPath)
			if err != nil {
				return Config{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
			}
			config = mergeConfigs(config, projectConfig)
		}
	}

	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' into 'base'; set overlay fields win.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if overlay.TmpRoot != "" {
		merged.TmpRoot = overlay.TmpRoot
	}
	if overlay.ArtifactsDir != "" {
		merged.ArtifactsDir = overlay.ArtifactsDir
	}
	if overlay.CatalogPath != "" {
		merged.CatalogPath = overlay.CatalogPath
	}
	if overlay.Runner.Command != "" {
		merged.Runner.Command = overlay.Runner.Command
	}
	if len(overlay.Runner.Args) > 0 {
		merged.Runner.Args = overlay.Runner.Args
	}
	if overlay.Publisher.Type != "" {
		merged.Publisher.Type = overlay.Publisher.Type
	}
	if overlay.Publisher.S3.Endpoint != "" {
		merged.Publisher.S3 = overlay.Publisher.S3
	}

	return merged
}
