package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the satchel.yaml config file.
type fileConfig struct {
	Token        string `yaml:"token"`
	BaseURL      string `yaml:"baseUrl"`
	SnapshotPath string `yaml:"snapshotPath"`
	RootLabel    string `yaml:"rootLabel"`
	MergePolicy  string `yaml:"mergePolicy"`
}

// loadConfig reads the config file at path, or searches the default
// locations when path is empty. A missing default file is not an
// error; a missing explicit file is.
func loadConfig(path string) (fileConfig, error) {
	explicit := path != ""
	candidates := []string{path}
	if !explicit {
		candidates = []string{"satchel.yaml"}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, ".config", "satchel", "config.yaml"))
		}
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		data, err := os.ReadFile(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return fileConfig{}, fmt.Errorf("config file %s not found", candidate)
			}
			continue
		}
		if err != nil {
			return fileConfig{}, fmt.Errorf("reading config %s: %w", candidate, err)
		}
		var cfg fileConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fileConfig{}, fmt.Errorf("parsing config %s: %w", candidate, err)
		}
		return cfg, nil
	}
	return fileConfig{}, nil
}

// apply overlays non-empty flag values on top of the file values.
func (c *fileConfig) apply(token, baseURL, snapshotPath, rootLabel, mergePolicy string) {
	if token != "" {
		c.Token = token
	}
	if baseURL != "" {
		c.BaseURL = baseURL
	}
	if snapshotPath != "" {
		c.SnapshotPath = snapshotPath
	}
	if rootLabel != "" {
		c.RootLabel = rootLabel
	}
	if mergePolicy != "" {
		c.MergePolicy = mergePolicy
	}
}
