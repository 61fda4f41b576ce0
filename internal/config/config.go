// Package config loads the gradecore application configuration from an
// optional YAML file, with environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	// DBPath is the sqlite database file. Empty means the default path
	// under the user data directory.
	DBPath string `yaml:"db_path"`

	// NATSURL enables the NATS job transport when set. Empty means the
	// in-process queue.
	NATSURL string `yaml:"nats_url"`

	Grading GradingConfig `yaml:"grading"`
}

// GradingConfig selects the model profiles for the two grading passes.
// The fallback lists are tried in order when the primary model's provider
// fails; empty lists disable fallback for that pass.
type GradingConfig struct {
	FastModel       string   `yaml:"fast_model"`
	FastFallbacks   []string `yaml:"fast_fallbacks"`
	DetailModel     string   `yaml:"detail_model"`
	DetailFallbacks []string `yaml:"detail_fallbacks"`
	FastPasses      int      `yaml:"fast_passes"`
}

// FastChain returns the fast-pass model list, primary first.
func (g GradingConfig) FastChain() []string {
	return append([]string{g.FastModel}, g.FastFallbacks...)
}

// DetailChain returns the detail-pass model list, primary first.
func (g GradingConfig) DetailChain() []string {
	return append([]string{g.DetailModel}, g.DetailFallbacks...)
}

// Load reads the config file at path (if it exists) and applies environment
// overrides. A missing file is not an error; env-only setups are common.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = defaultPath()
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("GRADECORE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GRADECORE_NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("GRADECORE_FAST_MODEL"); v != "" {
		cfg.Grading.FastModel = v
	}
	if v := os.Getenv("GRADECORE_FAST_FALLBACKS"); v != "" {
		cfg.Grading.FastFallbacks = splitModels(v)
	}
	if v := os.Getenv("GRADECORE_DETAIL_MODEL"); v != "" {
		cfg.Grading.DetailModel = v
	}
	if v := os.Getenv("GRADECORE_DETAIL_FALLBACKS"); v != "" {
		cfg.Grading.DetailFallbacks = splitModels(v)
	}

	return cfg, nil
}

// splitModels parses a comma-separated model list from the environment.
func splitModels(v string) []string {
	var models []string
	for _, m := range strings.Split(v, ",") {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	return models
}

// ResolveDBPath returns the configured database path, creating the parent
// directory if needed, or the default path under the user data directory.
func (c Config) ResolveDBPath() (string, error) {
	p := c.DBPath
	if p == "" {
		base, err := dataDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(base, "gradecore.db")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return p, nil
}

func defaultPath() string {
	if override := os.Getenv("GRADECORE_CONFIG"); override != "" {
		return override
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "gradecore.yaml"
	}
	return filepath.Join(base, "gradecore", "config.yaml")
}

func dataDir() (string, error) {
	if override := os.Getenv("GRADECORE_DATA_DIR"); override != "" {
		return override, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	return filepath.Join(base, "gradecore"), nil
}
