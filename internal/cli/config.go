package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// configFile is the name of the config file inside the config directory.
const configFile = "config.toml"

// Config is the on-disk CLI configuration. Every field is optional; flags
// given on the command line win over file values.
type Config struct {
	Cover   CoverConfig   `toml:"cover"`
	Stack   StackConfig   `toml:"stack"`
	Cache   CacheConfig   `toml:"cache"`
	Metrics MetricsConfig `toml:"metrics"`
}

// CoverConfig holds defaults for the cover options.
type CoverConfig struct {
	Solver        string `toml:"solver"`
	Optimizer     string `toml:"optimizer"`
	MaxIterations int    `toml:"max_iterations"`
	Depth         int    `toml:"depth"`
	Workers       int    `toml:"workers"`
}

// StackConfig configures the Euler extractor's spill stack.
type StackConfig struct {
	Dir       string `toml:"dir"`
	BatchSize int    `toml:"batch_size"`
	Compress  bool   `toml:"compress"`
}

// CacheConfig selects the cover cache backend.
type CacheConfig struct {
	Disabled bool     `toml:"disabled"`
	RedisURL string   `toml:"redis_url"`
	TTL      duration `toml:"ttl"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `toml:"textfile"`
}

// duration decodes TOML strings like "24h" into a time.Duration.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// configDir returns the config directory using XDG standard (~/.config/pathcover/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// loadConfig reads the config at path. An empty path means the default
// location, where a missing file yields the zero Config. An explicitly
// named file must exist.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, configFile)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return &cfg, nil
}
