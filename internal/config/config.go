// Package config holds the on-disk application configuration.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML). Zero-valued fields are
// filled from defaults; BTCMACRO_* environment variables override the file.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DataFile   string `yaml:"data_file"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		DataFile:   "data/btc_macro_monthly.csv",
		LogLevel:   "info",
	}
}

// Load reads the configuration from path, merges defaults and environment
// overrides, and validates the result. An empty path skips the file and
// uses defaults plus environment only.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
	}

	applyDefaults(&c)
	applyEnv(&c)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	def := Default()
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.DataFile == "" {
		c.DataFile = def.DataFile
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

func applyEnv(c *Config) {
	if v := os.Getenv("BTCMACRO_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("BTCMACRO_DATA_FILE"); v != "" {
		c.DataFile = v
	}
	if v := os.Getenv("BTCMACRO_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DataFile == "" {
		return errors.New("data_file is required")
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	return nil
}
