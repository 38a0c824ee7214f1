package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dataset source
	DataPath  string `mapstructure:"data_path" yaml:"data_path"`
	YearMin   int    `mapstructure:"year_min" yaml:"year_min"`
	YearMax   int    `mapstructure:"year_max" yaml:"year_max"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`
	Table     string `mapstructure:"table" yaml:"table"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Default ranking length for `query`
	TopN int `mapstructure:"top_n" yaml:"top_n"`

	// HTTP API
	HTTPAddr            string `mapstructure:"http_addr" yaml:"http_addr"`
	HTTPReadTimeoutSec  int    `mapstructure:"http_read_timeout_sec" yaml:"http_read_timeout_sec"`
	HTTPWriteTimeoutSec int    `mapstructure:"http_write_timeout_sec" yaml:"http_write_timeout_sec"`
	HTTPIdleTimeoutSec  int    `mapstructure:"http_idle_timeout_sec" yaml:"http_idle_timeout_sec"`
}

// DefaultPath returns ~/.vgmarket/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".vgmarket", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.vgmarket/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("VGMARKET")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_path", "vgchartz_cleaned.csv")
	v.SetDefault("year_min", 2010)
	v.SetDefault("year_max", 2019)
	v.SetDefault("sheet", "")
	v.SetDefault("table", "")
	v.SetDefault("delimiter", "")
	v.SetDefault("top_n", 10)
	// HTTP defaults
	v.SetDefault("http_addr", "127.0.0.1:8080")
	v.SetDefault("http_read_timeout_sec", 15)
	v.SetDefault("http_write_timeout_sec", 30)
	v.SetDefault("http_idle_timeout_sec", 60)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".vgmarket"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.YearMin > c.YearMax {
		return nil, fmt.Errorf("invalid year range in config: %d > %d", c.YearMin, c.YearMax)
	}
	return &c, nil
}

// Delim returns the configured CSV delimiter rune, or 0 for auto-detection.
func (c *Global) Delim() (rune, error) {
	switch c.Delimiter {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(c.Delimiter)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return r[0], nil
}
