package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents CLI configuration sourced from config files, environment variables, and flags.
type Config struct {
	Profile      string `mapstructure:"-"`
	ConfigFile   string `mapstructure:"-"`
	APIBaseURL   string `mapstructure:"api_url" yaml:"api_url"`
	AuthorityURL string `mapstructure:"authority_url" yaml:"authority_url"`
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	APIScope     string `mapstructure:"api_scope" yaml:"api_scope"`
	HomeDir      string `mapstructure:"home" yaml:"home"`
	OutputFormat string `mapstructure:"format" yaml:"format"`
}

type fileConfig struct {
	Config   Config            `mapstructure:",squash"`
	Profiles map[string]Config `mapstructure:"profiles"`
}

// DefaultHomeDir returns the default configuration directory.
func DefaultHomeDir() (string, error) {
	base, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(base, ".nsadmin"), nil
}

// Load reads configuration from config file, environment variables, and defaults.
func Load(path, profile string) (*Config, error) {
	cfg := defaultConfig()
	cfg.ConfigFile = path

	fc, err := readFileConfig(path)
	if err != nil {
		return nil, err
	}

	cfg.merge(fc.Config)

	if profile == "" {
		profile = cfg.Profile
	}
	if profile == "" {
		profile = "default"
	}
	if profile != "default" {
		if fc.Profiles == nil {
			return nil, fmt.Errorf("profile %q not defined in %s", profile, path)
		}

		profileCfg, ok := fc.Profiles[profile]
		if !ok {
			return nil, fmt.Errorf("profile %q not defined in %s", profile, path)
		}
		cfg.merge(profileCfg)
	}

	applyEnvOverrides(&cfg)

	cfg.Profile = profile

	return &cfg, nil
}

func defaultConfig() Config {
	home, _ := DefaultHomeDir()
	return Config{
		APIBaseURL:   "https://func-monitoring-admin.azurewebsites.net/api",
		AuthorityURL: "https://login.microsoftonline.com/0ed11b7c-74bd-478f-8a21-38a7f2e78a5e",
		ClientID:     "3868a328-8043-4528-ab51-53f1464dd6ee",
		APIScope:     "api://3868a328-8043-4528-ab51-53f1464dd6ee/.default",
		HomeDir:      home,
		OutputFormat: "table",
	}
}

// Default returns a default configuration with standard values.
func Default() *Config {
	cfg := defaultConfig()
	return &cfg
}

func readFileConfig(path string) (*fileConfig, error) {
	if path == "" {
		return &fileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileConfig{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	return &fc, nil
}

func (c *Config) merge(other Config) {
	if other.APIBaseURL != "" {
		c.APIBaseURL = strings.TrimRight(other.APIBaseURL, "/")
	}
	if other.AuthorityURL != "" {
		c.AuthorityURL = strings.TrimRight(other.AuthorityURL, "/")
	}
	if other.ClientID != "" {
		c.ClientID = other.ClientID
	}
	if other.APIScope != "" {
		c.APIScope = other.APIScope
	}
	if other.HomeDir != "" {
		c.HomeDir = other.HomeDir
	}
	if other.OutputFormat != "" {
		c.OutputFormat = other.OutputFormat
	}
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("NSADMIN_API_URL"); val != "" {
		cfg.APIBaseURL = strings.TrimRight(val, "/")
	}
	if val := os.Getenv("NSADMIN_AUTHORITY_URL"); val != "" {
		cfg.AuthorityURL = strings.TrimRight(val, "/")
	}
	if val := os.Getenv("NSADMIN_CLIENT_ID"); val != "" {
		cfg.ClientID = val
	}
	if val := os.Getenv("NSADMIN_API_SCOPE"); val != "" {
		cfg.APIScope = val
	}
	if val := os.Getenv("NSADMIN_HOME"); val != "" {
		cfg.HomeDir = val
	}
	if val := os.Getenv("NSADMIN_FORMAT"); val != "" {
		cfg.OutputFormat = val
	}
}
