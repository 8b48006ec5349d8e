// Package config loads the core's configuration from a yaml file and
// STIGMA_* environment variables. The surrounding application decides where
// the file lives; defaults cover everything except credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the core.
type Config struct {
	// Database is the directory for the local row store.
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// GitHub configures the Codespaces billing client.
	GitHub GitHubConfig `yaml:"github" mapstructure:"github"`

	// Azure configures the analysis deployment.
	Azure AzureConfig `yaml:"azure" mapstructure:"azure"`
}

// DatabaseConfig configures the embedded row store.
type DatabaseConfig struct {
	Path       string        `yaml:"path" mapstructure:"path"`
	SyncWrites bool          `yaml:"sync_writes" mapstructure:"sync_writes"`
	CacheTTL   time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// GitHubConfig configures the GitHub REST client.
type GitHubConfig struct {
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// AzureConfig configures the Azure OpenAI analysis client. The API key is
// only ever read from the environment, never written to the config file.
type AzureConfig struct {
	Endpoint   string `yaml:"endpoint" mapstructure:"endpoint"`
	Deployment string `yaml:"deployment" mapstructure:"deployment"`
	APIVersion string `yaml:"api_version" mapstructure:"api_version"`
	APIKey     string `yaml:"-" mapstructure:"api_key"`
}

// DefaultConfig returns the defaults used when no file or env overrides
// exist.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Path:       filepath.Join(".stigma", "db"),
			SyncWrites: true,
			CacheTTL:   5 * time.Minute,
		},
		GitHub: GitHubConfig{
			BaseURL:           "https://api.github.com",
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Azure: AzureConfig{
			APIVersion: "2024-02-01",
		},
	}
}

// Load reads configuration from the given file (optional) and STIGMA_*
// environment variables, layered over the defaults.
//
// Hierarchy, highest priority first: environment, config file, defaults.
func Load(file string) (Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.sync_writes", cfg.Database.SyncWrites)
	v.SetDefault("database.cache_ttl", cfg.Database.CacheTTL)
	v.SetDefault("github.base_url", cfg.GitHub.BaseURL)
	v.SetDefault("github.requests_per_second", cfg.GitHub.RequestsPerSecond)
	v.SetDefault("github.burst", cfg.GitHub.Burst)
	v.SetDefault("azure.endpoint", cfg.Azure.Endpoint)
	v.SetDefault("azure.deployment", cfg.Azure.Deployment)
	v.SetDefault("azure.api_version", cfg.Azure.APIVersion)
	v.SetDefault("azure.api_key", "")

	v.SetEnvPrefix("STIGMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// WriteDefault creates a documented default config file at path. It refuses
// to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	header := []byte("# STIGMA core configuration.\n" +
		"# Environment variables (STIGMA_*) override values in this file.\n" +
		"# The Azure API key is read from STIGMA_AZURE_API_KEY only.\n\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
