package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	DeepSeekAPIKey  string
	Classifier      ClassifierConfig
	CatalogPath     string
	ConfigDir       string
}

// FileConfig represents the structure of ~/.opsgate/config.yaml
type FileConfig struct {
	APIKeys    APIKeysConfig    `yaml:"api_keys"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Catalog    string           `yaml:"catalog,omitempty"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
	DeepSeek  string `yaml:"deepseek"`
}

// ClassifierConfig tunes the intent detector. Thresholds are the
// single source of truth; nothing else hard-codes them.
type ClassifierConfig struct {
	Adapter       string  `yaml:"adapter,omitempty"`
	Model         string  `yaml:"model,omitempty"`
	HighThreshold float64 `yaml:"high_threshold,omitempty"`
	LowThreshold  float64 `yaml:"low_threshold,omitempty"`
	TimeoutMs     int     `yaml:"timeout_ms,omitempty"`
	BaseBackoffMs int     `yaml:"base_backoff_ms,omitempty"`
}

// applyClassifierDefaults fills in the stock 0.6/0.3 band and bounds.
func applyClassifierDefaults(c *ClassifierConfig) {
	if c.HighThreshold <= 0 {
		c.HighThreshold = 0.6
	}
	if c.LowThreshold <= 0 {
		c.LowThreshold = 0.3
	}
	if c.TimeoutMs <= 0 {
		c.TimeoutMs = 10000
	}
	if c.BaseBackoffMs <= 0 {
		c.BaseBackoffMs = 500
	}
}

// Load reads configuration from config files and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		DeepSeekAPIKey:  getEnvOrDefault("DEEPSEEK_API_KEY", fileConfig.APIKeys.DeepSeek),
		Classifier:      fileConfig.Classifier,
		CatalogPath:     fileConfig.Catalog,
		ConfigDir:       configDir,
	}
	applyClassifierDefaults(&cfg.Classifier)

	return cfg, nil
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "deepseek":
		return c.DeepSeekAPIKey != ""
	default:
		return false
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, cfg)
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".opsgate")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
