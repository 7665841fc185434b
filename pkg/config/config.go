package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PlaceholderAPIKey is the value shipped in example configs. A key
// equal to it (or empty) counts as unconfigured.
const PlaceholderAPIKey = "your-api-key-here"

// Config represents the application configuration
type Config struct {
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Backend    BackendConfig    `mapstructure:"backend"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// OpenRouterConfig holds the completion service settings. Immutable
// after load; validated lazily on first responder use, not at startup.
type OpenRouterConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	BaseURL     string  `mapstructure:"base_url"`
}

// IsConfigured reports whether a usable API key is present.
func (c OpenRouterConfig) IsConfigured() bool {
	return c.APIKey != "" && c.APIKey != PlaceholderAPIKey
}

// BackendConfig holds the remote store endpoints.
type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	WSURL   string        `mapstructure:"ws_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	LogFile string `mapstructure:"log_file"`
}

// SetDefaults registers every default on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("openrouter.api_key", PlaceholderAPIKey)
	v.SetDefault("openrouter.model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter.max_tokens", 500)
	v.SetDefault("openrouter.temperature", 0.7)
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")

	v.SetDefault("backend.url", "http://localhost:8080/v1/graphql")
	v.SetDefault("backend.ws_url", "ws://localhost:8080/v1/graphql")
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.timeout", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_file", "parley.log")
}

// Load reads configuration from the optional file plus the process
// environment. Environment wins over the file. Secrets only ever enter
// through the environment (OPENROUTER_API_KEY, PARLEY_BACKEND_TOKEN).
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("PARLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY", "PARLEY_OPENROUTER_API_KEY")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
