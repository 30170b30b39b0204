package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/s0up4200/uslcheck/usl"
)

// EnvPrefix prefixes environment overrides, e.g. USLCHECK_USL_PASSWORD
const EnvPrefix = "USLCHECK"

// Load loads the configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".uslcheck"))
		}

		// Check /etc
		v.AddConfigPath("/etc/uslcheck/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// USL defaults
	v.SetDefault("usl.url", usl.DefaultBaseURL)
	v.SetDefault("usl.user_agent", "")
	v.SetDefault("usl.username", "")
	v.SetDefault("usl.password", "")
	v.SetDefault("usl.duration", string(usl.DurationForever))
	v.SetDefault("usl.timeout", usl.DefaultTimeout)
	v.SetDefault("usl.hashtags", usl.WhitelistedHashtags)

	// Bulk defaults
	v.SetDefault("bulk.page_size", usl.DefaultBulkLimit)

	// Output defaults
	v.SetDefault("output.format", "console")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.USL.URL == "" {
		return fmt.Errorf("usl.url is required")
	}

	if err := usl.ValidateUserAgent(cfg.USL.UserAgent); err != nil {
		return fmt.Errorf("usl.user_agent: %w", err)
	}

	if cfg.USL.Username == "" {
		return fmt.Errorf("usl.username is required")
	}

	if cfg.USL.Password == "" || cfg.USL.Password == "your-password-here" {
		return fmt.Errorf("usl.password must be set (or export %s_USL_PASSWORD)", EnvPrefix)
	}

	if !usl.Duration(cfg.USL.Duration).Valid() {
		return fmt.Errorf("invalid usl.duration: %s (must be '1day', '30days' or 'forever')", cfg.USL.Duration)
	}

	if cfg.USL.Timeout < time.Second {
		return fmt.Errorf("usl.timeout must be at least 1s, got %s", cfg.USL.Timeout)
	}

	for _, tag := range cfg.USL.Hashtags {
		if !strings.HasPrefix(tag, "#") || strings.Contains(tag, ",") {
			return fmt.Errorf("invalid hashtag in usl.hashtags: %q", tag)
		}
	}

	if cfg.Bulk.PageSize <= 0 {
		return fmt.Errorf("bulk.page_size must be positive, got %d", cfg.Bulk.PageSize)
	}

	for name, preset := range cfg.Filter.Presets {
		if strings.TrimSpace(preset.Expression) == "" {
			return fmt.Errorf("filter preset '%s' has no expression", name)
		}
	}

	// Validate output format
	validOutputs := map[string]bool{
		"console": true,
		"json":    true,
		"yaml":    true,
	}
	if !validOutputs[cfg.Output.Format] {
		return fmt.Errorf("invalid output.format: %s", cfg.Output.Format)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
