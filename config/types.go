package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	USL     USLConfig     `mapstructure:"usl"`
	Bulk    BulkConfig    `mapstructure:"bulk"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// USLConfig holds USL API connection details and credentials
type USLConfig struct {
	URL       string        `mapstructure:"url"`
	UserAgent string        `mapstructure:"user_agent"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	Duration  string        `mapstructure:"duration"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Hashtags  []string      `mapstructure:"hashtags"`
}

// BulkConfig contains settings for walking the bulk listing
type BulkConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// FilterConfig contains filter definitions for dumps
type FilterConfig struct {
	DefaultExpression string                  `mapstructure:"default"`
	Presets           map[string]PresetFilter `mapstructure:"presets"`
}

// PresetFilter is a named filter expression
type PresetFilter struct {
	Description string `mapstructure:"description"`
	Expression  string `mapstructure:"expression"`
}

// OutputConfig selects how results are rendered
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
