// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Store() StoreConfig
	Filters() FiltersConfig
	Capture() CaptureConfig
	Server() ServerConfig

	// Capture Setters
	SetCaptureHeadless(bool)
	SetCaptureEvalTimeout(time.Duration)

	// Server Setters
	SetServerAddr(string)
}

// Config holds the entire application configuration. It uses private fields
// to enforce access through the Interface's getter methods; decoding happens
// through the exported fileConfig mirror.
type Config struct {
	logger  LoggerConfig
	store   StoreConfig
	filters FiltersConfig
	capture CaptureConfig
	server  ServerConfig
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.logger }
func (c *Config) Store() StoreConfig     { return c.store }
func (c *Config) Filters() FiltersConfig { return c.filters }
func (c *Config) Capture() CaptureConfig { return c.capture }
func (c *Config) Server() ServerConfig   { return c.server }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetCaptureHeadless(b bool)             { c.capture.Headless = b }
func (c *Config) SetCaptureEvalTimeout(d time.Duration) { c.capture.EvalTimeout = d }
func (c *Config) SetServerAddr(addr string)             { c.server.Addr = addr }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// StoreConfig tunes the per-tab snapshot cache.
type StoreConfig struct {
	Capacity int           `mapstructure:"capacity" yaml:"capacity"`
	MaxAge   time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

// FiltersConfig tunes the candidate selection pipeline.
type FiltersConfig struct {
	MaxElements         int      `mapstructure:"max_elements" yaml:"max_elements"`
	ClickableSubstrings []string `mapstructure:"clickable_substrings" yaml:"clickable_substrings"`
	ZeroAreaTestIDs     []string `mapstructure:"zero_area_test_ids" yaml:"zero_area_test_ids"`
	EnhancedHeuristics  bool     `mapstructure:"enhanced_heuristics" yaml:"enhanced_heuristics"`
}

// CaptureConfig holds settings for the headless browser capturer.
type CaptureConfig struct {
	Headless    bool          `mapstructure:"headless" yaml:"headless"`
	EvalTimeout time.Duration `mapstructure:"eval_timeout" yaml:"eval_timeout"`
	Args        []string      `mapstructure:"args" yaml:"args"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Addr             string        `mapstructure:"addr" yaml:"addr"`
	MaxResponseBytes int           `mapstructure:"max_response_bytes" yaml:"max_response_bytes"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// fileConfig mirrors Config with exported fields so viper can decode into it;
// the values are then moved behind the accessor surface.
type fileConfig struct {
	Logger  LoggerConfig  `mapstructure:"logger"`
	Store   StoreConfig   `mapstructure:"store"`
	Filters FiltersConfig `mapstructure:"filters"`
	Capture CaptureConfig `mapstructure:"capture"`
	Server  ServerConfig  `mapstructure:"server"`
}

func (f fileConfig) toConfig() *Config {
	return &Config{
		logger:  f.Logger,
		store:   f.Store,
		filters: f.Filters,
		capture: f.Capture,
		server:  f.Server,
	}
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return fc.toConfig()
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "domlens-cli")
	v.SetDefault("logger.log_file", "domlens.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Store --
	v.SetDefault("store.capacity", 5)
	v.SetDefault("store.max_age", "5m")

	// -- Filters --
	v.SetDefault("filters.max_elements", 50)
	v.SetDefault("filters.clickable_substrings", []string{})
	v.SetDefault("filters.zero_area_test_ids", []string{})
	v.SetDefault("filters.enhanced_heuristics", true)

	// -- Capture --
	v.SetDefault("capture.headless", true)
	v.SetDefault("capture.eval_timeout", "10s")

	// -- Server --
	v.SetDefault("server.addr", "127.0.0.1:8470")
	v.SetDefault("server.max_response_bytes", 48*1024)
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
}

// DefaultConfigPath resolves the user-level config file location,
// ~/.domlens/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".domlens", "config.yaml"), nil
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg := fc.toConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.store.Capacity <= 0 {
		return fmt.Errorf("store.capacity must be a positive integer")
	}
	if c.store.MaxAge <= 0 {
		return fmt.Errorf("store.max_age must be a positive duration")
	}
	if c.filters.MaxElements <= 0 {
		return fmt.Errorf("filters.max_elements must be a positive integer")
	}
	if c.capture.EvalTimeout <= 0 {
		return fmt.Errorf("capture.eval_timeout must be a positive duration")
	}
	if c.server.MaxResponseBytes <= 0 {
		return fmt.Errorf("server.max_response_bytes must be a positive integer")
	}
	return nil
}
