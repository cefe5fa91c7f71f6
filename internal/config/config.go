// Package config provides YAML-based configuration for the docchat frontend.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Backend the frontend talks to
	Backend BackendConfig `yaml:"backend"`

	// Session controller tuning
	Session SessionConfig `yaml:"session"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `yaml:"port" validate:"min=1,max=65535"`
	BindAddress  string `yaml:"bind_address"`
	EnableCORS   bool   `yaml:"enable_cors"`
	AllowOrigins string `yaml:"allow_origins"`
	ReadTimeout  int    `yaml:"read_timeout_seconds" validate:"min=1"`
	WriteTimeout int    `yaml:"write_timeout_seconds" validate:"min=1"`
	IdleTimeout  int    `yaml:"idle_timeout_seconds" validate:"min=1"`
	BodyLimit    string `yaml:"body_limit" validate:"required"`
	EnableGzip   bool   `yaml:"enable_gzip"`
}

// BackendConfig locates the document-chat backend
type BackendConfig struct {
	BaseURL             string `yaml:"base_url" validate:"required,url"`
	RequestTimeout      int    `yaml:"request_timeout_seconds" validate:"min=1"`
	UploadTimeout       int    `yaml:"upload_timeout_seconds" validate:"min=1"`
	CheckSessionOnStart bool   `yaml:"check_session_on_start"`
	StartupCheckTimeout int    `yaml:"startup_check_timeout_seconds" validate:"min=1"`
}

// SessionConfig tunes the session controller
type SessionConfig struct {
	CompletionDelayMs int `yaml:"completion_delay_ms" validate:"min=0"`
}

// LoggingConfig contains log level and optional rotating file output
type LoggingConfig struct {
	Level                string `yaml:"level" validate:"oneof=debug info warn error"`
	Format               string `yaml:"format" validate:"oneof=console json"`
	File                 string `yaml:"file"`
	MaxSizeMB            int    `yaml:"max_size_mb" validate:"min=0"`
	MaxBackups           int    `yaml:"max_backups" validate:"min=0"`
	MaxAgeDays           int    `yaml:"max_age_days" validate:"min=0"`
	Compress             bool   `yaml:"compress"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			EnableCORS:   false,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 330,
			IdleTimeout:  120,
			BodyLimit:    "100M",
			EnableGzip:   true,
		},
		Backend: BackendConfig{
			BaseURL:             "http://localhost:8000",
			RequestTimeout:      120,
			UploadTimeout:       300,
			CheckSessionOnStart: true,
			StartupCheckTimeout: 5,
		},
		Session: SessionConfig{
			CompletionDelayMs: 800,
		},
		Logging: LoggingConfig{
			Level:                "info",
			Format:               "console",
			File:                 "",
			MaxSizeMB:            10,
			MaxBackups:           5,
			MaxAgeDays:           30,
			Compress:             true,
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is created
// with the defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# docchat frontend configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks field constraints and reports every failing field.
func (c *AppConfig) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if url := os.Getenv("DOCCHAT_BACKEND_URL"); url != "" {
		c.Backend.BaseURL = url
	}

	if level := os.Getenv("DOCCHAT_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
}

// resolvePaths converts a relative log file path to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Logging.File != "" && !filepath.IsAbs(c.Logging.File) {
		c.Logging.File = filepath.Join(configDir, c.Logging.File)
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// CompletionDelay returns the post-upload delay as a duration.
func (c *AppConfig) CompletionDelay() time.Duration {
	return time.Duration(c.Session.CompletionDelayMs) * time.Millisecond
}

// EnsureDirectories creates the log directory when file logging is enabled
func (c *AppConfig) EnsureDirectories() error {
	if c.Logging.File == "" {
		return nil
	}
	dir := filepath.Dir(c.Logging.File)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
