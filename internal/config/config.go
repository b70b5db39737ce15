package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/ledgerbridge/faktura/internal/invoice"
	"github.com/ledgerbridge/faktura/pkg/utils"
)

// EnvPrefix prefixes every environment override, e.g. FAKTURA_SERVER_PORT.
const EnvPrefix = "FAKTURA"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig       `mapstructure:"server"`
	Database  DatabaseConfig     `mapstructure:"database"`
	Numbering NumberingConfig    `mapstructure:"numbering"`
	Export    ExportConfig       `mapstructure:"export"`
	Logger    utils.LoggerConfig `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	AllowOrigin  string        `mapstructure:"allow_origin"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
	// MigrationsDir overrides the embedded migrations when set.
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// NumberingConfig holds invoice numbering configuration
type NumberingConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// ExportConfig holds document rendering configuration
type ExportConfig struct {
	// TemplatePath is an optional XLSX template; empty renders a blank workbook.
	TemplatePath string `mapstructure:"template_path"`
}

// Load loads configuration from file and environment variables.
// An empty configPath skips the file and uses defaults plus environment.
// Variables from a .env file in the working directory are applied first.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv applies path without overriding variables already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.allow_origin", "*")

	// Database defaults
	v.SetDefault("database.path", "data/faktura.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.busy_timeout", 5*time.Second)
	v.SetDefault("database.migrations_dir", "")

	// Numbering defaults
	v.SetDefault("numbering.prefix", invoice.DefaultPrefix)

	// Export defaults
	v.SetDefault("export.template_path", "")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}

	if !invoice.ValidPrefix(c.Numbering.Prefix) {
		return fmt.Errorf("numbering.prefix %q must be upper-case letters, digits or '-'", c.Numbering.Prefix)
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}

	return nil
}
