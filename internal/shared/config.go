package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Log          LogConfig          `toml:"log"`
	Storage      StorageConfig      `toml:"storage"`
	Server       ServerConfig       `toml:"server"`
	Identity     IdentityConfig     `toml:"identity"`
	Registration RegistrationConfig `toml:"registration"`
}

// LogConfig controls log verbosity and destination.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// StorageConfig selects and configures the identity store backend.
type StorageConfig struct {
	Driver       string      `toml:"driver"`
	Path         string      `toml:"path"`
	MaxOpenConns int         `toml:"max_open_conns"`
	MaxIdleConns int         `toml:"max_idle_conns"`
	Redis        RedisConfig `toml:"redis"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	Prefix    string `toml:"prefix"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// Timeout returns the per-operation Redis timeout, defaulting to two seconds.
func (c RedisConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// IdentityConfig defines the distinguished super-administrator account.
type IdentityConfig struct {
	ID         string `toml:"id"`
	Alias      string `toml:"alias"`
	Credential string `toml:"credential"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RegistrationConfig contains account registration rules.
type RegistrationConfig struct {
	ReservedNames []string `toml:"reserved_names"`
}

// Validate checks the fields the application cannot run without.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: storage.path is required for sqlite", ErrInvalidConfig)
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("%w: storage.redis.addr is required for redis", ErrInvalidConfig)
		}
	case "memory":
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if NormalizeAccountID(c.Identity.ID) == "" {
		return fmt.Errorf("%w: identity.id is required", ErrInvalidConfig)
	}
	if c.Identity.Credential == "" {
		return fmt.Errorf("%w: identity.credential is required", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
