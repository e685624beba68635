// Package config loads the TOML application configuration.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Worker   WorkerConfig   `toml:"worker"`
	Limits   LimitsConfig   `toml:"limits"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// StorageConfig selects and configures the file storage backend.
type StorageConfig struct {
	// Driver is "local" or "gateway".
	Driver  string        `toml:"driver"`
	Local   LocalStorage  `toml:"local"`
	Gateway GatewayConfig `toml:"gateway"`
}

// LocalStorage configures the filesystem backend.
type LocalStorage struct {
	Root string `toml:"root"`
}

// GatewayConfig configures the remote blob gateway backend.
type GatewayConfig struct {
	Endpoint  string `toml:"endpoint"`
	Container string `toml:"container"`
	Token     string `toml:"token"`
}

// WorkerConfig sizes the background analysis pool.
type WorkerConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// LimitsConfig throttles mutating requests.
type LimitsConfig struct {
	UploadsPerMinute int `toml:"uploads_per_minute"`
	UploadBurst      int `toml:"upload_burst"`
}

// Load reads and parses a TOML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

// Default returns a Config with sensible defaults loaded from the embedded
// example config.
func Default() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Addr returns the host:port the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
