// Package config provides configuration management for the hyperpart service.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Coarsening CoarseningConfig `mapstructure:"coarsening"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Log        LogConfig        `mapstructure:"log"`
}

// CoarseningConfig holds coarsening-related configuration.
type CoarseningConfig struct {
	// MaxWorkers bounds the worker pool used for extraction, per-community
	// coarsening and the merge phases. 0 means use the pool default.
	MaxWorkers int `mapstructure:"max_workers"`

	// CommunityNodeLimit is the number of enabled community members the
	// inner contractor keeps per community before it stops contracting.
	CommunityNodeLimit int `mapstructure:"community_node_limit"`

	// RespectNodeOrder keeps the local-to-global hypernode mapping sorted
	// by ascending global id during extraction.
	RespectNodeOrder bool `mapstructure:"respect_node_order"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // sqlite, postgres or mysql
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
	// Path is the database file path for the sqlite driver.
	Path string `mapstructure:"path"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`
	Scheme    string `mapstructure:"scheme"`
	LocalPath string `mapstructure:"local_path"`
}

// SchedulerConfig holds scheduler configuration for daemon mode.
type SchedulerConfig struct {
	PollInterval int `mapstructure:"poll_interval"` // in seconds
	WorkerCount  int `mapstructure:"worker_count"`
	RunBatchSize int `mapstructure:"run_batch_size"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
}

// Load reads configuration from the specified file path.
// An empty path falls back to the standard search locations; a missing
// config file is not an error and yields the defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/hyperpart")
	}

	v.SetEnvPrefix("HYPERPART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults
		} else if os.IsNotExist(err) {
			// Explicit path does not exist, use defaults
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("coarsening.max_workers", 0)
	v.SetDefault("coarsening.community_node_limit", 2)
	v.SetDefault("coarsening.respect_node_order", true)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./hyperpart.db")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./storage")
	v.SetDefault("storage.scheme", "https")

	v.SetDefault("scheduler.poll_interval", 2)
	v.SetDefault("scheduler.worker_count", 4)
	v.SetDefault("scheduler.run_batch_size", 10)

	v.SetDefault("log.level", "info")
}

// Validate checks configuration consistency.
func Validate(cfg *Config) error {
	if cfg.Coarsening.MaxWorkers < 0 {
		return fmt.Errorf("coarsening.max_workers must be >= 0")
	}
	if cfg.Coarsening.CommunityNodeLimit < 1 {
		return fmt.Errorf("coarsening.community_node_limit must be >= 1")
	}
	switch cfg.Database.Type {
	case "sqlite", "mysql", "postgres", "postgresql", "":
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
	switch cfg.Storage.Type {
	case "local", "cos", "":
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
	return nil
}
