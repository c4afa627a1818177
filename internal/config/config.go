// Package config loads vuequest settings from an optional YAML file, a
// .env file and VUEQUEST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/vuequest/internal/llm"
)

type Config struct {
	DB      string        `mapstructure:"db"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Batch   BatchConfig   `mapstructure:"batch"`
}

type StorageConfig struct {
	// Backend is one of sqlite, memory or redis.
	Backend string `mapstructure:"backend"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Namespace string `mapstructure:"namespace"`
	Channel   string `mapstructure:"channel"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type BatchConfig struct {
	Concurrency int     `mapstructure:"concurrency"`
	RPS         float64 `mapstructure:"rps"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "")
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.namespace", "vuequest:")
	v.SetDefault("redis.channel", "")
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.rps", 4.0)
}

// Load reads configuration. path names an explicit config file; when empty
// vuequest.yaml is looked up in the working directory and
// $XDG_CONFIG_HOME/vuequest. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("VUEQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("vuequest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configHome(); dir != "" {
			v.AddConfigPath(filepath.Join(dir, "vuequest"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	switch cfg.Storage.Backend {
	case "sqlite", "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
	if cfg.Batch.Concurrency < 1 {
		cfg.Batch.Concurrency = 1
	}
	return &cfg, nil
}

func configHome() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// ProviderConfig resolves the LLM provider settings. An explicit
// llm.provider (or VUEQUEST_LLM_PROVIDER) selects the provider and reads
// its VUEQUEST_* variables; otherwise the standard provider key variables
// are checked. ok is false when no provider could be found.
func (c *Config) ProviderConfig() (cfg llm.Config, ok bool) {
	if c.LLM.Provider != "" {
		cfg = llm.ConfigFromEnv()
		cfg.Provider = c.LLM.Provider
	} else if cfg, ok = llm.DiscoverConfig(); !ok {
		return llm.Config{}, false
	}

	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	if c.Batch.RPS > 0 {
		cfg.RateLimit.RequestsPerSecond = c.Batch.RPS
		cfg.RateLimit.Burst = c.Batch.Concurrency
	}

	if e := cfg.Endpoint(cfg.Provider); e != nil {
		override(&e.APIKey, c.LLM.APIKey)
		override(&e.Model, c.LLM.Model)
		override(&e.BaseURL, c.LLM.BaseURL)
	}
	return cfg, true
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
