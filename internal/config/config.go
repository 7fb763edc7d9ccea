// Package config loads settings for the viewer and the backend.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Upload UploadConfig `yaml:"upload"`
	LLM    LLMConfig    `yaml:"llm"`
	Cache  CacheConfig  `yaml:"cache"`
	Client ClientConfig `yaml:"client"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds backend HTTP settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	CORSOrigins      []string      `yaml:"cors_origins"`
	Version          string        `yaml:"version"`
	Project          string        `yaml:"project"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UploadConfig limits accepted files.
type UploadConfig struct {
	MaxSize int64 `yaml:"max_size"`
}

// LLMConfig selects the summarization model.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	// MaxChars bounds the excerpt handed to the model.
	MaxChars int `yaml:"max_chars"`
}

// CacheConfig holds summary cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory, disk, redis or none
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Dir        string        `yaml:"dir"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// ClientConfig tunes the terminal viewer.
type ClientConfig struct {
	BackendURL      string        `yaml:"backend_url"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ScanDuration    time.Duration `yaml:"scan_duration"`
	ScanHideDelay   time.Duration `yaml:"scan_hide_delay"`
	AutoOpenSummary bool          `yaml:"auto_open_summary"`
	AutoOpenDelay   time.Duration `yaml:"auto_open_delay"`
	DragThreshold   float64       `yaml:"drag_threshold"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
	File   string `yaml:"file"`
}

// Load applies, in order: defaults, the YAML file at path (optional), a .env
// file in the working directory when present, and environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "127.0.0.1",
			Port:             8000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     5 * time.Minute,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:8000",
				"http://127.0.0.1:8000",
			},
			Version: "1.0.0",
			Project: "PDF2AI Backend",
		},
		Upload: UploadConfig{MaxSize: 50 * 1024 * 1024},
		LLM: LLMConfig{
			MaxChars: 200_000,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        24 * time.Hour,
			MaxEntries: 256,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
			},
		},
		Client: ClientConfig{
			BackendURL:      "http://127.0.0.1:8000",
			ScanDuration:    30 * time.Second,
			ScanHideDelay:   time.Second,
			AutoOpenSummary: true,
			AutoOpenDelay:   1500 * time.Millisecond,
			DragThreshold:   5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload max_size must be positive")
	}
	switch c.Cache.Driver {
	case "memory", "disk", "redis", "none":
	default:
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "", "ollama", "openai":
	default:
		return fmt.Errorf("invalid llm provider: %s", c.LLM.Provider)
	}
	if c.Client.ScanDuration <= 0 {
		return fmt.Errorf("client scan_duration must be positive")
	}
	if c.Client.DragThreshold < 0 {
		return fmt.Errorf("client drag_threshold must not be negative")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PDF2AI_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PDF2AI_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PDF2AI_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("PDF2AI_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Upload.MaxSize = n
		}
	}
	if v := os.Getenv("PDF2AI_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" && cfg.LLM.Endpoint == "" {
		cfg.LLM.Endpoint = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" && cfg.LLM.Model == "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("PDF2AI_CACHE_DRIVER"); v != "" {
		cfg.Cache.Driver = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
		if os.Getenv("PDF2AI_CACHE_DRIVER") == "" {
			cfg.Cache.Driver = "redis"
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("PDF2AI_BACKEND_URL"); v != "" {
		cfg.Client.BackendURL = v
	}
	if v := os.Getenv("PDF2AI_SCAN_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Client.ScanDuration = d
		}
	}
	if v := os.Getenv("PDF2AI_AUTO_OPEN_SUMMARY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Client.AutoOpenSummary = b
		}
	}
	if v := os.Getenv("PDF2AI_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PDF2AI_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
