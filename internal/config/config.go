package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the SkillForge server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	AI       AIConfig
	Publish  PublishConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type CacheConfig struct {
	Backend     string
	RedisURL    string
	AnalysisTTL time.Duration
	MaxEntries  int
}

type AIConfig struct {
	Provider          string
	RequestTimeout    time.Duration
	MaxRetries        int
	MaxTokens         int
	Temperature       float32
	RateLimitRequests int
	RateLimitWindow   time.Duration
	OpenAI            OpenAIConfig
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type PublishConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var validProviders = map[string]bool{
	"openai": true,
	"mock":   true,
}

var validCacheBackends = map[string]bool{
	"memory": true,
	"redis":  true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("SKILLFORGE_PORT", 8080),
			Env:  envString("SKILLFORGE_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Cache: CacheConfig{
			Backend:     envString("CACHE_BACKEND", "memory"),
			RedisURL:    os.Getenv("REDIS_URL"),
			AnalysisTTL: envDuration("ANALYSIS_CACHE_TTL", 15*time.Minute),
			MaxEntries:  envInt("CACHE_MAX_ENTRIES", 4096),
		},
		AI: AIConfig{
			Provider:          envString("AI_PROVIDER", "openai"),
			RequestTimeout:    envDurationSecs("AI_REQUEST_TIMEOUT_SECS", 60*time.Second),
			MaxRetries:        envInt("AI_MAX_RETRIES", 3),
			MaxTokens:         envInt("AI_MAX_TOKENS", 2048),
			Temperature:       envFloat32("AI_TEMPERATURE", 0.3),
			RateLimitRequests: envInt("AI_RATE_LIMIT_REQUESTS", 50),
			RateLimitWindow:   envDurationSecs("AI_RATE_LIMIT_WINDOW_SECS", 60*time.Second),
			OpenAI: OpenAIConfig{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  envString("OPENAI_MODEL", "gpt-4o"),
			},
		},
		Publish: PublishConfig{
			BaseURL: envString("GITHUB_API_URL", "https://api.github.com"),
			Token:   os.Getenv("GITHUB_TOKEN"),
			Timeout: envDuration("GITHUB_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Enabled:   envBool("STORAGE_ENABLED", false),
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    envString("STORAGE_BUCKET", "skill-archives"),
			UseSSL:    envBool("STORAGE_USE_SSL", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("CACHE_BACKEND must be one of memory, redis; got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND is redis")
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, mock; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.RateLimitRequests <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_REQUESTS must be positive, got %d", c.AI.RateLimitRequests)
	}

	if !strings.HasPrefix(c.Publish.BaseURL, "http://") && !strings.HasPrefix(c.Publish.BaseURL, "https://") {
		return fmt.Errorf("GITHUB_API_URL must start with http:// or https://, got %q", c.Publish.BaseURL)
	}

	if c.Storage.Enabled {
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("STORAGE_ENDPOINT is required when STORAGE_ENABLED is true")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required when STORAGE_ENABLED is true")
		}
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envFloat32(key string, defaultVal float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return defaultVal
	}
	return float32(f)
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
