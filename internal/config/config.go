package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the course API service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	RedisURL       string
	NATSUrl        string
	JWTSecret      string
	AIProvider     string
	OpenAIAPIKey   string
	AIModel        string
	GradingTimeout time.Duration
	GuardTTL       time.Duration
	GradeCacheTTL  time.Duration
	MinWords       int
	MaxWords       int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GLEE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GleeWorld Course API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("grading.timeout", "90s")
	v.SetDefault("grading.guard_ttl", "2m")
	v.SetDefault("grading.cache_ttl", "5m")
	v.SetDefault("journal.min_words", 250)
	v.SetDefault("journal.max_words", 300)

	timeout, err := time.ParseDuration(v.GetString("grading.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading timeout: %w", err)
	}

	guardTTL, err := time.ParseDuration(v.GetString("grading.guard_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading guard ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("grading.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grade cache ttl: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		NATSUrl:        v.GetString("nats.url"),
		JWTSecret:      v.GetString("jwt.secret"),
		AIProvider:     strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		AIModel:        v.GetString("ai.model"),
		GradingTimeout: timeout,
		GuardTTL:       guardTTL,
		GradeCacheTTL:  cacheTTL,
		MinWords:       v.GetInt("journal.min_words"),
		MaxWords:       v.GetInt("journal.max_words"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MinWords <= 0 || cfg.MaxWords < cfg.MinWords {
		return Config{}, fmt.Errorf("invalid journal word bounds: min %d max %d", cfg.MinWords, cfg.MaxWords)
	}

	return cfg, nil
}
