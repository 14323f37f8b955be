package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all environment backed configuration for the gateway.
type Config struct {
	// HTTP Server
	HTTPPort      int    `env:"HTTP_PORT" envDefault:"8001"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`

	// Session / Auth
	JWTSecret    string        `env:"JWT_SECRET,notEmpty"`
	JWTAlgorithm string        `env:"JWT_ALGORITHM" envDefault:"HS256"`
	TokenExpiry  time.Duration `env:"TOKEN_EXPIRY" envDefault:"30m"`

	// Users (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Model provider
	BedrockRegion string `env:"BEDROCK_REGION" envDefault:"us-west-2"`

	// Conversation storage
	DynamoDBRegion string        `env:"DYNAMODB_REGION" envDefault:"us-west-2"`
	DynamoDBTable  string        `env:"DYNAMODB_TABLE" envDefault:"chat_history"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	// Observability / Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.JWTAlgorithm = strings.ToUpper(strings.TrimSpace(cfg.JWTAlgorithm))
	if cfg.JWTAlgorithm != "HS256" && cfg.JWTAlgorithm != "HS384" && cfg.JWTAlgorithm != "HS512" {
		return nil, fmt.Errorf("unsupported JWT_ALGORITHM %q", cfg.JWTAlgorithm)
	}

	if cfg.TokenExpiry <= 0 {
		return nil, fmt.Errorf("TOKEN_EXPIRY must be positive, got %s", cfg.TokenExpiry)
	}

	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	return cfg, nil
}
