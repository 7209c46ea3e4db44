package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=5000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BcryptCost is the work factor used when hashing new passwords.
	BcryptCost int `env:"BCRYPT_COST, default=10"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS, default=*"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Gemini    GeminiConfig
	Predictor PredictorConfig
	RateLimit RateLimitConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=skinscan"`
}

// RedisConfig is optional: an empty Addr keeps rate limiting in-process.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	Model   string        `env:"GEMINI_MODEL,   default=gemini-1.5-flash"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT, default=30s"`
}

type PredictorConfig struct {
	URL       string        `env:"PREDICTOR_URL,      default=https://skinscanbackend.onrender.com/predict"`
	Timeout   time.Duration `env:"PREDICTOR_TIMEOUT,  default=15s"`
	MaxUpload string        `env:"PREDICT_MAX_UPLOAD, default=10M"`
}

// RateLimitConfig bounds register/login attempts per client IP. Zero disables it.
type RateLimitConfig struct {
	AuthPerMinute int `env:"RATE_LIMIT_AUTH_PER_MINUTE, default=0"`
}

// IsDevelopment reports whether human-friendly output should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith resolves the configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
