// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"8080"`

	MongoURI string `env:"MONGODB_URI,required,notEmpty"`
	DBName   string `env:"DB_NAME" envDefault:"prepflow"`

	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	BaseURL    string        `env:"BASE_URL"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromEmail    string `env:"FROM_EMAIL" envDefault:"PrepFlow <noreply@prepflow.app>"`

	GeminiAPIKey string `env:"GOOGLE_GENERATIVE_AI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-001"`

	AIBackoffInitial    time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"1s"`
	AIBackoffMax        time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"10s"`
	AIBackoffMaxElapsed time.Duration `env:"AI_BACKOFF_MAX_ELAPSED" envDefault:"60s"`

	LatestInterviewsLimit int    `env:"LATEST_INTERVIEWS_LIMIT" envDefault:"20"`
	RateLimitPerMin       int    `env:"RATE_LIMIT_PER_MIN" envDefault:"10"`
	CORSAllowOrigins      string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`

	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	ShutdownTimeout  time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"20s"`
}

// Load reads an optional .env file and parses the environment into a Config.
// Variables already present in the environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// AllowedOrigins splits CORSAllowOrigins on commas. An empty list means "*".
func (c Config) AllowedOrigins() []string {
	s := strings.TrimSpace(c.CORSAllowOrigins)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
