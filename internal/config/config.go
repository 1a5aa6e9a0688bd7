package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"

	DuplicatePolicyUpdate = "update"
	DuplicatePolicyReject = "reject"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8000"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"candidates.db"`

	LLMAPIKey      string        `env:"LLM_API_KEY,required,notEmpty"`
	LLMBaseURL     string        `env:"LLM_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"google/gemini-flash-1.5"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.5"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"10s"`

	SubmitTimeout        time.Duration `env:"SUBMIT_TIMEOUT" envDefault:"30s"`
	DuplicateEmailPolicy string        `env:"DUPLICATE_EMAIL_POLICY" envDefault:"update"`
	SubmitRateWindow     time.Duration `env:"SUBMIT_RATE_WINDOW" envDefault:"10m"`
	SubmitRateMax        int           `env:"SUBMIT_RATE_MAX" envDefault:"5"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisChannel  string `env:"REDIS_CHANNEL" envDefault:"profiles:updated"`

	WSBuffer       int           `env:"WS_BUFFER" envDefault:"64"`
	WSPingInterval time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`

	JWTSecret     string `env:"JWT_SECRET"`
	JWTTTLMinutes int    `env:"JWT_TTL_MINUTES" envDefault:"720"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normaliza los enums y verifica combinaciones obligatorias.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required for store driver %q", c.StoreDriver)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	c.DuplicateEmailPolicy = strings.ToLower(strings.TrimSpace(c.DuplicateEmailPolicy))
	switch c.DuplicateEmailPolicy {
	case DuplicatePolicyUpdate, DuplicatePolicyReject:
	default:
		return fmt.Errorf("unknown DUPLICATE_EMAIL_POLICY %q", c.DuplicateEmailPolicy)
	}
	return nil
}
