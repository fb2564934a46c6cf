// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config carries every runtime knob. The JWT secret is deliberately absent
// a default: startup fails without it.
type Config struct {
	Env     string `env:"POSTBOARD_ENV" env-default:"local"`
	Addr    string `env:"POSTBOARD_ADDR" env-default:":8080"`
	Backend string `env:"POSTBOARD_STORE" env-default:"mongo"`

	MongoURI string `env:"POSTBOARD_MONGO_URI" env-default:"mongodb://localhost:27017"`
	MongoDB  string `env:"POSTBOARD_MONGO_DB" env-default:"postboard"`

	PostgresDSN string `env:"POSTBOARD_PG_DSN"`

	JWTSecret string `env:"POSTBOARD_JWT_SECRET"`

	ReadTimeout  time.Duration `env:"POSTBOARD_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `env:"POSTBOARD_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `env:"POSTBOARD_IDLE_TIMEOUT" env-default:"60s"`

	RateBurst    int   `env:"POSTBOARD_RATE_BURST" env-default:"50"`
	RatePerSec   int   `env:"POSTBOARD_RATE_PER_SEC" env-default:"25"`
	MaxBodyBytes int64 `env:"POSTBOARD_MAX_BODY_BYTES" env-default:"1048576"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	switch cfg.Backend {
	case "mongo", "postgres", "mem":
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	return &cfg, nil
}
