package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Redis   RedisConfig
	AMQP    AMQPConfig
	Cookie  CookieConfig
	CORS    CORSConfig
}

type ServerConfig struct {
	Port            int           `env:"SERVER_PORT" envDefault:"3000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type BackendConfig struct {
	// BaseURL is the backend API root, including the /api prefix.
	BaseURL string        `env:"BACKEND_BASE_URL" envDefault:"http://localhost:5000/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type AMQPConfig struct {
	// URL is optional; when empty no order events are published.
	URL string `env:"AMQP_URL" envDefault:""`
}

type CookieConfig struct {
	ProfileName string        `env:"COOKIE_PROFILE_NAME" envDefault:"sz_profile"`
	MaxAge      time.Duration `env:"COOKIE_MAX_AGE" envDefault:"8760h"`
	Secure      bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
