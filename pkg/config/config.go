package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config configuración del servidor, leída de variables de entorno
type Config struct {
	HTTPAddr string `env:"QUIZ_HTTP_ADDR" envDefault:":8080"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	CatalogPath string `env:"QUIZ_CATALOG_PATH" envDefault:"games.json"`

	ResultsDriver string `env:"QUIZ_RESULTS_DRIVER" envDefault:"sqlite"`
	ResultsDSN    string `env:"QUIZ_RESULTS_DSN"`

	SessionTTL      time.Duration `env:"QUIZ_SESSION_TTL" envDefault:"24h"`
	LeaderboardSize int           `env:"QUIZ_LEADERBOARD_SIZE" envDefault:"20"`
	// umbral por defecto para juegos sin regla de aprobado
	PassRatio float64 `env:"QUIZ_PASS_RATIO" envDefault:"0.7"`
}

// Load lee la configuración del entorno y valida los rangos
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PassRatio < 0 || cfg.PassRatio > 1 {
		return Config{}, fmt.Errorf("QUIZ_PASS_RATIO debe estar entre 0 y 1, es %v", cfg.PassRatio)
	}
	if cfg.LeaderboardSize <= 0 {
		return Config{}, fmt.Errorf("QUIZ_LEADERBOARD_SIZE debe ser positivo, es %d", cfg.LeaderboardSize)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("QUIZ_SESSION_TTL debe ser positivo, es %v", cfg.SessionTTL)
	}
	return cfg, nil
}
