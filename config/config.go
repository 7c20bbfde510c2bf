package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the client's environment-driven configuration. A .env file in
// the working directory is read first; real environment variables win.
type Config struct {
	BaseURL     string        `env:"TOMATO_API_URL" envDefault:"http://localhost:5000"`
	WSURL       string        `env:"TOMATO_WS_URL"`
	DataDir     string        `env:"TOMATO_DATA_DIR"`
	HTTPTimeout time.Duration `env:"TOMATO_HTTP_TIMEOUT" envDefault:"15s"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.WSURL == "" {
		cfg.WSURL = deriveWSURL(cfg.BaseURL)
	}
	if cfg.DataDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		cfg.DataDir = filepath.Join(dir, "tomato-client")
	}
	return cfg, nil
}

// deriveWSURL points the order feed at the API host unless overridden.
func deriveWSURL(baseURL string) string {
	u := baseURL
	switch {
	case len(u) >= 8 && u[:8] == "https://":
		u = "wss://" + u[8:]
	case len(u) >= 7 && u[:7] == "http://":
		u = "ws://" + u[7:]
	}
	return u + "/api/orders/ws"
}

// CookieFile is where the session cookie snapshot lives.
func (c Config) CookieFile() string {
	return filepath.Join(c.DataDir, "cookies.json")
}

// CacheFile is the local sqlite cache path.
func (c Config) CacheFile() string {
	return filepath.Join(c.DataDir, "cache.db")
}
