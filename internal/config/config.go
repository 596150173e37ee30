package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DBPath      string
	Environment string
}

// Load reads .env if present, then the process environment. A missing .env
// is fine; everything has a default suited to local development.
func Load() *Config {
	if err := godotenv.Load(".env"); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := &Config{
		Addr:        os.Getenv("ADDR"),
		DBPath:      os.Getenv("DB_PATH"),
		Environment: os.Getenv("ENV"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "studio.db"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	return cfg
}
