// Package config reads server settings from the environment.
package config

import (
	"os"
	"strings"
)

type Config struct {
	Addr           string
	AllowedOrigins []string
	PostgresURL    string
	Debug          bool
}

func Load() Config {
	cfg := Config{
		Addr:        ":3000",
		PostgresURL: os.Getenv("POSTGRES_URL"),
		Debug:       os.Getenv("DEBUG") == "true",
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}
	return cfg
}
