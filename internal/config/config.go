package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         string   `yaml:"port"`
		CORSOrigins  []string `yaml:"corsOrigins"`
		ReadTimeout  string   `yaml:"readTimeout"`
		WriteTimeout string   `yaml:"writeTimeout"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL          string `yaml:"ttl"`
		AutoAdvance  string `yaml:"autoAdvance"`
		TickInterval string `yaml:"tickInterval"`
		Retention    string `yaml:"retention"`
	} `yaml:"quiz"`
	Auth struct {
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"auth"`
}

// Default is the configuration used when no file is present: in-memory stores, local CORS.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Server.CORSOrigins = []string{"http://localhost:3000", "http://localhost:4028"}
	cfg.Server.ReadTimeout = "15s"
	cfg.Server.WriteTimeout = "15s"
	cfg.Redis.TTL = "10m"
	cfg.Quiz.TTL = "10m"
	cfg.Quiz.AutoAdvance = "2500ms"
	cfg.Quiz.TickInterval = "1s"
	cfg.Quiz.Retention = "10m"
	cfg.Auth.Secret = "peco-dev-secret"
	cfg.Auth.TTL = "24h"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not an error.
// AUTH_SECRET, when set, overrides the configured signing secret.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
