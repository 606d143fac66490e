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
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Corpus struct {
		// File optionally replaces the embedded seed corpus.
		File string `yaml:"file"`
		TTL  string `yaml:"ttl"`
	} `yaml:"corpus"`
	Quiz struct {
		QuestionLimit int    `yaml:"questionLimit"`
		TimeBudget    int    `yaml:"timeBudget"`
		TickInterval  string `yaml:"tickInterval"`
		SettleDelay   string `yaml:"settleDelay"`
		EnforceUnlock bool   `yaml:"enforceUnlock"`
	} `yaml:"quiz"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// Default returns the settings used when no config file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Corpus.TTL = "10m"
	cfg.Quiz.QuestionLimit = 5
	cfg.Quiz.TimeBudget = 30
	cfg.Quiz.TickInterval = "1s"
	cfg.Quiz.SettleDelay = "1500ms"
	cfg.Quiz.EnforceUnlock = true
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
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
