package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type config struct {
	Storage struct {
		// Driver is "memory" or "sqlite".
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"storage"`
	Server struct {
		Listen  string `yaml:"listen"`
		BaseURI string `yaml:"base_uri"`
	} `yaml:"server"`
	Calendar struct {
		Name        string `yaml:"name"`
		MonthsAhead int    `yaml:"months_ahead"`
	} `yaml:"calendar"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func defaultConfig() config {
	var cfg config
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = "chemocare.db"
	cfg.Server.Listen = ":8080"
	cfg.Server.BaseURI = "/caldav/"
	cfg.Calendar.Name = "Treatment plan"
	cfg.Log.Level = "info"
	return cfg
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Storage.Driver != "memory" && cfg.Storage.Driver != "sqlite" {
		return cfg, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return cfg, nil
}
