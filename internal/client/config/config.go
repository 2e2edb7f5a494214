package config

import (
	"os"
	"time"
)

type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	ExportDir      string
	LocalDB        string
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3100"
	c.RequestTimeout = 10 * time.Second
	c.ExportDir = "exports"
	c.LocalDB = "waterwatch.db"
}

func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
