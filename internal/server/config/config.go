// Package config handles configuration for the server component: defaults,
// then environment (optionally seeded from a .env file), then a JSON file,
// then command-line flags. Later sources win.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the waterwatch server. It is built once
// at startup and never mutated afterwards.
//
// An empty DatabaseDSN selects the in-memory store, an empty RedisAddr
// disables the series cache and an empty S3Bucket disables exports.
type Config struct {
	EndpointAddr          string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	AuthRateLimit         int // sign-in/sign-up requests per minute per client IP
	LogLevel              string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SeriesCacheTTL time.Duration

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	ExportLinkTTL  time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":3100"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 24 * time.Hour
	c.AuthRateLimit = 30
	c.LogLevel = "info"
	c.RedisAddr = ""
	c.RedisDB = 0
	c.SeriesCacheTTL = 10 * time.Minute
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.ExportLinkTTL = 15 * time.Minute
}

// LoadConfig builds a Config from all sources.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
