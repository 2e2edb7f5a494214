package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment. A .env file in the
// working directory, when present, is loaded first without overriding
// variables that are already set.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	config.EndpointAddr = getEnv("ADDRESS", config.EndpointAddr)
	if port := os.Getenv("PORT"); port != "" {
		config.EndpointAddr = ":" + port
	}
	config.DatabaseDSN = getEnv("DATABASE_DSN", config.DatabaseDSN)
	config.SecretKey = getEnv("SECRET_KEY", getEnv("PRIVATE_KEY", config.SecretKey))
	config.TokenValidityDuration = getEnvAsDuration("TOKEN_VALIDITY", config.TokenValidityDuration)
	config.AuthRateLimit = getEnvAsInt("AUTH_RATE_LIMIT", config.AuthRateLimit)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)

	config.RedisAddr = getEnv("REDIS_ADDR", config.RedisAddr)
	config.RedisPassword = getEnv("REDIS_PASSWORD", config.RedisPassword)
	config.RedisDB = getEnvAsInt("REDIS_DB", config.RedisDB)
	config.SeriesCacheTTL = getEnvAsDuration("SERIES_CACHE_TTL", config.SeriesCacheTTL)

	config.S3RootUser = getEnv("S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = getEnv("S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = getEnv("S3_BUCKET", config.S3Bucket)
	config.S3Region = getEnv("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getEnv("S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	config.ExportLinkTTL = getEnvAsDuration("EXPORT_LINK_TTL", config.ExportLinkTTL)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}
