// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server and storage backends.
type Config struct {
	HTTPAddr        string
	MySQLDSN        string
	RedisAddr       string
	ShutdownTimeout time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:        getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/inventory?parseTime=true"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		DefaultPageSize: atoienv("DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:     atoienv("MAX_PAGE_SIZE", 1000),
	}
}
