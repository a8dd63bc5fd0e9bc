// Package config loads process configuration from the environment, with an
// optional .env file for development setups.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP Configuration
	ListenAddr string

	// Storage Configuration
	DBPath        string
	MigrationsDir string

	// Acquisition Configuration
	SerialPort string

	// Rendering defaults
	Theme      string
	RasterSize int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		ListenAddr:    getEnv("SCALPVIEW_LISTEN", ":8080"),
		DBPath:        getEnv("SCALPVIEW_DB", "scalpview.db"),
		MigrationsDir: getEnv("SCALPVIEW_MIGRATIONS", "migrations"),
		SerialPort:    getEnv("SCALPVIEW_SERIAL_PORT", "/dev/ttyUSB0"),
		Theme:         getEnv("SCALPVIEW_THEME", "light"),
		RasterSize:    getEnvInt("SCALPVIEW_RASTER_SIZE", 500),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
	}
	return defaultValue
}
