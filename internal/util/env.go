package util

import (
	"os"
	"strconv"

	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"

	"github.com/joho/godotenv"
)

// LoadEnv merges a .env file into the process environment when one
// exists next to the binary.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}
}

// GetEnv returns the value of key, or "" when unset.
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvString returns the value of key, falling back to defaultValue
// when the variable is unset.
func GetEnvString(key string, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// GetEnvNumeric parses key as a float, falling back to defaultValue
// when unset or unparseable.
func GetEnvNumeric(key string, defaultValue int) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return float64(defaultValue)
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return float64(defaultValue)
	}
	return parsed
}

// GetEnvBool returns true or false for the literal strings "true" and
// "false"; anything else yields defaultValue.
func GetEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "true":
		return true
	case "false":
		return false
	default:
		return defaultValue
	}
}
