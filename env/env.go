package env

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// GetEnv reads an environment variable, falling back to defaultValue when
// the variable is unset or cannot be parsed as T. A .env file is loaded on
// first use; its absence is not an error.
func GetEnv[T any](name string, defaultValue T) T {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})

	valueStr, ok := os.LookupEnv(name)
	if !ok || valueStr == "" {
		return defaultValue
	}

	var value any

	switch any(defaultValue).(type) {
	case int:
		v, err := strconv.Atoi(valueStr)
		if err != nil {
			return defaultValue
		}
		value = v
	case bool:
		v, err := strconv.ParseBool(valueStr)
		if err != nil {
			return defaultValue
		}
		value = v
	case float64:
		v, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return defaultValue
		}
		value = v
	default:
		value = valueStr
	}

	return value.(T)
}
