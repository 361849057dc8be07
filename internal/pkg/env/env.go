// Package env loads configuration from a .env file with a fallback to the
// process environment, so container deployments can override single keys.
package env

import (
	"os"

	"github.com/joho/godotenv"
)

// Env holds the key/value pairs read from the .env file at startup.
var Env map[string]string

// GetEnv returns the configured value for key, preferring the .env file over
// the process environment, and def when neither is set.
func GetEnv(key, def string) string {
	if val, ok := Env[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// SetupEnvFile reads the first .env file it finds. Binaries start from the
// repo root in containers and from cmd/salonluxe or cmd/migrate during
// development, hence the candidate list.
func SetupEnvFile() {
	candidates := []string{
		".env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range candidates {
		if parsed, err := godotenv.Read(path); err == nil {
			Env = parsed
			return
		}
	}
	panic("no .env file found next to the binary or at the repo root")
}

// IsDev reports whether the app runs with APP_ENV=dev.
func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
