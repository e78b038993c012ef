package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config is everything read from the environment at startup.
type Config struct {
	Environment string // develop, staging, production
	HTTPPort    int
	LogLevel    string

	MySQLHost     string
	MySQLPort     int
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string

	MigrationsPath string

	JWTSecret   string
	JWTTTLHours int
}

// Load reads .env when present, then the process environment. Every
// value has a sane development default so the service boots with an
// empty environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Environment: getOrDefault("ENVIRONMENT", "develop").(string),
		HTTPPort:    cast.ToInt(getOrDefault("HTTP_PORT", 8080)),
		LogLevel:    getOrDefault("LOG_LEVEL", "debug").(string),

		MySQLHost:     getOrDefault("MYSQL_HOST", "127.0.0.1").(string),
		MySQLPort:     cast.ToInt(getOrDefault("MYSQL_PORT", 3306)),
		MySQLUser:     getOrDefault("MYSQL_USER", "fleetbook").(string),
		MySQLPassword: getOrDefault("MYSQL_PASSWORD", "fleetbook").(string),
		MySQLDatabase: getOrDefault("MYSQL_DATABASE", "fleetbook").(string),

		MigrationsPath: getOrDefault("MIGRATIONS_PATH", "migrations").(string),

		JWTSecret:   getOrDefault("JWT_SECRET", "dev-only-secret").(string),
		JWTTTLHours: cast.ToInt(getOrDefault("JWT_TTL_HOURS", 24)),
	}
}

func getOrDefault(key string, def any) any {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
