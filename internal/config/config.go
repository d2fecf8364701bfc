package config

import (
	"os"
	"strconv"

	"github.com/notekeeper-app/notekeeper/internal/db"
)

// InsecureDefaultSecret is the fallback session signing secret. Running with
// it in production makes every session forgeable.
const InsecureDefaultSecret = "my-secret"

type Config struct {
	Port string

	SessionSecret   string
	SessionTTLHours int

	DBDriver   string
	DBPath     string
	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string
}

func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = InsecureDefaultSecret
	}

	ttl := 72
	if s := os.Getenv("SESSION_TTL_HOURS"); s != "" {
		if val, err := strconv.Atoi(s); err == nil {
			ttl = val
		}
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	return &Config{
		Port: port,

		SessionSecret:   secret,
		SessionTTLHours: ttl,

		DBDriver:   driver,
		DBPath:     os.Getenv("DB_PATH"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     os.Getenv("DB_HOST"),
		DBName:     os.Getenv("DB_NAME"),
	}
}

// UsingDefaultSecret reports whether the insecure fallback secret is in use.
func (c *Config) UsingDefaultSecret() bool {
	return c.SessionSecret == InsecureDefaultSecret
}

// DBConfig returns a db-specific configuration struct.
func (c *Config) DBConfig() db.Config {
	return db.Config{
		Driver:   c.DBDriver,
		Path:     c.DBPath,
		User:     c.DBUser,
		Password: c.DBPassword,
		Host:     c.DBHost,
		Name:     c.DBName,
	}
}
