package config

import (
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds the server settings read from the environment. A .env file
// in the working directory is loaded first.
type Config struct {
	Addr        string
	DBDriver    string // "sqlite3" or "pgx"
	DBDSN       string
	NATSURL     string // Empty disables result publishing
	NATSSubject string
	StaticDir   string
	RoundDelay  time.Duration
	StartDelay  time.Duration
}

// Load builds a Config from GEISHA_* variables, falling back to defaults.
func Load() (Config, error) {
	cfg := Config{
		Addr:        getEnv("GEISHA_ADDR", ":3001"),
		DBDriver:    getEnv("GEISHA_DB_DRIVER", "sqlite3"),
		DBDSN:       getEnv("GEISHA_DB_DSN", "./geisha.db"),
		NATSURL:     os.Getenv("GEISHA_NATS_URL"),
		NATSSubject: getEnv("GEISHA_NATS_SUBJECT", "geisha.matches"),
		StaticDir:   getEnv("GEISHA_STATIC_DIR", "web/static"),
	}

	var err error
	if cfg.RoundDelay, err = getDuration("GEISHA_ROUND_DELAY", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.StartDelay, err = getDuration("GEISHA_START_DELAY", time.Second); err != nil {
		return Config{}, err
	}

	switch cfg.DBDriver {
	case "sqlite3", "pgx":
	default:
		return Config{}, fmt.Errorf("GEISHA_DB_DRIVER: unsupported driver %q", cfg.DBDriver)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", key, v)
	}
	return d, nil
}
