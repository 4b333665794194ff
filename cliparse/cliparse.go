package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

// Store backend names accepted by -s / STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Port         int
	StoreBackend string
	DatabaseURL  string
	RedisURL     string
	DataDir      string
}

// ParseFlags validates flags and fills in environment fallbacks
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("biteswipe", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.StoreBackend, "s", "", "Store backend (memory, redis, sqlite or postgres)")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or file path (sqlite/postgres backends)")
	fs.StringVar(&cfg.RedisURL, "r", "", "Redis URL (redis backend)")
	fs.StringVar(&cfg.DataDir, "data-dir", "", "Directory for local state such as the participant identity")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8080 // default
		}
	}

	if cfg.StoreBackend == "" {
		cfg.StoreBackend = os.Getenv("STORE_BACKEND")
		if cfg.StoreBackend == "" {
			cfg.StoreBackend = BackendMemory
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = os.Getenv("DATA_DIR")
		if cfg.DataDir == "" {
			cfg.DataDir = "."
		}
	}

	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, errors.New("redis backend requires -r or REDIS_URL")
		}
	case BackendSQLite, BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New(cfg.StoreBackend + " backend requires -d or DATABASE_URL")
		}
	default:
		return Config{}, errors.New("unknown store backend " + strconv.Quote(cfg.StoreBackend))
	}

	return cfg, nil
}
