package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port                int
	DatabaseURL         string
	DatabaseType        string
	BaseURL             string
	OwnerKeySalt        string
	VisitorSalt         string
	ModerationAPIKey    string
	ModerationThreshold float64
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("candidbox", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.BaseURL, "b", "", "Public base URL for share links")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.OwnerKeySalt, "owner-salt", "", "Owner key salt (prefer env)")
	fs.StringVar(&cfg.VisitorSalt, "visitor-salt", "", "Visitor/IP hash salt (prefer env)")

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
			cfg.Port = 3319 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:3319"
		}
	}

	// Secrets - MUST be provided
	if cfg.OwnerKeySalt == "" {
		cfg.OwnerKeySalt = os.Getenv("OWNER_KEY_SALT")
	}
	if cfg.OwnerKeySalt == "" {
		return Config{}, errors.New("OWNER_KEY_SALT required")
	}

	if cfg.VisitorSalt == "" {
		cfg.VisitorSalt = os.Getenv("VISITOR_SALT")
	}
	if cfg.VisitorSalt == "" {
		return Config{}, errors.New("VISITOR_SALT required")
	}

	// Optional: external moderation API (keyword fallback without it)
	cfg.ModerationAPIKey = os.Getenv("MODERATION_API_KEY")

	cfg.ModerationThreshold = 0.7
	if thStr := os.Getenv("MODERATION_THRESHOLD"); thStr != "" {
		th, err := strconv.ParseFloat(thStr, 64)
		if err != nil || th <= 0 || th > 1 {
			return Config{}, errors.New("invalid MODERATION_THRESHOLD env variable")
		}
		cfg.ModerationThreshold = th
	}

	return cfg, nil
}
