package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port             int
	DatabaseURL      string
	DatabaseType     string
	BaseURL          string
	OrganizerKeySalt string
	EventSlugSalt    string
	TokenSecret      string
}

// fileConfig mirrors Config for the optional YAML config file.
type fileConfig struct {
	Port             int    `yaml:"port"`
	DatabaseURL      string `yaml:"database_url"`
	DatabaseType     string `yaml:"database_type"`
	BaseURL          string `yaml:"base_url"`
	OrganizerKeySalt string `yaml:"organizer_key_salt"`
	EventSlugSalt    string `yaml:"event_slug_salt"`
	TokenSecret      string `yaml:"token_secret"`
}

// ParseFlags resolves configuration with precedence flags > env > file.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var configPath string

	fs := flag.NewFlagSet("convene", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL for share links")
	fs.StringVar(&configPath, "c", "", "Path to YAML config file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.OrganizerKeySalt, "organizer-salt", "", "Organizer key salt (prefer env)")
	fs.StringVar(&cfg.EventSlugSalt, "slug-salt", "", "Event slug salt (prefer env)")
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "Identity token secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var file fileConfig
	if configPath == "" {
		configPath = os.Getenv("CONVENE_CONFIG")
	}
	if configPath != "" {
		loaded, err := loadConfigFile(configPath)
		if err != nil {
			return Config{}, err
		}
		file = loaded
	}

	// Fall back to environment variables, then the config file
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else if file.Port != 0 {
			cfg.Port = file.Port
		} else {
			cfg.Port = 4270 // default
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = file.DatabaseURL
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = file.DatabaseType
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = "sqlite"
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = file.BaseURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}

	// Secrets - MUST be provided
	if cfg.OrganizerKeySalt == "" {
		cfg.OrganizerKeySalt = os.Getenv("ORGANIZER_KEY_SALT")
	}
	if cfg.OrganizerKeySalt == "" {
		cfg.OrganizerKeySalt = file.OrganizerKeySalt
	}
	if cfg.OrganizerKeySalt == "" {
		return Config{}, errors.New("ORGANIZER_KEY_SALT required")
	}

	if cfg.EventSlugSalt == "" {
		cfg.EventSlugSalt = os.Getenv("EVENT_SLUG_SALT")
	}
	if cfg.EventSlugSalt == "" {
		cfg.EventSlugSalt = file.EventSlugSalt
	}
	if cfg.EventSlugSalt == "" {
		return Config{}, errors.New("EVENT_SLUG_SALT required")
	}

	if cfg.TokenSecret == "" {
		cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	}
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = file.TokenSecret
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET required")
	}

	return cfg, nil
}

func loadConfigFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fileConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	return file, nil
}
