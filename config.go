package extcore

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sapcc/go-bits/osext"
)

// DefaultPort is the port servers listen on when neither ServerConfig.Port
// nor PORT is set.
const DefaultPort = 3003

// EnvConfig is the part of the server configuration read from the
// environment.
type EnvConfig struct {
	Port       int
	Production bool   // APP_ENV=production
	LogLevel   string // LOG_LEVEL
	LogFormat  string // LOG_FORMAT
}

// LoadDotEnv loads <root>/.env into the process environment. Variables
// already set win. A missing file is not an error.
func LoadDotEnv(root string) error {
	path := filepath.Join(root, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadEnvConfig loads <root>/.env and reads the server variables.
func LoadEnvConfig(root string) (EnvConfig, error) {
	if err := LoadDotEnv(root); err != nil {
		return EnvConfig{}, err
	}

	cfg := EnvConfig{
		Port:       DefaultPort,
		Production: osext.GetenvOrDefault("APP_ENV", "development") == "production",
		LogLevel:   osext.GetenvOrDefault("LOG_LEVEL", "info"),
		LogFormat:  osext.GetenvOrDefault("LOG_FORMAT", "text"),
	}

	if raw := osext.GetenvOrDefault("PORT", ""); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 0 || port > 65535 {
			return cfg, fmt.Errorf("invalid PORT %q", raw)
		}
		cfg.Port = port
	}

	return cfg, nil
}
