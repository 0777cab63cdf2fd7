package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when no .env path is given.
const DefaultEnvFile = ".env"

// LoadDotEnv sets variables from a .env file without overriding ones already
// present in the environment. A named file must exist; with an empty path the
// default file is read if it is there and skipped otherwise.
func LoadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads the optional .env file and then the environment.
func LoadConfig(envPath string) (AppConfig, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return AppConfig{}, err
	}

	env, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}
	return env.ToAppConfig(), nil
}
