package common

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/sandeepkv93/authplus-license-service/internal/config"
	"github.com/sandeepkv93/authplus-license-service/internal/database"
)

// LoadEnvFile loads KEY=VALUE pairs into environment.
// Existing environment variables are preserved and a missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func LoadConfig(envFile string) (*config.Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	return config.Load()
}

// LoadConfigDB opens the configured store. Callers close it with CloseDB.
func LoadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	cfg, err := LoadConfig(envFile)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func CloseDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
