package database

import (
	"fmt"

	"github.com/sandeepkv93/authplus-license-service/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(cfg *config.Config) (*gorm.DB, error) {
	return OpenDriver(cfg.DatabaseDriver, cfg.DatabaseURL)
}

// OpenDriver opens a store for the named driver. Unique violations are
// translated to gorm.ErrDuplicatedKey.
func OpenDriver(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	switch driver {
	case config.DatabaseDriverPostgres:
		return gorm.Open(postgres.Open(dsn), gcfg)
	case config.DatabaseDriverSQLite:
		db, err := gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// in-memory databases vanish with their last connection
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
