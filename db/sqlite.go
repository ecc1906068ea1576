package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"legacy-migrator/config"
)

// OpenSQLite opens the option store database and migrates the given models.
func OpenSQLite(path string, models ...any) (*gorm.DB, error) {
	if path == "" {
		path = config.GetConfig().Store.SQLitePath
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if len(models) > 0 {
		if err := gdb.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
		}
	}
	config.Logger.Infof("SQLite option store opened at %s", path)
	return gdb, nil
}
