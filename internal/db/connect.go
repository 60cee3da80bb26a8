// Package db handles database connection, migration, and seeding.
package db

import (
	"fmt"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a MySQL DSN from config, unless an explicit DSN overrides it.
func DSN(cfg config.DBConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	auth := cfg.User
	if cfg.Password != "" {
		auth += ":" + cfg.Password
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4", auth, cfg.Host, cfg.Port, cfg.Database)
}

// Connect opens a GORM connection for the configured driver.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.Driver {
	case "sqlite":
		path := cfg.DSN
		if path == "" {
			path = cfg.Database + ".db"
		}
		conn, err = gorm.Open(sqlite.Open(path), gormCfg)
	default:
		conn, err = gorm.Open(mysql.Open(DSN(cfg)), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("db: connect (%s): %w", cfg.Driver, err)
	}
	return conn, nil
}
