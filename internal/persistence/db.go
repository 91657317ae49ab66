package persistence

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"feedgraph/internal/config"
)

type DB struct {
	Config *config.Config

	db *gorm.DB
}

func (d *DB) Init(_ context.Context) error {
	if d.Config.PostgresURL == "" {
		return fmt.Errorf("no postgres-url configured")
	}

	gormDB, err := gorm.Open(postgres.Open(d.Config.PostgresURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	d.db = gormDB
	return nil
}

func (d *DB) Gorm() *gorm.DB {
	return d.db
}

func (d *DB) Shutdown(_ context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}
