package db

import (
	"context"
	"fmt"

	"github.com/mohammadpnp/padron-import/internal/infrastructure/db/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OpenPostgres opens the gorm handle used by every repository except the COPY upserter.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates every table. On PostgreSQL the staging table is made unlogged.
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	conn := gdb.WithContext(ctx)
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if gdb.Dialector.Name() == "postgres" {
		if err := conn.Exec("ALTER TABLE stg_members SET UNLOGGED").Error; err != nil {
			return fmt.Errorf("set stg_members unlogged: %w", err)
		}
	}
	return nil
}
