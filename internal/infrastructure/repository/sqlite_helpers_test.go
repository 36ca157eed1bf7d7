package repository_test

import (
	"context"
	"testing"

	infradb "github.com/mohammadpnp/padron-import/internal/infrastructure/db"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/db/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection to :memory: would see its own empty database.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infradb.Migrate(context.Background(), gdb))
	return gdb
}

func seedMember(t *testing.T, gdb *gorm.DB, nationalID string, inRegistry bool) models.Member {
	t.Helper()

	m := models.Member{
		MemberNumber: nationalID,
		NationalID:   nationalID,
		FullName:     "SOCIO " + nationalID,
		InRegistry:   inRegistry,
	}
	require.NoError(t, gdb.Create(&m).Error)
	return m
}
