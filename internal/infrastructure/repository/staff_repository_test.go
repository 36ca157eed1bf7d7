package repository_test

import (
	"context"
	"testing"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/db/models"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/repository"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestStaffRegistryRepositoryCleansIDs(t *testing.T) {
	gdb := openTestDB(t)
	require.NoError(t, gdb.Create(&models.StaffMember{NationalID: "1.234.567"}).Error)

	ids, err := repository.NewStaffRegistryRepository(gdb).StaffNationalIDs(context.Background())
	require.NoError(t, err)
	require.Contains(t, ids, "1234567")
}

func TestOperatorAccountRepositoryCreatesOnce(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	repo := repository.NewOperatorAccountRepository(gdb).WithHashCost(bcrypt.MinCost)

	record := domain.Record{NationalID: "1234567", FullName: "ANA BENITEZ"}
	require.NoError(t, repo.CreateOperatorAccount(ctx, record))

	var account models.OperatorAccount
	require.NoError(t, gdb.First(&account, "username = ?", "1234567").Error)
	require.True(t, account.MustChange)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("1234567")))

	require.NoError(t, gdb.Model(&account).Update("password_hash", "changed").Error)
	require.NoError(t, repo.CreateOperatorAccount(ctx, record))

	var count int64
	require.NoError(t, gdb.Model(&models.OperatorAccount{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.NoError(t, gdb.First(&account, "username = ?", "1234567").Error)
	require.Equal(t, "changed", account.PasswordHash)
}
