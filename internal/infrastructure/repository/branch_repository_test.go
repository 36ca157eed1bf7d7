package repository_test

import (
	"context"
	"testing"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/repository"
	"github.com/stretchr/testify/require"
)

func TestBranchRepositoryCreateIsIdempotentPerCode(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	repo := repository.NewBranchRepository(gdb)

	city := "Encarnación"
	first, err := repo.CreateBranch(ctx, domain.Branch{Code: "ENC", Name: "Sucursal Encarnación", City: &city})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := repo.CreateBranch(ctx, domain.Branch{Code: "ENC", Name: "otro nombre"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Sucursal Encarnación", second.Name)

	branches, err := repo.ListBranches(ctx)
	require.NoError(t, err)
	require.Len(t, branches, 1)
	require.NotNil(t, branches[0].City)
	require.Equal(t, city, *branches[0].City)
}
