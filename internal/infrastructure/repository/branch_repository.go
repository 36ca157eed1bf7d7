package repository

import (
	"context"
	"fmt"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

type BranchRepository struct {
	db *gorm.DB
}

func NewBranchRepository(db *gorm.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

func (r *BranchRepository) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	var rows []models.Branch
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	branches := make([]domain.Branch, 0, len(rows))
	for _, row := range rows {
		branches = append(branches, toDomainBranch(row))
	}
	return branches, nil
}

// CreateBranch returns the existing row when another job created the code first.
func (r *BranchRepository) CreateBranch(ctx context.Context, branch domain.Branch) (domain.Branch, error) {
	row := models.Branch{Code: branch.Code}
	err := r.db.WithContext(ctx).
		Where(models.Branch{Code: branch.Code}).
		Attrs(models.Branch{Name: branch.Name, City: branch.City}).
		FirstOrCreate(&row).Error
	if err != nil {
		return domain.Branch{}, fmt.Errorf("create branch %s: %w", branch.Code, err)
	}
	return toDomainBranch(row), nil
}

func toDomainBranch(row models.Branch) domain.Branch {
	return domain.Branch{ID: row.ID, Code: row.Code, Name: row.Name, City: row.City}
}
