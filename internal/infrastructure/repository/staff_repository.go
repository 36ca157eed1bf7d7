package repository

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/db/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StaffRegistryRepository struct {
	db *gorm.DB
}

func NewStaffRegistryRepository(db *gorm.DB) *StaffRegistryRepository {
	return &StaffRegistryRepository{db: db}
}

func (r *StaffRegistryRepository) StaffNationalIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.StaffMember{}).Pluck("national_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load staff registry: %w", err)
	}
	staff := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		staff[domain.CleanNationalID(id)] = struct{}{}
	}
	return staff, nil
}

// OperatorAccountRepository provisions operator logins keyed by national id.
// The initial password is the national id and must be changed on first login.
type OperatorAccountRepository struct {
	db   *gorm.DB
	cost int
}

func NewOperatorAccountRepository(db *gorm.DB) *OperatorAccountRepository {
	return &OperatorAccountRepository{db: db, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, mainly so tests stay fast.
func (r *OperatorAccountRepository) WithHashCost(cost int) *OperatorAccountRepository {
	r.cost = cost
	return r
}

func (r *OperatorAccountRepository) CreateOperatorAccount(ctx context.Context, record domain.Record) error {
	var existing models.OperatorAccount
	err := r.db.WithContext(ctx).Select("id").First(&existing, "username = ?", record.NationalID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup operator account %s: %w", record.NationalID, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(record.NationalID), r.cost)
	if err != nil {
		return fmt.Errorf("hash initial password: %w", err)
	}

	account := models.OperatorAccount{
		Username:     record.NationalID,
		FullName:     record.FullName,
		PasswordHash: string(hash),
		MustChange:   true,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&account).Error; err != nil {
		return fmt.Errorf("create operator account %s: %w", record.NationalID, err)
	}
	return nil
}
