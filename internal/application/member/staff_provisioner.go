package member

import (
	"context"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/pkg/logger"
)

// staffProvisioner creates operator accounts for committed members listed in the staff registry.
type staffProvisioner struct {
	staff     map[string]struct{}
	done      map[string]struct{}
	accounts  domain.OperatorAccountService
	logger    logger.Logger
	succeeded int
}

func newStaffProvisioner(staff map[string]struct{}, accounts domain.OperatorAccountService, log logger.Logger) *staffProvisioner {
	return &staffProvisioner{
		staff:    staff,
		done:     make(map[string]struct{}),
		accounts: accounts,
		logger:   log,
	}
}

func (s *staffProvisioner) provision(ctx context.Context, committed []domain.Record) {
	if s.accounts == nil || len(s.staff) == 0 {
		return
	}
	for _, record := range committed {
		if _, isStaff := s.staff[record.NationalID]; !isStaff {
			continue
		}
		if _, handled := s.done[record.NationalID]; handled {
			continue
		}
		s.done[record.NationalID] = struct{}{}

		if err := s.accounts.CreateOperatorAccount(ctx, record); err != nil {
			s.logger.Warn("create operator account failed", "national_id", record.NationalID, "error", err)
			continue
		}
		s.succeeded++
	}
}
