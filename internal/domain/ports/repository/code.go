package repository

import (
	"context"

	"credential-lease-platform/internal/domain/model"
)

// CodeRepository is the port for redemption code records.
type CodeRepository interface {
	// Create stores a new code; fails with domain.ErrAlreadyExists if the
	// code is taken.
	Create(ctx context.Context, code *model.RedemptionCode) error
	// FindByCode returns the record or domain.ErrCodeNotFound.
	FindByCode(ctx context.Context, code string) (*model.RedemptionCode, error)
	// Save overwrites the record unconditionally (administrative writes).
	Save(ctx context.Context, code *model.RedemptionCode) error
	// SaveClaim writes the record only if the stored used count still equals
	// expectedPriorUses. A concurrent claimant having moved the counter
	// surfaces as domain.ErrClaimConflict.
	SaveClaim(ctx context.Context, code *model.RedemptionCode, expectedPriorUses int) error
}
