package repository

import (
	"context"

	"credential-lease-platform/internal/domain/model"
)

// LeaseRepository is the port for lease records, keyed by redemption code.
type LeaseRepository interface {
	// FindByCode returns the record or domain.ErrLeaseNotFound.
	FindByCode(ctx context.Context, code string) (*model.Lease, error)
	// Create stores a new lease; fails with domain.ErrAlreadyExists if one
	// already exists for the code. A lease is created exactly once.
	Create(ctx context.Context, lease *model.Lease) error
	// Save overwrites the record.
	Save(ctx context.Context, lease *model.Lease) error
}
