package repository

import (
	"context"

	"credential-lease-platform/internal/domain/model"
)

// CredentialRepository is the port for the shared credential pool.
type CredentialRepository interface {
	// FindByID returns the record or domain.ErrCredentialNotFound.
	FindByID(ctx context.Context, id string) (*model.Credential, error)
	// List returns the full pool.
	List(ctx context.Context) ([]*model.Credential, error)
	// Save overwrites the record. The usage-count increment during binding
	// goes through here best-effort; see RedeemUseCase.
	Save(ctx context.Context, cred *model.Credential) error
}
