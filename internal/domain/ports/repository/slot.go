package repository

import (
	"context"

	"credential-lease-platform/internal/domain/model"
)

// SlotRepository reads slot (category) records. Slots are administered by an
// external collaborator; the engine never writes them.
type SlotRepository interface {
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	ListEnabled(ctx context.Context) ([]*model.Slot, error)
}
