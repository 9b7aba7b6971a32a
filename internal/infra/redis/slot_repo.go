package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/model"
	"credential-lease-platform/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

const slotKeyPrefix = "slot:"

var _ repository.SlotRepository = (*SlotRepo)(nil)

// SlotRepo reads slot documents written by the administrative collaborator.
type SlotRepo struct {
	client Client
}

func NewSlotRepo(client Client) *SlotRepo {
	return &SlotRepo{client: client}
}

func (r *SlotRepo) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	data, err := r.client.Get(ctx, slotKeyPrefix+id)
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var slot model.Slot
	if err := json.Unmarshal([]byte(data), &slot); err != nil {
		return nil, fmt.Errorf("decode slot %s: %w", id, err)
	}
	return &slot, nil
}

func (r *SlotRepo) ListEnabled(ctx context.Context) ([]*model.Slot, error) {
	keys, err := r.client.ScanKeys(ctx, slotKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	var slots []*model.Slot
	for _, key := range keys {
		data, err := r.client.Get(ctx, key)
		if errors.Is(err, redis.Nil) {
			continue // deleted between scan and read
		}
		if err != nil {
			return nil, err
		}
		var slot model.Slot
		if err := json.Unmarshal([]byte(data), &slot); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		if slot.Enabled {
			slots = append(slots, &slot)
		}
	}
	return slots, nil
}
