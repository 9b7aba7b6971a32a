package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/model"
	"credential-lease-platform/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

const leaseKeyPrefix = "lease:"

var _ repository.LeaseRepository = (*LeaseRepo)(nil)

// LeaseRepo stores lease documents keyed by the redemption code that
// produced them. Create uses SETNX so the first claimant wins and every
// later one reads the same record back.
type LeaseRepo struct {
	client *redClient
}

func NewLeaseRepo(client *redClient) *LeaseRepo {
	return &LeaseRepo{client: client}
}

func leaseKey(code string) string { return leaseKeyPrefix + code }

func (r *LeaseRepo) FindByCode(ctx context.Context, code string) (*model.Lease, error) {
	data, err := r.client.Get(ctx, leaseKey(code))
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrLeaseNotFound
	}
	if err != nil {
		return nil, err
	}
	var lease model.Lease
	if err := json.Unmarshal([]byte(data), &lease); err != nil {
		return nil, fmt.Errorf("decode lease %s: %w", code, err)
	}
	return &lease, nil
}

func (r *LeaseRepo) Create(ctx context.Context, lease *model.Lease) error {
	data, err := json.Marshal(lease)
	if err != nil {
		return err
	}
	ok, err := r.client.cli.SetNX(ctx, leaseKey(lease.Code), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *LeaseRepo) Save(ctx context.Context, lease *model.Lease) error {
	data, err := json.Marshal(lease)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, leaseKey(lease.Code), data, 0)
}
