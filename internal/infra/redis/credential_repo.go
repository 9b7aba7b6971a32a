package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/model"
	"credential-lease-platform/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

const credKeyPrefix = "cred:"

var _ repository.CredentialRepository = (*CredentialRepo)(nil)

// CredentialRepo stores the shared credential pool. A credential's ID is its
// store key, reserved prefix included, so records round-trip without a
// separate index.
type CredentialRepo struct {
	client Client
}

func NewCredentialRepo(client Client) *CredentialRepo {
	return &CredentialRepo{client: client}
}

func credKey(id string) string {
	if strings.HasPrefix(id, credKeyPrefix) {
		return id
	}
	return credKeyPrefix + id
}

func (r *CredentialRepo) FindByID(ctx context.Context, id string) (*model.Credential, error) {
	data, err := r.client.Get(ctx, credKey(id))
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	var cred model.Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return nil, fmt.Errorf("decode credential %s: %w", id, err)
	}
	return &cred, nil
}

func (r *CredentialRepo) List(ctx context.Context) ([]*model.Credential, error) {
	keys, err := r.client.ScanKeys(ctx, credKeyPrefix+"*")
	if err != nil {
		return nil, err
	}

	creds := make([]*model.Credential, 0, len(keys))
	for _, key := range keys {
		data, err := r.client.Get(ctx, key)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var cred model.Credential
		if err := json.Unmarshal([]byte(data), &cred); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		if cred.ID == "" {
			cred.ID = key
		}
		creds = append(creds, &cred)
	}
	return creds, nil
}

func (r *CredentialRepo) Save(ctx context.Context, cred *model.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, credKey(cred.ID), data, 0)
}
