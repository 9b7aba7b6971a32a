package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

const settingsKeyPrefix = "settings:"

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo reads flat configuration values maintained by the
// administrative collaborator.
type SettingsRepo struct {
	client Client
}

func NewSettingsRepo(client Client) *SettingsRepo {
	return &SettingsRepo{client: client}
}

func (r *SettingsRepo) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, settingsKeyPrefix+key)
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	return val, err
}

func (r *SettingsRepo) GetBool(ctx context.Context, key string) (bool, error) {
	val, err := r.GetString(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return false, nil // unparseable reads as false
	}
	return b, nil
}

func (r *SettingsRepo) PlatformFeatures(ctx context.Context, platform string) (repository.PlatformFeatures, error) {
	// Everything enabled unless the platform is explicitly configured.
	all := repository.PlatformFeatures{Refresh: true, TimeCode: true, MailCode: true, Invite: true}

	key := repository.SettingFeaturesPrefix + strings.ToLower(strings.TrimSpace(platform))
	val, err := r.GetString(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return all, nil
	}
	if err != nil {
		return all, err
	}

	var features repository.PlatformFeatures
	if err := json.Unmarshal([]byte(val), &features); err != nil {
		return all, nil // malformed config must not take actions down
	}
	return features, nil
}
