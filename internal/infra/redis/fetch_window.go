package redis

import (
	"context"
	"strings"
	"time"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/ports/repository"
)

const fetchWindowKeyPrefix = "fetchwin:"

var _ repository.FetchWindow = (*FetchWindowStore)(nil)

// FetchWindowStore implements the per-platform fetch window as a keyed
// busy marker with a TTL. The TTL doubles as the hold expiry, so a crashed
// holder never wedges the platform for longer than the hold.
type FetchWindowStore struct {
	client *redClient
}

func NewFetchWindowStore(client *redClient) *FetchWindowStore {
	return &FetchWindowStore{client: client}
}

func fetchWindowKey(platform string) string {
	return fetchWindowKeyPrefix + strings.ToLower(strings.TrimSpace(platform))
}

func (s *FetchWindowStore) Acquire(ctx context.Context, platform string, hold time.Duration) error {
	until := time.Now().Add(hold).Format(time.RFC3339)
	ok, err := s.client.cli.SetNX(ctx, fetchWindowKey(platform), until, hold).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrFetchBusy
	}
	return nil
}

func (s *FetchWindowStore) Release(ctx context.Context, platform string) error {
	return s.client.Del(ctx, fetchWindowKey(platform))
}
