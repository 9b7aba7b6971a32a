package web

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/model"
	"credential-lease-platform/internal/domain/ports/adapter"
	"credential-lease-platform/internal/domain/ports/repository"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type memCodes struct {
	mu    sync.Mutex
	store map[string]*model.RedemptionCode
}

func newMemCodes() *memCodes { return &memCodes{store: map[string]*model.RedemptionCode{}} }

func (m *memCodes) Create(ctx context.Context, code *model.RedemptionCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[code.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *code
	m.store[code.Code] = &cp
	return nil
}

func (m *memCodes) FindByCode(ctx context.Context, code string) (*model.RedemptionCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[code]
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memCodes) Save(ctx context.Context, code *model.RedemptionCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *code
	m.store[code.Code] = &cp
	return nil
}

func (m *memCodes) SaveClaim(ctx context.Context, code *model.RedemptionCode, expectedPriorUses int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[code.Code]
	if !ok {
		return domain.ErrCodeNotFound
	}
	if rec.UsedCount != expectedPriorUses {
		return domain.ErrClaimConflict
	}
	cp := *code
	m.store[code.Code] = &cp
	return nil
}

type memSlots struct {
	mu    sync.RWMutex
	store map[string]*model.Slot
}

func newMemSlots() *memSlots { return &memSlots{store: map[string]*model.Slot{}} }

func (m *memSlots) add(s *model.Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
}

func (m *memSlots) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSlots) ListEnabled(ctx context.Context) ([]*model.Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Slot
	for _, s := range m.store {
		if s.Enabled {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memCreds struct {
	mu    sync.RWMutex
	store map[string]*model.Credential
}

func newMemCreds() *memCreds { return &memCreds{store: map[string]*model.Credential{}} }

func (m *memCreds) add(c *model.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
}

func (m *memCreds) FindByID(ctx context.Context, id string) (*model.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCreds) List(ctx context.Context) ([]*model.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Credential, 0, len(m.store))
	for _, c := range m.store {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memCreds) Save(ctx context.Context, cred *model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cred
	m.store[cred.ID] = &cp
	return nil
}

type memLeases struct {
	mu    sync.Mutex
	store map[string]*model.Lease
}

func newMemLeases() *memLeases { return &memLeases{store: map[string]*model.Lease{}} }

func (m *memLeases) FindByCode(ctx context.Context, code string) (*model.Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.store[code]
	if !ok {
		return nil, domain.ErrLeaseNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLeases) Create(ctx context.Context, lease *model.Lease) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[lease.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *lease
	m.store[lease.Code] = &cp
	return nil
}

func (m *memLeases) Save(ctx context.Context, lease *model.Lease) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *lease
	m.store[lease.Code] = &cp
	return nil
}

type stubSettings struct{}

func (stubSettings) GetString(ctx context.Context, key string) (string, error) {
	return "", domain.ErrNotFound
}

func (stubSettings) GetBool(ctx context.Context, key string) (bool, error) { return false, nil }

func (stubSettings) PlatformFeatures(ctx context.Context, platform string) (repository.PlatformFeatures, error) {
	return repository.PlatformFeatures{Refresh: true, TimeCode: true, MailCode: true, Invite: true}, nil
}

type stubWindow struct{}

func (stubWindow) Acquire(ctx context.Context, platform string, hold time.Duration) error { return nil }
func (stubWindow) Release(ctx context.Context, platform string) error                     { return nil }

type stubMail struct{ code string }

func (s stubMail) FetchLatest(ctx context.Context, address, platform string) (adapter.MailCodeResult, error) {
	return adapter.MailCodeResult{Status: adapter.MailCodeSuccess, Code: s.code}, nil
}

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }
