package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/model"
	"credential-lease-platform/internal/domain/ports/adapter"
	"credential-lease-platform/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// --- codes ---

// memCodeRepo is an in-memory CodeRepository. SaveClaim honours the
// conditional-write contract; failNextSaves simulates transient store
// failures.
type memCodeRepo struct {
	mu            sync.Mutex
	store         map[string]*model.RedemptionCode
	failNextSaves int
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{store: make(map[string]*model.RedemptionCode)}
}

func (m *memCodeRepo) Create(ctx context.Context, code *model.RedemptionCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[code.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *code
	m.store[code.Code] = &cp
	return nil
}

func (m *memCodeRepo) FindByCode(ctx context.Context, code string) (*model.RedemptionCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[code]
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memCodeRepo) Save(ctx context.Context, code *model.RedemptionCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *code
	m.store[code.Code] = &cp
	return nil
}

func (m *memCodeRepo) SaveClaim(ctx context.Context, code *model.RedemptionCode, expectedPriorUses int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNextSaves > 0 {
		m.failNextSaves--
		return domain.ErrInvalidArgument // any non-conflict error is transient
	}
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

// --- slots ---

type memSlotRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Slot
}

func newMemSlotRepo() *memSlotRepo {
	return &memSlotRepo{store: make(map[string]*model.Slot)}
}

func (m *memSlotRepo) add(s *model.Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
}

func (m *memSlotRepo) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSlotRepo) ListEnabled(ctx context.Context) ([]*model.Slot, error) {
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

// --- credentials ---

type memCredRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Credential
}

func newMemCredRepo() *memCredRepo {
	return &memCredRepo{store: make(map[string]*model.Credential)}
}

func (m *memCredRepo) add(c *model.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.Payload = clonePayload(c.Payload)
	m.store[c.ID] = &cp
}

func (m *memCredRepo) FindByID(ctx context.Context, id string) (*model.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	cp := *c
	cp.Payload = clonePayload(c.Payload)
	return &cp, nil
}

func (m *memCredRepo) List(ctx context.Context) ([]*model.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Credential, 0, len(m.store))
	for _, c := range m.store {
		cp := *c
		cp.Payload = clonePayload(c.Payload)
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memCredRepo) Save(ctx context.Context, cred *model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cred
	cp.Payload = clonePayload(cred.Payload)
	m.store[cred.ID] = &cp
	return nil
}

// --- leases ---

type memLeaseRepo struct {
	mu    sync.Mutex
	store map[string]*model.Lease
}

func newMemLeaseRepo() *memLeaseRepo {
	return &memLeaseRepo{store: make(map[string]*model.Lease)}
}

func (m *memLeaseRepo) FindByCode(ctx context.Context, code string) (*model.Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.store[code]
	if !ok {
		return nil, domain.ErrLeaseNotFound
	}
	cp := *l
	cp.Payload = clonePayload(l.Payload)
	return &cp, nil
}

func (m *memLeaseRepo) Create(ctx context.Context, lease *model.Lease) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[lease.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *lease
	cp.Payload = clonePayload(lease.Payload)
	m.store[lease.Code] = &cp
	return nil
}

func (m *memLeaseRepo) Save(ctx context.Context, lease *model.Lease) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *lease
	cp.Payload = clonePayload(lease.Payload)
	m.store[lease.Code] = &cp
	return nil
}

// --- settings ---

type memSettings struct {
	mu       sync.RWMutex
	values   map[string]string
	features map[string]repository.PlatformFeatures
}

func newMemSettings() *memSettings {
	return &memSettings{
		values:   make(map[string]string),
		features: make(map[string]repository.PlatformFeatures),
	}
}

func (m *memSettings) set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *memSettings) setFeatures(platform string, f repository.PlatformFeatures) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.features[platform] = f
}

func (m *memSettings) GetString(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memSettings) GetBool(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, _ := strconv.ParseBool(m.values[key])
	return b, nil
}

func (m *memSettings) PlatformFeatures(ctx context.Context, platform string) (repository.PlatformFeatures, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.features[platform]; ok {
		return f, nil
	}
	return repository.PlatformFeatures{Refresh: true, TimeCode: true, MailCode: true, Invite: true}, nil
}

// --- fetch window ---

type memFetchWindow struct {
	mu       sync.Mutex
	busy     map[string]time.Time
	now      func() time.Time
	acquires int
	releases int
}

func newMemFetchWindow(now func() time.Time) *memFetchWindow {
	return &memFetchWindow{busy: make(map[string]time.Time), now: now}
}

func (m *memFetchWindow) Acquire(ctx context.Context, platform string, hold time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if until, ok := m.busy[platform]; ok && m.now().Before(until) {
		return domain.ErrFetchBusy
	}
	m.busy[platform] = m.now().Add(hold)
	m.acquires++
	return nil
}

func (m *memFetchWindow) Release(ctx context.Context, platform string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.busy, platform)
	m.releases++
	return nil
}

// --- mail code client ---

type fakeMailClient struct {
	mu      sync.Mutex
	results []adapter.MailCodeResult
	err     error
	calls   int
}

func (f *fakeMailClient) FetchLatest(ctx context.Context, address, platform string) (adapter.MailCodeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return adapter.MailCodeResult{}, f.err
	}
	if len(f.results) == 0 {
		return adapter.MailCodeResult{Status: adapter.MailCodeNotFound}, nil
	}
	res := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return res, nil
}
