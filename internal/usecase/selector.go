package usecase

import (
	"context"
	"time"

	"credential-lease-platform/internal/domain/model"
	"credential-lease-platform/internal/domain/ports/repository"
	"credential-lease-platform/internal/infra/metrics"
)

// CredentialSelector scans the credential pool and picks the best usable
// credential for a slot under the ownership priority policy.
type CredentialSelector struct {
	creds repository.CredentialRepository
	now   func() time.Time
}

func NewCredentialSelector(creds repository.CredentialRepository) *CredentialSelector {
	return &CredentialSelector{creds: creds, now: time.Now}
}

// Select returns the chosen credential, or nil when nothing is eligible.
// Priority is strict: explicit slot ownership beats explicit platform
// ownership beats wildcard ownership. Ties inside a tier break
// lexicographically by credential id, which keeps selection deterministic
// regardless of pool iteration order.
func (s *CredentialSelector) Select(ctx context.Context, slot *model.Slot) (*model.Credential, error) {
	pool, err := s.creds.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var bySlot, byPlatform, universal *model.Credential
	for _, c := range pool {
		if !c.Usable(now) {
			continue
		}
		// A bound credential always carries a non-empty payload snapshot;
		// a credential with no payload has nothing to deliver.
		if len(c.Payload) == 0 {
			continue
		}
		a := c.ApplicabilityFor(slot)
		switch {
		case a.Slot:
			bySlot = firstByID(bySlot, c)
		case a.Platform:
			byPlatform = firstByID(byPlatform, c)
		case a.Universal:
			universal = firstByID(universal, c)
		}
	}

	switch {
	case bySlot != nil:
		metrics.SelectorPicks.WithLabelValues("slot").Inc()
		return bySlot, nil
	case byPlatform != nil:
		metrics.SelectorPicks.WithLabelValues("platform").Inc()
		return byPlatform, nil
	case universal != nil:
		metrics.SelectorPicks.WithLabelValues("universal").Inc()
		return universal, nil
	}
	metrics.SelectorPicks.WithLabelValues("none").Inc()
	return nil, nil
}

func firstByID(cur, cand *model.Credential) *model.Credential {
	if cur == nil || cand.ID < cur.ID {
		return cand
	}
	return cur
}
