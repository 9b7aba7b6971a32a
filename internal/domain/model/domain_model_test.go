package model

import (
	"testing"
	"time"
)

func TestSlotLeaseHours(t *testing.T) {
	t.Parallel()

	cases := []struct {
		spec string
		want time.Duration
	}{
		{"6", 6 * time.Hour},
		{"12", 12 * time.Hour},
		{"24h", 24 * time.Hour},
		{"day", 24 * time.Hour},
		{"1 Day", 24 * time.Hour},
		{"  DAY  ", 24 * time.Hour},
		{"", 6 * time.Hour},
		{"soon", 6 * time.Hour},
		{"0", 6 * time.Hour},
	}
	for _, c := range cases {
		s := Slot{LeaseDuration: c.spec}
		if got := s.LeaseHours(); got != c.want {
			t.Fatalf("spec %q: expected %v got %v", c.spec, c.want, got)
		}
	}
}

func TestCodeExpiryAndExhaustion(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	c := RedemptionCode{MaxUses: 2, UsedCount: 0}
	if c.IsExpired(now) {
		t.Fatalf("code without expiry must not expire")
	}
	c.ExpiresAt = &future
	if c.IsExpired(now) {
		t.Fatalf("future expiry must not count as expired")
	}
	c.ExpiresAt = &past
	if !c.IsExpired(now) {
		t.Fatalf("past expiry must count as expired")
	}

	if c.Exhausted() {
		t.Fatalf("0/2 uses is not exhausted")
	}
	c.UsedCount = 2
	if !c.Exhausted() {
		t.Fatalf("2/2 uses is exhausted")
	}
}

func TestCredentialApplicability(t *testing.T) {
	t.Parallel()

	slot := &Slot{ID: "premium", Platform: "Streamly"}

	byslot := Credential{SlotIDs: []string{"Premium"}}
	a := byslot.ApplicabilityFor(slot)
	if !a.Slot || a.Platform || a.Universal {
		t.Fatalf("slot-scoped match wrong: %+v", a)
	}

	byplatform := Credential{Platforms: []string{"streamly, other"}}
	a = byplatform.ApplicabilityFor(slot)
	if a.Slot || !a.Platform || a.Universal {
		t.Fatalf("platform-scoped match wrong: %+v", a)
	}

	universal := Credential{SlotIDs: []string{"ALL"}}
	a = universal.ApplicabilityFor(slot)
	if !a.Universal || a.Slot || a.Platform {
		t.Fatalf("wildcard counts as universal only, not as a scoped match: %+v", a)
	}
	if !a.Applies() {
		t.Fatalf("wildcard credential must still apply")
	}

	unrelated := Credential{SlotIDs: []string{"basic"}, Platforms: []string{"elsewhere"}}
	if unrelated.ApplicabilityFor(slot).Applies() {
		t.Fatalf("unrelated credential must not apply")
	}

	// No platform on the slot: platform ownership cannot match.
	bare := &Slot{ID: "premium"}
	a = byplatform.ApplicabilityFor(bare)
	if a.Platform {
		t.Fatalf("empty slot platform must not match platform ownership")
	}
}

func TestCredentialUsable(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)

	ok := Credential{MaxUsage: 0, UsageCount: 99}
	if !ok.Usable(now) {
		t.Fatalf("unbounded credential must be usable")
	}

	locked := Credential{Locked: true}
	if locked.Usable(now) {
		t.Fatalf("locked credential must not be usable")
	}

	capped := Credential{MaxUsage: 3, UsageCount: 3}
	if capped.Usable(now) {
		t.Fatalf("capped credential must not be usable")
	}

	expired := Credential{ExpiresOn: "2026-08-30"}
	if expired.Usable(now) {
		t.Fatalf("credential expired yesterday must not be usable")
	}
	today := Credential{ExpiresOn: "2026-08-31"}
	if !today.Usable(now) {
		t.Fatalf("credential expiring today is usable through end of day")
	}
}

func TestLeaseExpiryAndInvite(t *testing.T) {
	t.Parallel()

	l := Lease{
		EndTime: "2026-08-31 16:00:00",
		Payload: Payload{PayloadInviteLink: "https://example.com/join"},
	}
	at := time.Date(2026, 8, 31, 16, 0, 0, 0, time.Local)
	if l.IsExpired(at) {
		t.Fatalf("lease valid through its end second")
	}
	if !l.IsExpired(at.Add(time.Second)) {
		t.Fatalf("lease expired one second past end")
	}
	if l.InviteLink() != "https://example.com/join" {
		t.Fatalf("invite link not resolved from payload")
	}
}
