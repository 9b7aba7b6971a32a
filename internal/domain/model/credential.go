package model

import (
	"maps"
	"strings"
	"time"

	"credential-lease-platform/internal/timeutil"
)

// Wildcard marks an ownership set entry that matches every slot or platform.
const Wildcard = "all"

// Payload is the opaque data delivered with a bound credential: login
// secrets, a totp seed, invite links.
type Payload map[string]string

// Well-known payload keys.
const (
	PayloadLogin      = "login"
	PayloadPassword   = "password"
	PayloadTOTPSecret = "totp_secret"
	PayloadInviteLink = "invite_link"
)

// Equal compares two payloads field by field.
func (p Payload) Equal(other Payload) bool {
	return maps.Equal(p, other)
}

// Credential is a leasable item with ownership predicates and a usage cap.
type Credential struct {
	ID         string   `json:"id"`
	SlotIDs    []string `json:"slot_ids,omitempty"`
	Platforms  []string `json:"platforms,omitempty"`
	Locked     bool     `json:"locked"`
	UsageCount int      `json:"usage_count"`
	MaxUsage   int      `json:"max_usage"` // 0 = unbounded
	ExpiresOn  string   `json:"expires_on,omitempty"`
	Payload    Payload  `json:"payload,omitempty"`
}

// Applicability is the evaluated ownership predicate of a credential against
// one slot. Slot and Platform are explicit matches; Universal is the literal
// wildcard in either ownership set, tracked separately so the selector can
// rank wildcard owners below scoped ones.
type Applicability struct {
	Slot      bool
	Platform  bool
	Universal bool
}

// Applies reports whether the credential serves the slot at all.
func (a Applicability) Applies() bool {
	return a.Slot || a.Platform || a.Universal
}

// ApplicabilityFor evaluates the credential's ownership sets against a slot.
// Matching is case-insensitive; entries may be comma-joined.
func (c *Credential) ApplicabilityFor(slot *Slot) Applicability {
	slots := normalizeSet(c.SlotIDs)
	platforms := normalizeSet(c.Platforms)

	var a Applicability
	a.Universal = slots[Wildcard] || platforms[Wildcard]
	a.Slot = slots[strings.ToLower(slot.ID)]
	if p := strings.ToLower(strings.TrimSpace(slot.Platform)); p != "" {
		a.Platform = platforms[p]
	}
	return a
}

// Usable reports whether the credential can take another lease at now:
// not locked, under its usage cap, and not past its expiry day.
func (c *Credential) Usable(now time.Time) bool {
	if c.Locked {
		return false
	}
	if c.MaxUsage > 0 && c.UsageCount >= c.MaxUsage {
		return false
	}
	return !timeutil.DayPassed(c.ExpiresOn, now)
}

func normalizeSet(entries []string) map[string]bool {
	set := make(map[string]bool, len(entries))
	for _, e := range entries {
		for _, part := range strings.Split(e, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				set[part] = true
			}
		}
	}
	return set
}
