package model

import (
	"time"
)

// CodePrefix starts every generated redemption code.
const CodePrefix = "RC-"

// CodeUse is one entry in a code's append-only use log.
type CodeUse struct {
	EntryID  string    `json:"entry_id"`
	Consumer string    `json:"consumer"`
	UsedAt   time.Time `json:"used_at"`
}

// RedemptionCode is a limited-use token a consumer redeems for a lease.
type RedemptionCode struct {
	Code      string     `json:"code"`
	SlotID    string     `json:"slot_id"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	MaxUses   int        `json:"max_uses"`
	UsedCount int        `json:"used_count"`
	Revoked   bool       `json:"revoked"`
	UsedBy    string     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	UseLog    []CodeUse  `json:"use_log,omitempty"`
}

// IsExpired reports whether an expiry timestamp is set and has passed.
func (c *RedemptionCode) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Exhausted reports whether the code has no uses left.
func (c *RedemptionCode) Exhausted() bool {
	return c.UsedCount >= c.MaxUses
}
