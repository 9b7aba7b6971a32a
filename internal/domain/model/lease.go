package model

import (
	"time"

	"credential-lease-platform/internal/timeutil"
)

// Lease binds a consumer to a credential for a bounded time window. It is
// keyed by the redemption code that created it and is created exactly once
// per successfully redeemed code.
type Lease struct {
	Code         string  `json:"code"`
	Platform     string  `json:"platform"`
	SlotID       string  `json:"slot_id"`
	SlotName     string  `json:"slot_name"`
	LabelMode    string  `json:"label_mode"`
	Headline     string  `json:"headline"`
	StartTime    string  `json:"start_time"` // local wall clock, second precision
	EndTime      string  `json:"end_time"`
	CreatedStamp string  `json:"created_stamp"` // machine-sortable (ULID)
	CredentialID string  `json:"credential_id,omitempty"`
	Payload      Payload `json:"payload,omitempty"`
	Hidden       bool    `json:"hidden"`
	MailCodeSent bool    `json:"mail_code_sent"`
	TimeCodeSent bool    `json:"time_code_sent"`
}

// IsExpired reports whether the lease's end timestamp has passed. Expired
// leases are read-only: every mutating operation must fail.
func (l *Lease) IsExpired(now time.Time) bool {
	return timeutil.WallClockPassed(l.EndTime, now)
}

// InviteLink resolves a best-effort invite link from the payload snapshot.
func (l *Lease) InviteLink() string {
	return l.Payload[PayloadInviteLink]
}
