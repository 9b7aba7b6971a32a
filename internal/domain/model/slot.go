package model

import (
	"strconv"
	"strings"
	"time"
)

// Label rendering modes for lease headlines.
const (
	LabelModePlatform = "platform"
	LabelModeName     = "name"
)

// Slot is a category of leasable credentials sharing duration, platform and
// labeling policy. Slots are administered externally; the engine only reads them.
type Slot struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Platform       string `json:"platform"`
	RequiredAmount int    `json:"required_amount"`
	Enabled        bool   `json:"enabled"`
	LeaseDuration  string `json:"lease_duration"` // "6", "12", "day", ...
	LabelMode      string `json:"label_mode,omitempty"`
}

// defaultLeaseHours applies when a slot's duration spec cannot be parsed.
const defaultLeaseHours = 6

// LeaseHours resolves the slot's duration spec to a duration. Any spec
// containing "day" means 24 hours; otherwise the leading integer is the hour
// count, falling back to 6 hours.
func (s *Slot) LeaseHours() time.Duration {
	spec := strings.ToLower(strings.TrimSpace(s.LeaseDuration))
	if strings.Contains(spec, "day") {
		return 24 * time.Hour
	}

	digits := spec
	for i, r := range spec {
		if r < '0' || r > '9' {
			digits = spec[:i]
			break
		}
	}
	if h, err := strconv.Atoi(digits); err == nil && h > 0 {
		return time.Duration(h) * time.Hour
	}
	return defaultLeaseHours * time.Hour
}
