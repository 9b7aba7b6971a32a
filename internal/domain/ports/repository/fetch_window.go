package repository

import (
	"context"
	"time"
)

// FetchWindow is the per-platform mutual-exclusion window guarding the
// rate-limited external mail-code channel: a shared "busy until" marker that
// admits one in-flight fetch per platform.
type FetchWindow interface {
	// Acquire marks the platform busy until now+hold, or fails with
	// domain.ErrFetchBusy while another fetch holds the window.
	Acquire(ctx context.Context, platform string, hold time.Duration) error
	// Release clears the marker unconditionally.
	Release(ctx context.Context, platform string) error
}
