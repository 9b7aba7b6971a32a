package domain

import "errors"

var (
	// Redemption failures
	ErrCodeNotFound  = errors.New("redemption code not found")
	ErrCodeRevoked   = errors.New("redemption code revoked")
	ErrCodeExpired   = errors.New("redemption code expired")
	ErrCodeUsedUp    = errors.New("redemption code already used up")
	ErrRaceFailed    = errors.New("redemption lost too many races")
	ErrClaimConflict = errors.New("claim write conflicted with a concurrent claim")

	// Lease failures
	ErrLeaseNotFound      = errors.New("lease not found")
	ErrLeaseHidden        = errors.New("lease hidden")
	ErrLeaseExpired       = errors.New("lease expired")
	ErrNoCredentialBound  = errors.New("no credential bound to lease")
	ErrCredentialNotFound = errors.New("credential not found")

	// External fetch
	ErrFetchBusy = errors.New("another code fetch is in flight for this platform")

	// Capability gating
	ErrActionDisabled = errors.New("action disabled for this platform")

	// Common
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)
