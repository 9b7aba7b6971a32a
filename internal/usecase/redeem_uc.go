package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/model"
	"credential-lease-platform/internal/domain/ports/repository"
	"credential-lease-platform/internal/infra/metrics"
	"credential-lease-platform/internal/timeutil"
)

// AssignmentOutcome tells the caller whether a successful claim also bound a
// credential. "claimed, unassigned" is a success, not a failure.
type AssignmentOutcome string

const (
	OutcomeAssigned   AssignmentOutcome = "assigned"
	OutcomeUnassigned AssignmentOutcome = "unassigned"
)

// RetryPolicy tunes the optimistic claim loop. Zero values fall back to the
// defaults: 4 attempts, 100ms write-failure backoff, 80ms race-loss backoff.
type RetryPolicy struct {
	MaxAttempts  int
	WriteBackoff time.Duration
	RaceBackoff  time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 4
	}
	if p.WriteBackoff <= 0 {
		p.WriteBackoff = 100 * time.Millisecond
	}
	if p.RaceBackoff <= 0 {
		p.RaceBackoff = 80 * time.Millisecond
	}
	return p
}

// RedeemUseCase drives the redemption protocol: validate a code, atomically
// consume one use under optimistic retry, create the lease, and bind a
// credential through the selector.
type RedeemUseCase struct {
	codes    repository.CodeRepository
	slots    repository.SlotRepository
	creds    repository.CredentialRepository
	leases   repository.LeaseRepository
	settings repository.SettingsRepository
	selector *CredentialSelector
	policy   RetryPolicy
	log      *zerolog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

func NewRedeemUseCase(
	codes repository.CodeRepository,
	slots repository.SlotRepository,
	creds repository.CredentialRepository,
	leases repository.LeaseRepository,
	settings repository.SettingsRepository,
	selector *CredentialSelector,
	policy RetryPolicy,
	logger *zerolog.Logger,
) *RedeemUseCase {
	return &RedeemUseCase{
		codes:    codes,
		slots:    slots,
		creds:    creds,
		leases:   leases,
		settings: settings,
		selector: selector,
		policy:   policy.withDefaults(),
		log:      logger,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Claim consumes one use of the code for consumer and returns the lease.
// Business failures come back as the domain sentinel errors; callers should
// treat ErrRaceFailed as retryable at their own discretion.
func (uc *RedeemUseCase) Claim(ctx context.Context, code, consumer string) (*model.Lease, AssignmentOutcome, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || strings.TrimSpace(consumer) == "" {
		return nil, "", domain.ErrInvalidArgument
	}

	claimed, err := uc.claimCode(ctx, code, consumer)
	if err != nil {
		metrics.ClaimOutcomes.WithLabelValues(claimFailureLabel(err)).Inc()
		return nil, "", err
	}

	lease, outcome, err := uc.buildLease(ctx, claimed)
	if err != nil {
		metrics.ClaimOutcomes.WithLabelValues("error").Inc()
		return nil, "", err
	}
	metrics.ClaimOutcomes.WithLabelValues(string(outcome)).Inc()

	uc.log.Info().
		Str("code", code).
		Str("consumer", consumer).
		Str("slot", claimed.SlotID).
		Str("outcome", string(outcome)).
		Msg("code redeemed")
	return lease, outcome, nil
}

// claimCode runs the compare-and-retry protocol: read, precheck, conditional
// write of the incremented counter, then re-read and confirm the result
// before declaring success. Conflicts and transient write failures both
// retry from the top with their respective backoffs.
func (uc *RedeemUseCase) claimCode(ctx context.Context, code, consumer string) (*model.RedemptionCode, error) {
	var lastErr error = domain.ErrRaceFailed

	for attempt := 0; attempt < uc.policy.MaxAttempts; attempt++ {
		rec, err := uc.codes.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrCodeNotFound) {
				return nil, err
			}
			lastErr = err
			metrics.ClaimRetries.WithLabelValues("write_error").Inc()
			uc.sleep(uc.policy.WriteBackoff)
			continue
		}

		now := uc.now()
		switch {
		case rec.Revoked:
			return nil, domain.ErrCodeRevoked
		case rec.IsExpired(now):
			return nil, domain.ErrCodeExpired
		case rec.Exhausted():
			return nil, domain.ErrCodeUsedUp
		}

		entry := model.CodeUse{
			EntryID:  uuid.NewString(),
			Consumer: consumer,
			UsedAt:   now,
		}
		upd := *rec
		upd.UsedCount = rec.UsedCount + 1
		upd.UsedBy = consumer
		upd.UsedAt = &entry.UsedAt
		upd.UseLog = append(slices.Clone(rec.UseLog), entry)

		err = uc.codes.SaveClaim(ctx, &upd, rec.UsedCount)
		if errors.Is(err, domain.ErrClaimConflict) {
			metrics.ClaimRetries.WithLabelValues("conflict").Inc()
			uc.sleep(uc.policy.RaceBackoff)
			continue
		}
		if err != nil {
			lastErr = err
			metrics.ClaimRetries.WithLabelValues("write_error").Inc()
			uc.sleep(uc.policy.WriteBackoff)
			continue
		}

		// Post-write confirmation: the stored record must reflect our
		// increment. Our log entry being present is the proof; a later
		// claimant may already have stacked another use on top.
		got, err := uc.codes.FindByCode(ctx, code)
		if err != nil {
			lastErr = err
			metrics.ClaimRetries.WithLabelValues("write_error").Inc()
			uc.sleep(uc.policy.WriteBackoff)
			continue
		}
		if got.UsedCount < upd.UsedCount || !hasUseEntry(got.UseLog, entry.EntryID) {
			metrics.ClaimRetries.WithLabelValues("verify_mismatch").Inc()
			uc.sleep(uc.policy.RaceBackoff)
			continue
		}
		return &upd, nil
	}

	uc.log.Warn().Str("code", code).Err(lastErr).Msg("claim retries exhausted")
	return nil, domain.ErrRaceFailed
}

// buildLease creates the lease for a freshly consumed code and tries to bind
// a credential. A pool with no eligible credential still yields the lease.
func (uc *RedeemUseCase) buildLease(ctx context.Context, code *model.RedemptionCode) (*model.Lease, AssignmentOutcome, error) {
	slot, err := uc.slots.FindByID(ctx, code.SlotID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve slot %s: %w", code.SlotID, err)
	}

	start := uc.now()
	end := start.Add(slot.LeaseHours())
	mode := uc.resolveLabelMode(ctx, slot)

	lease := &model.Lease{
		Code:         code.Code,
		Platform:     slot.Platform,
		SlotID:       slot.ID,
		SlotName:     slot.Name,
		LabelMode:    mode,
		Headline:     headline(slot, mode),
		StartTime:    timeutil.FormatWallClock(start),
		EndTime:      timeutil.FormatWallClock(end),
		CreatedStamp: ulid.Make().String(),
	}

	if err := uc.leases.Create(ctx, lease); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// A lease is created exactly once per code; further uses of a
			// multi-use code share the original.
			existing, ferr := uc.leases.FindByCode(ctx, code.Code)
			if ferr != nil {
				return nil, "", ferr
			}
			if existing.CredentialID != "" {
				return existing, OutcomeAssigned, nil
			}
			return existing, OutcomeUnassigned, nil
		}
		return nil, "", fmt.Errorf("persist lease: %w", err)
	}

	cred, err := uc.selector.Select(ctx, slot)
	if err != nil {
		return nil, "", fmt.Errorf("select credential: %w", err)
	}
	if cred == nil {
		return lease, OutcomeUnassigned, nil
	}

	lease.CredentialID = cred.ID
	lease.Payload = clonePayload(cred.Payload)
	if err := uc.leases.Save(ctx, lease); err != nil {
		return nil, "", fmt.Errorf("bind credential: %w", err)
	}

	// Best-effort usage increment. Two concurrent binds to the same
	// credential can both pass the eligibility check before either write
	// lands; the narrow race is accepted.
	if cred.MaxUsage == 0 || cred.UsageCount < cred.MaxUsage {
		cred.UsageCount++
		if err := uc.creds.Save(ctx, cred); err != nil {
			uc.log.Warn().Str("credential", cred.ID).Err(err).Msg("usage increment failed")
		}
	}
	return lease, OutcomeAssigned, nil
}

// resolveLabelMode picks the lease headline style: the explicit settings flag
// wins when it names a valid mode, then the legacy boolean flag, then the
// slot's own default, then name.
func (uc *RedeemUseCase) resolveLabelMode(ctx context.Context, slot *model.Slot) string {
	if v, err := uc.settings.GetString(ctx, repository.SettingLabelMode); err == nil {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case model.LabelModePlatform:
			return model.LabelModePlatform
		case model.LabelModeName:
			return model.LabelModeName
		}
	}
	if legacy, err := uc.settings.GetBool(ctx, repository.SettingPlatformLabel); err == nil && legacy {
		return model.LabelModePlatform
	}
	switch strings.ToLower(strings.TrimSpace(slot.LabelMode)) {
	case model.LabelModePlatform:
		return model.LabelModePlatform
	case model.LabelModeName:
		return model.LabelModeName
	}
	return model.LabelModeName
}

func headline(slot *model.Slot, mode string) string {
	if mode == model.LabelModePlatform && strings.TrimSpace(slot.Platform) != "" {
		return slot.Platform + " Account"
	}
	return slot.Name + " Account"
}

func hasUseEntry(log []model.CodeUse, entryID string) bool {
	for _, e := range log {
		if e.EntryID == entryID {
			return true
		}
	}
	return false
}

func clonePayload(p model.Payload) model.Payload {
	if p == nil {
		return nil
	}
	out := make(model.Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func claimFailureLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCodeRevoked):
		return "revoked"
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired"
	case errors.Is(err, domain.ErrCodeUsedUp):
		return "used_up"
	case errors.Is(err, domain.ErrRaceFailed):
		return "race_failed"
	}
	return "error"
}
