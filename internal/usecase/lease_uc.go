package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/model"
	"credential-lease-platform/internal/domain/ports/adapter"
	"credential-lease-platform/internal/domain/ports/repository"
	"credential-lease-platform/internal/infra/logging"
	"credential-lease-platform/internal/infra/metrics"
	"credential-lease-platform/internal/totp"
)

const (
	// fetchWindowHold bounds how long one mail-code fetch may exclude others
	// on the same platform, independent of client disconnect.
	fetchWindowHold = 90 * time.Second
	mailFetchTries  = 3
)

// LeaseView is the read projection returned to lease holders.
type LeaseView struct {
	Code       string                      `json:"code"`
	Headline   string                      `json:"headline"`
	Platform   string                      `json:"platform"`
	SlotID     string                      `json:"slot_id"`
	SlotName   string                      `json:"slot_name"`
	LabelMode  string                      `json:"label_mode"`
	StartTime  string                      `json:"start_time"`
	EndTime    string                      `json:"end_time"`
	Assigned   bool                        `json:"assigned"`
	Payload    model.Payload               `json:"payload,omitempty"`
	InviteLink string                      `json:"invite_link,omitempty"`
	Features   repository.PlatformFeatures `json:"features"`
}

// TimeCodeResult carries a generated time-window code and its remaining
// validity in seconds.
type TimeCodeResult struct {
	Code             string `json:"code"`
	SecondsRemaining int    `json:"seconds_remaining"`
}

// LeaseUseCase implements the lease lifecycle: view, refresh-on-change,
// time-window code generation and the rate-limited external code fetch.
type LeaseUseCase struct {
	leases   repository.LeaseRepository
	creds    repository.CredentialRepository
	settings repository.SettingsRepository
	window   repository.FetchWindow
	mail     adapter.MailCodeClient
	log      *zerolog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

func NewLeaseUseCase(
	leases repository.LeaseRepository,
	creds repository.CredentialRepository,
	settings repository.SettingsRepository,
	window repository.FetchWindow,
	mail adapter.MailCodeClient,
	logger *zerolog.Logger,
) *LeaseUseCase {
	return &LeaseUseCase{
		leases:   leases,
		creds:    creds,
		settings: settings,
		window:   window,
		mail:     mail,
		log:      logger,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// load fetches the lease and applies the shared preconditions: it must
// exist, not be hidden, and not be past its end time.
func (uc *LeaseUseCase) load(ctx context.Context, code string) (*model.Lease, error) {
	lease, err := uc.leases.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if lease.Hidden {
		return nil, domain.ErrLeaseHidden
	}
	if lease.IsExpired(uc.now()) {
		return nil, domain.ErrLeaseExpired
	}
	return lease, nil
}

// View returns the lease projection plus the platform capability flags and a
// best-effort invite link (lease snapshot first, bound credential second).
func (uc *LeaseUseCase) View(ctx context.Context, code string) (*LeaseView, error) {
	lease, err := uc.load(ctx, code)
	if err != nil {
		metrics.LeaseOps.WithLabelValues("view", "rejected").Inc()
		return nil, err
	}

	features, err := uc.settings.PlatformFeatures(ctx, lease.Platform)
	if err != nil {
		return nil, fmt.Errorf("platform features: %w", err)
	}

	invite := lease.InviteLink()
	if invite == "" && lease.CredentialID != "" {
		if cred, err := uc.creds.FindByID(ctx, lease.CredentialID); err == nil {
			invite = cred.Payload[model.PayloadInviteLink]
		}
	}

	metrics.LeaseOps.WithLabelValues("view", "ok").Inc()
	return &LeaseView{
		Code:       lease.Code,
		Headline:   lease.Headline,
		Platform:   lease.Platform,
		SlotID:     lease.SlotID,
		SlotName:   lease.SlotName,
		LabelMode:  lease.LabelMode,
		StartTime:  lease.StartTime,
		EndTime:    lease.EndTime,
		Assigned:   lease.CredentialID != "",
		Payload:    lease.Payload,
		InviteLink: invite,
		Features:   features,
	}, nil
}

// Refresh re-reads the bound credential's payload. An unchanged payload is
// reported explicitly and leaves the stored snapshot untouched.
func (uc *LeaseUseCase) Refresh(ctx context.Context, code string) (model.Payload, bool, error) {
	lease, err := uc.load(ctx, code)
	if err != nil {
		metrics.LeaseOps.WithLabelValues("refresh", "rejected").Inc()
		return nil, false, err
	}
	if err := uc.requireFeature(ctx, lease.Platform, "refresh"); err != nil {
		return nil, false, err
	}
	if lease.CredentialID == "" {
		return nil, false, domain.ErrNoCredentialBound
	}

	cred, err := uc.creds.FindByID(ctx, lease.CredentialID)
	if err != nil {
		return nil, false, err
	}

	if cred.Payload.Equal(lease.Payload) {
		metrics.LeaseOps.WithLabelValues("refresh", "unchanged").Inc()
		return lease.Payload, false, nil
	}

	lease.Payload = clonePayload(cred.Payload)
	if err := uc.leases.Save(ctx, lease); err != nil {
		return nil, false, fmt.Errorf("save refreshed snapshot: %w", err)
	}
	metrics.LeaseOps.WithLabelValues("refresh", "changed").Inc()
	return lease.Payload, true, nil
}

// TimeCode generates the current time-window code from the bound
// credential's seed.
func (uc *LeaseUseCase) TimeCode(ctx context.Context, code string) (*TimeCodeResult, error) {
	lease, err := uc.load(ctx, code)
	if err != nil {
		metrics.LeaseOps.WithLabelValues("timecode", "rejected").Inc()
		return nil, err
	}
	if err := uc.requireFeature(ctx, lease.Platform, "timecode"); err != nil {
		return nil, err
	}
	if lease.CredentialID == "" {
		return nil, domain.ErrNoCredentialBound
	}

	secret := lease.Payload[model.PayloadTOTPSecret]
	if secret == "" {
		cred, err := uc.creds.FindByID(ctx, lease.CredentialID)
		if err != nil {
			return nil, err
		}
		secret = cred.Payload[model.PayloadTOTPSecret]
	}
	if secret == "" {
		return nil, fmt.Errorf("credential has no time-code seed: %w", domain.ErrNotFound)
	}

	value, remaining, err := totp.Generate(secret, uc.now(), totp.DefaultWindow, totp.DefaultDigits)
	if err != nil {
		return nil, err
	}

	if !lease.TimeCodeSent {
		lease.TimeCodeSent = true
		if err := uc.leases.Save(ctx, lease); err != nil {
			uc.log.Warn().Str("code", lease.Code).Err(err).Msg("time-code flag save failed")
		}
	}
	metrics.LeaseOps.WithLabelValues("timecode", "ok").Inc()
	return &TimeCodeResult{Code: value, SecondsRemaining: remaining}, nil
}

// FetchMailCode retrieves an externally delivered verification code through
// the per-platform mutual-exclusion window: fail fast while another fetch is
// in flight, hold the window for at most 90s, poll the collaborator up to
// three times with increasing backoff while it reports not_found, and always
// clear the window on the way out.
func (uc *LeaseUseCase) FetchMailCode(ctx context.Context, code string) (string, error) {
	lease, err := uc.load(ctx, code)
	if err != nil {
		metrics.LeaseOps.WithLabelValues("mailcode", "rejected").Inc()
		return "", err
	}
	if err := uc.requireFeature(ctx, lease.Platform, "mailcode"); err != nil {
		return "", err
	}
	if lease.CredentialID == "" {
		return "", domain.ErrNoCredentialBound
	}

	address := lease.Payload[model.PayloadLogin]
	if address == "" {
		return "", fmt.Errorf("lease has no recipient address: %w", domain.ErrNotFound)
	}

	ctx = logging.WithPlatform(logging.WithCode(ctx, lease.Code), lease.Platform)
	log := logging.With(ctx, uc.log)

	if err := uc.window.Acquire(ctx, lease.Platform, fetchWindowHold); err != nil {
		if errors.Is(err, domain.ErrFetchBusy) {
			metrics.MailCodeFetches.WithLabelValues("busy").Inc()
		}
		return "", err
	}
	defer func() {
		if err := uc.window.Release(ctx, lease.Platform); err != nil {
			log.Warn().Err(err).Msg("fetch window release failed")
		}
	}()

	for attempt := 1; attempt <= mailFetchTries; attempt++ {
		res, err := uc.mail.FetchLatest(ctx, address, lease.Platform)
		if err != nil {
			metrics.MailCodeFetches.WithLabelValues("error").Inc()
			return "", fmt.Errorf("mail code lookup: %w", err)
		}
		switch res.Status {
		case adapter.MailCodeSuccess:
			metrics.MailCodeFetches.WithLabelValues("success").Inc()
			if !lease.MailCodeSent {
				lease.MailCodeSent = true
				if err := uc.leases.Save(ctx, lease); err != nil {
					log.Warn().Err(err).Msg("mail-code flag save failed")
				}
			}
			log.Info().Str("address", logging.Redact(address)).Int("attempt", attempt).Msg("mail code fetched")
			return res.Code, nil
		case adapter.MailCodeNotFound:
			if attempt < mailFetchTries {
				uc.sleep(time.Duration(attempt) * time.Second)
			}
		default:
			metrics.MailCodeFetches.WithLabelValues("other").Inc()
			return "", fmt.Errorf("mail code lookup returned status %q", res.Status)
		}
	}

	metrics.MailCodeFetches.WithLabelValues("not_found").Inc()
	return "", fmt.Errorf("no delivered code found: %w", domain.ErrNotFound)
}

func (uc *LeaseUseCase) requireFeature(ctx context.Context, platform, action string) error {
	features, err := uc.settings.PlatformFeatures(ctx, platform)
	if err != nil {
		return fmt.Errorf("platform features: %w", err)
	}
	enabled := map[string]bool{
		"refresh":  features.Refresh,
		"timecode": features.TimeCode,
		"mailcode": features.MailCode,
	}[action]
	if !enabled {
		return domain.ErrActionDisabled
	}
	return nil
}
