package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/domain/model"
	"credential-lease-platform/internal/domain/ports/repository"
)

// AdminUseCase covers the administrative collaborator surface: issuing and
// revoking redemption codes, hiding leases, listing slots.
type AdminUseCase struct {
	codes  repository.CodeRepository
	slots  repository.SlotRepository
	leases repository.LeaseRepository
	log    *zerolog.Logger
	now    func() time.Time
}

func NewAdminUseCase(
	codes repository.CodeRepository,
	slots repository.SlotRepository,
	leases repository.LeaseRepository,
	logger *zerolog.Logger,
) *AdminUseCase {
	return &AdminUseCase{codes: codes, slots: slots, leases: leases, log: logger, now: time.Now}
}

var suffixPattern = regexp.MustCompile(`^[A-Z0-9]{3,32}$`)

// CreateCode issues a redemption code for a slot. An empty suffix gets a
// random one; custom suffixes must be uppercase alphanumeric.
func (uc *AdminUseCase) CreateCode(ctx context.Context, slotID, createdBy, suffix string, maxUses int, expiresAt *time.Time) (*model.RedemptionCode, error) {
	if maxUses < 1 {
		return nil, fmt.Errorf("max uses must be at least 1: %w", domain.ErrInvalidArgument)
	}
	slot, err := uc.slots.FindByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !slot.Enabled {
		return nil, fmt.Errorf("slot %s is disabled: %w", slotID, domain.ErrInvalidArgument)
	}

	suffix = strings.ToUpper(strings.TrimSpace(suffix))
	if suffix == "" {
		suffix, err = generateCodeSuffix()
		if err != nil {
			return nil, err
		}
	} else if !suffixPattern.MatchString(suffix) {
		return nil, fmt.Errorf("suffix must be 3-32 uppercase alphanumerics: %w", domain.ErrInvalidArgument)
	}

	code := &model.RedemptionCode{
		Code:      model.CodePrefix + suffix,
		SlotID:    slot.ID,
		CreatedBy: createdBy,
		CreatedAt: uc.now(),
		ExpiresAt: expiresAt,
		MaxUses:   maxUses,
	}
	if err := uc.codes.Create(ctx, code); err != nil {
		return nil, err
	}

	uc.log.Info().Str("code", code.Code).Str("slot", slot.ID).Int("max_uses", maxUses).Msg("code issued")
	return code, nil
}

// RevokeCode permanently disables a code. Revoking is the one mutation
// permitted after exhaustion.
func (uc *AdminUseCase) RevokeCode(ctx context.Context, code string) error {
	rec, err := uc.codes.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return err
	}
	if rec.Revoked {
		return nil
	}
	rec.Revoked = true
	if err := uc.codes.Save(ctx, rec); err != nil {
		return err
	}
	uc.log.Info().Str("code", rec.Code).Msg("code revoked")
	return nil
}

// HideLease soft-deletes a lease.
func (uc *AdminUseCase) HideLease(ctx context.Context, code string) error {
	lease, err := uc.leases.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return err
	}
	if lease.Hidden {
		return nil
	}
	lease.Hidden = true
	return uc.leases.Save(ctx, lease)
}

// ListSlots returns the enabled slots.
func (uc *AdminUseCase) ListSlots(ctx context.Context) ([]*model.Slot, error) {
	return uc.slots.ListEnabled(ctx)
}

// generateCodeSuffix creates a secure random suffix from a character set that
// avoids ambiguous characters like O/0, I/1, l.
func generateCodeSuffix() (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const length = 8

	buffer := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := range buffer {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}
	return string(buffer), nil
}
