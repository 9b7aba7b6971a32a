package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"credential-lease-platform/internal/domain"
	"credential-lease-platform/internal/infra/logging"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeDomainError maps the domain sentinels onto stable wire codes. Hidden
// leases read as not found so the code stops resolving once withdrawn.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, domain.ErrCodeNotFound):
		writeError(w, http.StatusNotFound, "code_not_found", "redemption code not found")
	case errors.Is(err, domain.ErrCodeRevoked):
		writeError(w, http.StatusGone, "code_revoked", "redemption code revoked")
	case errors.Is(err, domain.ErrCodeExpired):
		writeError(w, http.StatusGone, "code_expired", "redemption code expired")
	case errors.Is(err, domain.ErrCodeUsedUp):
		writeError(w, http.StatusConflict, "code_used_up", "redemption code has no uses left")
	case errors.Is(err, domain.ErrRaceFailed):
		writeError(w, http.StatusServiceUnavailable, "race_failed", "could not claim under contention, retry")
	case errors.Is(err, domain.ErrLeaseNotFound), errors.Is(err, domain.ErrLeaseHidden):
		writeError(w, http.StatusNotFound, "lease_not_found", "lease not found")
	case errors.Is(err, domain.ErrLeaseExpired):
		writeError(w, http.StatusGone, "lease_expired", "lease expired")
	case errors.Is(err, domain.ErrNoCredentialBound):
		writeError(w, http.StatusConflict, "no_credential_bound", "no credential bound to lease")
	case errors.Is(err, domain.ErrCredentialNotFound):
		writeError(w, http.StatusNotFound, "credential_not_found", "credential not found")
	case errors.Is(err, domain.ErrFetchBusy):
		writeError(w, http.StatusTooManyRequests, "fetch_busy", "another code fetch is in flight for this platform")
	case errors.Is(err, domain.ErrActionDisabled):
		writeError(w, http.StatusForbidden, "action_disabled", "action disabled for this platform")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", "entity already exists")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "entity not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// ===== public surface =====

type claimRequest struct {
	Code     string `json:"code"`
	Consumer string `json:"consumer"`
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	ctx := logging.WithCode(r.Context(), req.Code)
	lease, outcome, err := s.redeemUC.Claim(ctx, req.Code, req.Consumer)
	if err != nil {
		logging.With(ctx, s.log).Warn().Err(err).Msg("claim rejected")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Outcome string      `json:"outcome"`
		Lease   interface{} `json:"lease"`
	}{
		Outcome: string(outcome),
		Lease:   lease,
	})
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.adminUC.ListSlots(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data interface{} `json:"data"`
	}{Data: slots})
}

func (s *Server) handleLeaseView(w http.ResponseWriter, r *http.Request) {
	view, err := s.leaseUC.View(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLeaseRefresh(w http.ResponseWriter, r *http.Request) {
	payload, changed, err := s.leaseUC.Refresh(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Changed bool        `json:"changed"`
		Payload interface{} `json:"payload"`
	}{Changed: changed, Payload: payload})
}

func (s *Server) handleLeaseTimeCode(w http.ResponseWriter, r *http.Request) {
	result, err := s.leaseUC.TimeCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLeaseMailCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.leaseUC.FetchMailCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Code string `json:"code"`
	}{Code: code})
}

// ===== admin surface =====

func (s *Server) handleAdminSession(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" || bearerToken(r) != s.apiKey {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid credentials")
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not mint session")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
	}{Token: token})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

type createCodeRequest struct {
	SlotID    string     `json:"slot_id"`
	Suffix    string     `json:"suffix"`
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (s *Server) handleCreateCode(w http.ResponseWriter, r *http.Request) {
	var req createCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	code, err := s.adminUC.CreateCode(r.Context(), req.SlotID, "admin", req.Suffix, req.MaxUses, req.ExpiresAt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, code)
}

func (s *Server) handleRevokeCode(w http.ResponseWriter, r *http.Request) {
	if err := s.adminUC.RevokeCode(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHideLease(w http.ResponseWriter, r *http.Request) {
	if err := s.adminUC.HideLease(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
