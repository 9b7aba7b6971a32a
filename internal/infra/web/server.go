package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"credential-lease-platform/internal/usecase"
)

// Pinger reports store liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	redeemUC *usecase.RedeemUseCase
	leaseUC  *usecase.LeaseUseCase
	adminUC  *usecase.AdminUseCase
	auth     *SessionManager
	apiKey   string
	limiter  *claimLimiter
	store    Pinger
	log      *zerolog.Logger
}

func NewServer(
	redeemUC *usecase.RedeemUseCase,
	leaseUC *usecase.LeaseUseCase,
	adminUC *usecase.AdminUseCase,
	auth *SessionManager,
	apiKey string,
	claimRatePerMin int,
	store Pinger,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		redeemUC: redeemUC,
		leaseUC:  leaseUC,
		adminUC:  adminUC,
		auth:     auth,
		apiKey:   apiKey,
		limiter:  newClaimLimiter(claimRatePerMin),
		store:    store,
		log:      logger,
	}
}

// Router builds the full route tree: the public consumer surface, the
// authenticated admin surface, health and metrics.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(traceMiddleware)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.limiter.middleware).Post("/claims", s.handleClaim)
		r.Get("/slots", s.handleListSlots)

		r.Route("/leases/{code}", func(r chi.Router) {
			r.Get("/", s.handleLeaseView)
			r.Post("/refresh", s.handleLeaseRefresh)
			r.Post("/timecode", s.handleLeaseTimeCode)
			r.Post("/mailcode", s.handleLeaseMailCode)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/session", s.handleAdminSession)
			r.Group(func(r chi.Router) {
				r.Use(s.adminAuth)
				r.Delete("/session", s.handleAdminLogout)
				r.Post("/codes", s.handleCreateCode)
				r.Post("/codes/{code}/revoke", s.handleRevokeCode)
				r.Post("/leases/{code}/hide", s.handleHideLease)
			})
		})
	})

	return r
}

// adminAuth admits requests carrying either the configured API key or a
// valid admin session token.
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			writeError(w, http.StatusForbidden, "forbidden", "admin access not configured")
			return
		}
		if bearerToken(r) == s.apiKey {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err == nil {
			next.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid credentials")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", "store ping failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
