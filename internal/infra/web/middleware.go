package web

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"credential-lease-platform/internal/infra/logging"
	"credential-lease-platform/internal/infra/metrics"
)

// respWriter captures the status code for logging and metrics.
type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// traceMiddleware assigns every request a trace id, exposed both in the
// logging context and the response headers.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Trace-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Trace-Id", id)
		next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), id)))
	})
}

// requestLogger emits one structured line per request and feeds the latency
// histogram, labeled by the matched route pattern rather than the raw path.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &respWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.HTTPDuration.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Observe(elapsed.Seconds())

		logging.With(r.Context(), s.log).Info().
			Str("method", r.Method).
			Str("route", route).
			Int("status", rw.status).
			Dur("elapsed", elapsed).
			Msg("http request")
	})
}

// claimLimiter throttles claim attempts per client IP. Claims hammer the
// optimistic write path, so an abusive client gets a 429 before it can
// drive up contention for everyone else.
type claimLimiter struct {
	mu      sync.Mutex
	perIP   map[string]*rate.Limiter
	every   rate.Limit
	burst   int
	enabled bool
}

func newClaimLimiter(perMin int) *claimLimiter {
	if perMin <= 0 {
		return &claimLimiter{}
	}
	return &claimLimiter{
		perIP:   make(map[string]*rate.Limiter),
		every:   rate.Every(time.Minute / time.Duration(perMin)),
		burst:   5,
		enabled: true,
	}
}

// maxTrackedClients caps the per-IP limiter map: a scan from spoofed
// addresses resets the tracking instead of growing it without bound.
const maxTrackedClients = 10000

func (l *claimLimiter) allow(remoteAddr string) bool {
	if !l.enabled {
		return true
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	l.mu.Lock()
	lim, ok := l.perIP[host]
	if !ok {
		if len(l.perIP) >= maxTrackedClients {
			l.perIP = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.every, l.burst)
		l.perIP[host] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}

func (l *claimLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many claim attempts")
			return
		}
		next.ServeHTTP(w, r)
	})
}
