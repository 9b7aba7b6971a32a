package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "credlease_admin_session"

// SessionManager mints and verifies the short-lived admin session tokens
// that stand in for the shared API key after a session login. Tokens are
// HS256 JWTs signed with the API secret and delivered both in the response
// body and as an HttpOnly cookie.
type SessionManager struct {
	secret []byte
	secure bool
	domain string
	ttl    time.Duration
}

func NewSessionManager(secret string, secure bool, domain string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		secure: secure,
		domain: domain,
		ttl:    ttl,
	}
}

// SessionClaims is the JWT payload of an admin session.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint issues a fresh session token and sets the session cookie.
func (m *SessionManager) Mint(w http.ResponseWriter) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, m.cookie(signed, int(m.ttl.Seconds())))
	return signed, nil
}

// Clear expires the session cookie. The token itself stays valid until its
// TTL runs out; sessions are stateless on the server side.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1))
}

func (m *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ParseFromRequest accepts a session token from the Authorization header or
// the session cookie, in that order.
func (m *SessionManager) ParseFromRequest(r *http.Request) (*SessionClaims, error) {
	if tok := bearerToken(r); tok != "" {
		return m.parse(tok)
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return m.parse(c.Value)
	}
	return nil, errors.New("no session token")
}

func (m *SessionManager) parse(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// bearerToken extracts a raw bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return ""
	}
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
