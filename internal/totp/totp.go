// Package totp implements the time-based one-time password algorithm
// (RFC 6238 over RFC 4226 dynamic truncation) with HMAC-SHA1, as used by
// common authenticator apps.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultWindow = 30 * time.Second
	DefaultDigits = 6
)

// Generate returns the code for secret at time t plus the number of seconds
// the code remains valid within its window. The secret is base32 (RFC 4648);
// whitespace and padding are tolerated.
func Generate(secret string, t time.Time, window time.Duration, digits int) (string, int, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	if digits <= 0 {
		digits = DefaultDigits
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return "", 0, fmt.Errorf("decode totp secret: %w", err)
	}

	step := int64(window / time.Second)
	counter := uint64(t.Unix() / step)

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: low 4 bits of the last byte pick the offset.
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	code := fmt.Sprintf("%0*d", digits, value%mod)
	remaining := int(step - t.Unix()%step)
	return code, remaining, nil
}

// Now is Generate against the current wall clock with default parameters.
func Now(secret string) (string, int, error) {
	return Generate(secret, time.Now(), DefaultWindow, DefaultDigits)
}

func decodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimSpace(secret))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimRight(s, "=")
	return base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
}
