package usecase

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const otpSpan = 900000 // codes are uniform in [100000, 999999]

// OTPGenerator mints one-time verification codes with an absolute expiry.
type OTPGenerator struct {
	ttl time.Duration
	now func() time.Time
}

func NewOTPGenerator(ttl time.Duration) *OTPGenerator {
	return &OTPGenerator{ttl: ttl, now: time.Now}
}

// Generate returns a 6-digit code and the timestamp it stops being valid.
func (g *OTPGenerator) Generate() (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", time.Time{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)
	return code, g.now().Add(g.ttl), nil
}

// Expired reports whether the code's lifetime has elapsed. An expired code is
// never valid regardless of string match.
func (g *OTPGenerator) Expired(lifetime time.Time) bool {
	return !g.now().Before(lifetime)
}
