package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pwbcr2502-crypto/galass/storage"
)

var ErrTooManyAttempts = errors.New("too many login attempts")

// LoginThrottle limits login attempts per (ip, employee number) identity.
// Counters live in the shared store, not process memory, so the limit holds
// when the service runs as more than one instance.
type LoginThrottle struct {
	Attempts    storage.LoginAttemptStorage
	Window      time.Duration
	MaxAttempts int
}

func NewLoginThrottle(attempts storage.LoginAttemptStorage) *LoginThrottle {
	return &LoginThrottle{
		Attempts:    attempts,
		Window:      15 * time.Minute,
		MaxAttempts: 5,
	}
}

// Check records the attempt and rejects once the window's budget is spent.
func (l *LoginThrottle) Check(ctx context.Context, ip, empNo string) error {
	identity := fmt.Sprintf("%s-%s", ip, empNo)
	since := time.Now().UTC().Add(-l.Window)

	count, err := l.Attempts.CountSince(ctx, identity, since)
	if err != nil {
		return err
	}
	if count >= int64(l.MaxAttempts) {
		return ErrTooManyAttempts
	}
	if err := l.Attempts.Record(ctx, identity); err != nil {
		return err
	}
	// Old attempts are dead weight once outside every window.
	_ = l.Attempts.PruneBefore(ctx, time.Now().UTC().Add(-2*l.Window))
	return nil
}
