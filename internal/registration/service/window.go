package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
)

// Guard answers time and email eligibility questions from a snapshot of the
// settings row. The snapshot is swapped atomically by Reload and Set; the
// query methods never touch the store.
type Guard struct {
	now      func() time.Time
	settings atomic.Pointer[domain.Settings]
}

// NewGuard returns a guard holding initial. A nil now uses time.Now.
func NewGuard(initial domain.Settings, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	g := &Guard{now: now}
	g.Set(initial)
	return g
}

// Reload replaces the snapshot with the stored settings.
func (g *Guard) Reload(ctx context.Context, repo store.Settings) error {
	s, err := repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	g.Set(s)
	return nil
}

func (g *Guard) Set(s domain.Settings) {
	s.WhitelistedEmails = append([]string(nil), s.WhitelistedEmails...)
	g.settings.Store(&s)
}

// Settings returns a copy of the current snapshot.
func (g *Guard) Settings() domain.Settings {
	s := *g.settings.Load()
	s.WhitelistedEmails = append([]string(nil), s.WhitelistedEmails...)
	return s
}

func (g *Guard) Now() time.Time { return g.now().UTC() }

// IsRegistrationOpen reports whether now lies in [timeOpen, timeClose].
func (g *Guard) IsRegistrationOpen() bool {
	return g.checkRegistrationOpen() == nil
}

func (g *Guard) checkRegistrationOpen() error {
	s := g.settings.Load()
	now := g.Now()

	if now.Before(s.TimeOpen) {
		until := s.TimeOpen.Sub(now).Round(time.Minute)
		return newError(KindDeadlineExceeded, fmt.Sprintf("Registration opens in %s!", until))
	}
	if now.After(s.TimeClose) {
		return newError(KindDeadlineExceeded, "Sorry, registration is closed.")
	}
	return nil
}

// IsPastDeadline reports whether a deadline is set and has been reached.
func (g *Guard) IsPastDeadline(deadline *time.Time) bool {
	return deadline != nil && !g.Now().Before(*deadline)
}

// IsEmailWhitelisted reports whether email is well formed and ends with one
// of the whitelisted domain suffixes.
func (g *Guard) IsEmailWhitelisted(email string) bool {
	email = domain.NormalizeEmail(email)
	if !domain.IsEmail(email) {
		return false
	}
	for _, suffix := range g.settings.Load().WhitelistedEmails {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix != "" && strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return false
}

// ConfirmBy is the deadline stamped on users admitted now.
func (g *Guard) ConfirmBy() *time.Time {
	return g.settings.Load().ConfirmBy()
}
