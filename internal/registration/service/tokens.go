package service

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/hackreg/pkg/tokenx"
)

// DefaultResetTTL bounds password reset tokens.
const DefaultResetTTL = 60 * time.Minute

// Each namespace carries its own claim type so a token can only be verified
// by the namespace that issued it, and the compiler keeps payloads apart.

type AuthClaim struct {
	UserID string `json:"id"`
}

type EmailClaim struct {
	Email string `json:"email"`
}

type ResetClaim struct {
	ID string `json:"id"`
}

type DiscordClaim struct {
	UserID string `json:"id"`
}

type TokenConfig struct {
	AuthSecret    []byte
	EmailSecret   []byte
	ResetSecret   []byte
	DiscordSecret []byte

	// Zero TTLs leave auth and email tokens valid until the secret rotates.
	AuthTTL  time.Duration
	EmailTTL time.Duration
	// ResetTTL defaults to DefaultResetTTL.
	ResetTTL time.Duration

	Now func() time.Time
}

// Tokens is the set of signing namespaces used by the services.
type Tokens struct {
	Auth    *tokenx.Namespace[AuthClaim]
	Email   *tokenx.Namespace[EmailClaim]
	Reset   *tokenx.Namespace[ResetClaim]
	Discord *tokenx.Namespace[DiscordClaim]
}

func NewTokens(cfg TokenConfig) (*Tokens, error) {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	resetTTL := cfg.ResetTTL
	if resetTTL == 0 {
		resetTTL = DefaultResetTTL
	}

	auth, err := tokenx.New[AuthClaim]("auth", cfg.AuthSecret, tokenx.WithTTL(cfg.AuthTTL), tokenx.WithClock(now))
	if err != nil {
		return nil, err
	}
	email, err := tokenx.New[EmailClaim]("email", cfg.EmailSecret, tokenx.WithTTL(cfg.EmailTTL), tokenx.WithClock(now))
	if err != nil {
		return nil, err
	}
	reset, err := tokenx.New[ResetClaim]("reset", cfg.ResetSecret, tokenx.WithTTL(resetTTL), tokenx.WithClock(now))
	if err != nil {
		return nil, err
	}
	discord, err := tokenx.New[DiscordClaim]("discord", cfg.DiscordSecret, tokenx.WithClock(now))
	if err != nil {
		return nil, err
	}

	return &Tokens{Auth: auth, Email: email, Reset: reset, Discord: discord}, nil
}

func (t *Tokens) IssueAuth(userID string) (string, error) {
	return t.Auth.Issue(AuthClaim{UserID: userID})
}

// VerifyAuth returns the user id carried by an auth token.
func (t *Tokens) VerifyAuth(token string) (string, error) {
	c, err := t.Auth.Verify(token)
	if err != nil {
		return "", tokenError(err)
	}
	if c.UserID == "" {
		return "", newError(KindToken, "invalid token")
	}
	return c.UserID, nil
}

func (t *Tokens) IssueEmail(email string) (string, error) {
	return t.Email.Issue(EmailClaim{Email: email})
}

func (t *Tokens) VerifyEmail(token string) (string, error) {
	c, err := t.Email.Verify(token)
	if err != nil {
		return "", tokenError(err)
	}
	if c.Email == "" {
		return "", newError(KindToken, "invalid token")
	}
	return c.Email, nil
}

func (t *Tokens) IssueReset(userID string) (string, error) {
	return t.Reset.Issue(ResetClaim{ID: userID})
}

func (t *Tokens) VerifyReset(token string) (string, error) {
	c, err := t.Reset.Verify(token)
	if err != nil {
		return "", tokenError(err)
	}
	if c.ID == "" {
		return "", newError(KindToken, "invalid token")
	}
	return c.ID, nil
}

func (t *Tokens) IssueDiscord(userID string) (string, error) {
	return t.Discord.Issue(DiscordClaim{UserID: userID})
}

func (t *Tokens) VerifyDiscord(token string) (string, error) {
	c, err := t.Discord.Verify(token)
	if err != nil {
		return "", tokenError(err)
	}
	if c.UserID == "" {
		return "", newError(KindToken, "invalid token")
	}
	return c.UserID, nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, tokenx.ErrExpired):
		return wrapError(KindToken, "This link has expired.", err)
	case errors.Is(err, tokenx.ErrMalformed):
		return wrapError(KindToken, "malformed token", err)
	default:
		return wrapError(KindToken, "invalid token", err)
	}
}
