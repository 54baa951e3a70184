package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/metrics"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
	"github.com/aussiebroadwan/hackreg/pkg/cryptox"
	"github.com/aussiebroadwan/hackreg/pkg/idx"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
)

// AccountService handles credentials: login, password changes and resets,
// verification resends and walk-in accounts.
type AccountService struct {
	Store    store.Store
	Tokens   *Tokens
	Guard    *Guard
	Notifier Notifier
	Metrics  *metrics.Metrics

	// WalkInPassword is the temporary password given to walk-in accounts.
	WalkInPassword string
}

// LoginWithPassword checks credentials and issues an auth token.
func (s *AccountService) LoginWithPassword(ctx context.Context, email, password string) (Session, error) {
	log := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	if password == "" {
		return Session{}, newError(KindValidation, "Please enter a password.")
	}
	if !domain.IsEmail(email) {
		return Session{}, newError(KindValidation, "Invalid email.")
	}

	u, err := s.Store.Users().GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, newError(KindAuthentication, "We couldn't find you!")
	}
	if err != nil {
		return Session{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		log.Warn("login failed", slog.String("user_id", u.ID), slog.Any("error", err))
		return Session{}, newError(KindAuthentication, "That's not the right password.")
	}

	if cryptox.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u.ID, password)
	}

	token, err := s.Tokens.IssueAuth(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: u}, nil
}

// rehash upgrades a legacy hash after a successful login. Failure only
// leaves the old hash in place.
func (s *AccountService) rehash(ctx context.Context, id, password string) {
	log := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err == nil {
		_, err = s.Store.Users().UpdatePasswordHash(ctx, id, hash)
	}
	if err != nil {
		log.Warn("failed to upgrade password hash", slog.String("user_id", id), slog.Any("error", err))
		return
	}
	log.Info("password hash upgraded", slog.String("user_id", id))
}

// LoginWithToken resolves an auth token to its user.
func (s *AccountService) LoginWithToken(ctx context.Context, token string) (domain.User, error) {
	id, err := s.Tokens.VerifyAuth(token)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.Store.Users().GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, newError(KindAuthentication, "Account no longer exists.")
	}
	return u, err
}

// ResendVerification mails a new verification link to an unverified user.
func (s *AccountService) ResendVerification(ctx context.Context, id string) error {
	u, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return storeError(err)
	}
	if u.Verified {
		return newError(KindConflict, "This account is already verified.")
	}

	token, err := s.Tokens.IssueEmail(u.Email)
	if err != nil {
		return err
	}
	logNotifyFailure(ctx, "verification", u.Email, s.Notifier.SendVerificationEmail(ctx, u.Email, token))
	return nil
}

// SendPasswordReset mails a reset link. Unknown addresses succeed silently
// so the endpoint cannot be used to probe for accounts.
func (s *AccountService) SendPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	u, err := s.Store.Users().GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := s.Tokens.IssueReset(u.ID)
	if err != nil {
		return err
	}
	logNotifyFailure(ctx, "password_reset", u.Email, s.Notifier.SendPasswordResetEmail(ctx, u.Email, token))
	return nil
}

// ResetPassword sets a new password using a reset token.
func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return newError(KindValidation, "A reset token is required.")
	}
	if len(password) < MinPasswordLength {
		return newError(KindValidation, msgShortPassword)
	}

	id, err := s.Tokens.VerifyReset(token)
	if err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	u, err := s.Store.Users().UpdatePasswordHash(ctx, id, hash)
	if err != nil {
		return storeError(err)
	}

	logNotifyFailure(ctx, "password_changed", u.Email, s.Notifier.SendPasswordChangedEmail(ctx, u.Email))
	s.Metrics.IncPasswordReset()
	slogx.FromContext(ctx).Info("password reset", slog.String("user_id", u.ID))
	return nil
}

// ChangePassword replaces the password of id after checking the old one.
func (s *AccountService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return newError(KindValidation, msgShortPassword)
	}

	u, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return storeError(err)
	}
	if err := cryptox.VerifyPassword(oldPassword, u.PasswordHash); err != nil {
		return newError(KindAuthentication, "Incorrect password.")
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.Store.Users().UpdatePasswordHash(ctx, id, hash); err != nil {
		return storeError(err)
	}

	logNotifyFailure(ctx, "password_changed", u.Email, s.Notifier.SendPasswordChangedEmail(ctx, u.Email))
	return nil
}

// ProvisionWalkIn creates an unverified account for someone registering on
// site. The registration window and whitelist do not apply.
func (s *AccountService) ProvisionWalkIn(ctx context.Context, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if !domain.IsEmail(email) {
		return domain.User{}, newError(KindValidation, "Invalid email.")
	}

	password := s.WalkInPassword
	if password == "" {
		generated, err := cryptox.GeneratePassword(sponsorPasswordLength)
		if err != nil {
			return domain.User{}, err
		}
		password = generated
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.Guard.Now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		LastUpdated:  now,
	}
	if err := s.Store.Users().Create(ctx, u); err != nil {
		return domain.User{}, storeError(err)
	}

	token, err := s.Tokens.IssueEmail(email)
	if err != nil {
		return domain.User{}, err
	}
	logNotifyFailure(ctx, "walk_in", email, s.Notifier.SendWalkInEmail(ctx, email, token))

	slogx.FromContext(ctx).Info("walk-in provisioned", slog.String("user_id", u.ID))
	return u, nil
}

// CompleteWalkIn verifies a walk-in account and sets its real password.
func (s *AccountService) CompleteWalkIn(ctx context.Context, token, password string) (domain.User, error) {
	if token == "" {
		return domain.User{}, newError(KindValidation, "A verification token is required.")
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, newError(KindValidation, msgShortPassword)
	}

	email, err := s.Tokens.VerifyEmail(token)
	if err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.Store.Users().CompleteWalkIn(ctx, email, hash)
	if err != nil {
		return domain.User{}, storeError(err)
	}

	s.Metrics.IncVerification()
	return u, nil
}

// EnsureAdmin creates a verified admin account when the store is empty.
// It reports whether an account was created.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil || !empty {
		return false, err
	}

	email = domain.NormalizeEmail(email)
	if !domain.IsEmail(email) {
		return false, newError(KindValidation, "Invalid admin email.")
	}
	if len(password) < MinPasswordLength {
		return false, newError(KindValidation, msgShortPassword)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return false, err
	}

	now := s.Guard.Now()
	err = s.Store.Users().Create(ctx, domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: hash,
		Admin:        true,
		Verified:     true,
		CreatedAt:    now,
		LastUpdated:  now,
	})
	if err != nil {
		return false, storeError(err)
	}

	slogx.FromContext(ctx).Info("seeded admin account", slog.String("email", email))
	return true, nil
}
