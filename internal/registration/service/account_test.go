package service_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/pkg/cryptox"
	"github.com/aussiebroadwan/hackreg/pkg/tokenx"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func withPassword(password string) func(*domain.User) {
	return func(u *domain.User) {
		hash, err := cryptox.HashPassword(password)
		if err != nil {
			panic(err)
		}
		u.PasswordHash = hash
	}
}

func TestLoginWithPassword(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.edu", withPassword("secret1"))

	tests := []struct {
		name     string
		email    string
		password string
		kind     service.Kind
		msg      string
	}{
		{"empty password", "ada@example.edu", "", service.KindValidation, "Please enter a password."},
		{"bad email", "ada", "secret1", service.KindValidation, "Invalid email."},
		{"unknown email", "bob@example.edu", "secret1", service.KindAuthentication, "We couldn't find you!"},
		{"wrong password", "ada@example.edu", "secret2", service.KindAuthentication, "That's not the right password."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.LoginWithPassword(f.ctx, tt.email, tt.password)
			requireKind(t, err, tt.kind, tt.msg)
		})
	}

	session, err := f.accounts.LoginWithPassword(f.ctx, "ADA@example.edu", "secret1")
	require.NoError(t, err)
	require.Equal(t, u.ID, session.User.ID)

	me, err := f.accounts.LoginWithToken(f.ctx, session.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, me.ID)

	_, err = f.accounts.LoginWithToken(f.ctx, "garbage")
	requireKind(t, err, service.KindToken, "")

	orphan, err := f.tokens.IssueAuth("01J0000000000000000000000")
	require.NoError(t, err)
	_, err = f.accounts.LoginWithToken(f.ctx, orphan)
	requireKind(t, err, service.KindAuthentication, "")
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "forgetful@example.edu", withPassword("oldpass"))

	var token string
	f.notifier.On("SendPasswordResetEmail", mock.Anything, "forgetful@example.edu", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { token = args.String(2) }).
		Return(nil).Twice()
	f.notifier.On("SendPasswordChangedEmail", mock.Anything, "forgetful@example.edu").Return(nil).Once()

	require.NoError(t, f.accounts.SendPasswordReset(f.ctx, "nobody@example.edu"))
	require.NoError(t, f.accounts.SendPasswordReset(f.ctx, "forgetful@example.edu"))

	err := f.accounts.ResetPassword(f.ctx, token, "short")
	requireKind(t, err, service.KindValidation, "Password must be 6 or more characters.")

	require.NoError(t, f.accounts.ResetPassword(f.ctx, token, "newpass"))

	_, err = f.accounts.LoginWithPassword(f.ctx, u.Email, "oldpass")
	requireKind(t, err, service.KindAuthentication, "")
	_, err = f.accounts.LoginWithPassword(f.ctx, u.Email, "newpass")
	require.NoError(t, err)

	// Reset links are bounded even though auth tokens are not.
	require.NoError(t, f.accounts.SendPasswordReset(f.ctx, u.Email))
	f.clock.Advance(service.DefaultResetTTL)

	err = f.accounts.ResetPassword(f.ctx, token, "another")
	requireKind(t, err, service.KindToken, "This link has expired.")
	require.ErrorIs(t, err, tokenx.ErrExpired)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "careful@example.edu", withPassword("oldpass"))
	f.notifier.On("SendPasswordChangedEmail", mock.Anything, "careful@example.edu").Return(nil).Once()

	err := f.accounts.ChangePassword(f.ctx, u.ID, "wrong!", "newpass")
	requireKind(t, err, service.KindAuthentication, "Incorrect password.")

	err = f.accounts.ChangePassword(f.ctx, u.ID, "oldpass", "tiny")
	requireKind(t, err, service.KindValidation, "")

	require.NoError(t, f.accounts.ChangePassword(f.ctx, u.ID, "oldpass", "newpass"))
	_, err = f.accounts.LoginWithPassword(f.ctx, u.Email, "newpass")
	require.NoError(t, err)
}

func TestResendVerification(t *testing.T) {
	f := newFixture(t)
	pending := f.user(t, "pending@example.edu", unverified)
	done := f.user(t, "done@example.edu")

	f.notifier.On("SendVerificationEmail", mock.Anything, "pending@example.edu", mock.AnythingOfType("string")).
		Return(nil).Once()

	require.NoError(t, f.accounts.ResendVerification(f.ctx, pending.ID))

	err := f.accounts.ResendVerification(f.ctx, done.ID)
	requireKind(t, err, service.KindConflict, "This account is already verified.")
}

func TestWalkIn(t *testing.T) {
	f := newFixture(t)

	// Walk-ins bypass the registration window and the whitelist.
	_, err := f.settings.UpdateRegistrationTimes(f.ctx, start.Add(-48*time.Hour), start.Add(-time.Hour))
	require.NoError(t, err)

	var token string
	f.notifier.On("SendWalkInEmail", mock.Anything, "walkin@gmail.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { token = args.String(2) }).
		Return(nil).Once()

	u, err := f.accounts.ProvisionWalkIn(f.ctx, "walkin@gmail.com")
	require.NoError(t, err)
	require.False(t, u.Verified)

	_, err = f.accounts.LoginWithPassword(f.ctx, "walkin@gmail.com", "walkin-temp")
	require.NoError(t, err)

	_, err = f.accounts.CompleteWalkIn(f.ctx, token, "123")
	requireKind(t, err, service.KindValidation, "")

	done, err := f.accounts.CompleteWalkIn(f.ctx, token, "mypassword")
	require.NoError(t, err)
	require.True(t, done.Verified)

	_, err = f.accounts.LoginWithPassword(f.ctx, "walkin@gmail.com", "mypassword")
	require.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)

	created, err := f.accounts.EnsureAdmin(f.ctx, "", "")
	require.NoError(t, err)
	require.False(t, created)

	created, err = f.accounts.EnsureAdmin(f.ctx, "Root@Example.org", "rootpass")
	require.NoError(t, err)
	require.True(t, created)

	session, err := f.accounts.LoginWithPassword(f.ctx, "root@example.org", "rootpass")
	require.NoError(t, err)
	require.True(t, session.User.Admin)
	require.True(t, session.User.Verified)

	created, err = f.accounts.EnsureAdmin(f.ctx, "other@example.org", "rootpass")
	require.NoError(t, err)
	require.False(t, created)
}
