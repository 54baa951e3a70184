package service_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/stretchr/testify/require"
)

func TestRegistrationWindowBounds(t *testing.T) {
	now := start
	g := service.NewGuard(domain.Settings{
		TimeOpen:  start,
		TimeClose: start.Add(24 * time.Hour),
	}, func() time.Time { return now })

	tests := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"before open", start.Add(-time.Millisecond), false},
		{"at open", start, true},
		{"inside", start.Add(time.Hour), true},
		{"at close", start.Add(24 * time.Hour), true},
		{"after close", start.Add(24*time.Hour + time.Millisecond), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = tt.at
			require.Equal(t, tt.open, g.IsRegistrationOpen())
		})
	}
}

func TestIsPastDeadline(t *testing.T) {
	g := service.NewGuard(domain.Settings{}, func() time.Time { return start })

	before := start.Add(-time.Second)
	after := start.Add(time.Second)

	require.False(t, g.IsPastDeadline(nil))
	require.True(t, g.IsPastDeadline(&before))
	require.True(t, g.IsPastDeadline(&start))
	require.False(t, g.IsPastDeadline(&after))
}

func TestIsEmailWhitelisted(t *testing.T) {
	g := service.NewGuard(domain.Settings{WhitelistedEmails: []string{".edu", "@Partner.org"}}, nil)

	require.True(t, g.IsEmailWhitelisted("ada@utexas.edu"))
	require.True(t, g.IsEmailWhitelisted("ADA@UTEXAS.EDU"))
	require.True(t, g.IsEmailWhitelisted("bob@partner.org"))
	require.False(t, g.IsEmailWhitelisted("bob@notpartner.org"))
	require.False(t, g.IsEmailWhitelisted("eve@example.com"))
	require.False(t, g.IsEmailWhitelisted("not-an-email.edu"))

	empty := service.NewGuard(domain.Settings{}, nil)
	require.False(t, empty.IsEmailWhitelisted("ada@utexas.edu"))
}

func TestGuardSnapshotIsCopied(t *testing.T) {
	s := domain.Settings{WhitelistedEmails: []string{".edu"}}
	g := service.NewGuard(s, nil)

	s.WhitelistedEmails[0] = ".com"
	require.True(t, g.IsEmailWhitelisted("ada@utexas.edu"))

	snap := g.Settings()
	snap.WhitelistedEmails[0] = ".com"
	require.True(t, g.IsEmailWhitelisted("ada@utexas.edu"))
}

func TestGuardConfirmBy(t *testing.T) {
	g := service.NewGuard(domain.Settings{}, nil)
	require.Nil(t, g.ConfirmBy())

	deadline := start.Add(72 * time.Hour)
	g.Set(domain.Settings{TimeConfirm: deadline})
	require.NotNil(t, g.ConfirmBy())
	require.True(t, g.ConfirmBy().Equal(deadline))
}
