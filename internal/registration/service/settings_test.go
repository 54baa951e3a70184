package service_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/stretchr/testify/require"
)

func TestSettingsUpdatesReachTheGuard(t *testing.T) {
	f := newFixture(t)

	saved, err := f.settings.UpdateWhitelistedEmails(f.ctx, []string{" .EDU ", "", "@partner.org"})
	require.NoError(t, err)
	require.Equal(t, []string{".edu", "@partner.org"}, saved.WhitelistedEmails)
	require.True(t, saved.UpdatedAt.Equal(start))
	require.True(t, f.guard.IsEmailWhitelisted("rep@partner.org"))

	_, err = f.settings.UpdateRegistrationTimes(f.ctx, start.Add(time.Hour), start)
	requireKind(t, err, service.KindValidation, "")

	_, err = f.settings.UpdateRegistrationTimes(f.ctx, start.Add(time.Hour), start.Add(2*time.Hour))
	require.NoError(t, err)
	require.False(t, f.guard.IsRegistrationOpen())

	_, err = f.settings.UpdateConfirmBy(f.ctx, start.Add(72*time.Hour))
	require.NoError(t, err)
	require.True(t, f.guard.ConfirmBy().Equal(start.Add(72*time.Hour)))

	_, err = f.settings.UpdateConfirmBy(f.ctx, time.Time{})
	require.NoError(t, err)
	require.Nil(t, f.guard.ConfirmBy())

	_, err = f.settings.UpdateSponsorClose(f.ctx, start.Add(96*time.Hour))
	require.NoError(t, err)

	_, err = f.settings.UpdateTexts(f.ctx, domain.Texts{Waitlist: "hang tight", Acceptance: "welcome"})
	require.NoError(t, err)

	// A fresh guard reloaded from the store sees the same row.
	fresh := service.NewGuard(domain.Settings{}, f.clock.Now)
	require.NoError(t, fresh.Reload(f.ctx, f.store.Settings()))

	got := fresh.Settings()
	require.Equal(t, "hang tight", got.WaitlistText)
	require.Equal(t, "welcome", got.AcceptanceText)
	require.True(t, got.TimeCloseSponsor.Equal(start.Add(96*time.Hour)))
	require.True(t, got.TimeOpen.Equal(start.Add(time.Hour)))
	require.Equal(t, []string{".edu", "@partner.org"}, got.WhitelistedEmails)
}
