package service_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/metrics"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingReloadsSettings(t *testing.T) {
	f := newFixture(t)

	// Edit the row behind the guard's back.
	s, err := f.store.Settings().Get(f.ctx)
	require.NoError(t, err)
	s.WhitelistedEmails = []string{".ac.uk"}
	_, err = f.store.Settings().Put(f.ctx, s)
	require.NoError(t, err)
	require.False(t, f.guard.IsEmailWhitelisted("ada@ox.ac.uk"))

	f.user(t, "a@uni.edu")
	f.user(t, "b@uni.edu", unverified)

	m := metrics.NewWith(prometheus.NewRegistry())
	hk := service.NewHousekeepingService(f.store, f.guard, m, slogx.Discard(), 0)
	require.Equal(t, time.Minute, hk.Interval)

	hk.RunOnce(f.ctx)

	require.True(t, f.guard.IsEmailWhitelisted("ada@ox.ac.uk"))

	var pb dto.Metric
	require.NoError(t, m.Users.WithLabelValues("total").Write(&pb))
	require.Equal(t, 2.0, pb.GetGauge().GetValue())
	require.NoError(t, m.Users.WithLabelValues("verified").Write(&pb))
	require.Equal(t, 1.0, pb.GetGauge().GetValue())
}

func TestHousekeepingStartStop(t *testing.T) {
	f := newFixture(t)
	hk := service.NewHousekeepingService(f.store, f.guard, nil, slogx.Discard(), time.Hour)

	f.guard.Set(domain.Settings{})
	hk.Start()
	require.Eventually(t, func() bool {
		return len(f.guard.Settings().WhitelistedEmails) == 1
	}, time.Second, 10*time.Millisecond)
	hk.Stop()
}
