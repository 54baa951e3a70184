//go:build e2e

package registration_test

import (
	"testing"

	"github.com/aussiebroadwan/hackreg/pkg/regsdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupRegistrationContainer(t)
	defer cleanup()

	client := regsdk.NewClient(baseURL)

	t.Run("liveness", func(t *testing.T) {
		health, err := client.GetLiveness(t.Context())
		assertHealthy(t, health, err)
		require.NotEmpty(t, health.Uptime)
	})

	t.Run("readiness", func(t *testing.T) {
		health, err := client.GetReadiness(t.Context())
		assertHealthy(t, health, err)
	})

	t.Run("public settings", func(t *testing.T) {
		settings, err := client.GetSettings(t.Context())
		require.NoError(t, err)
		require.Contains(t, settings.WhitelistedEmails, ".edu")
	})
}
