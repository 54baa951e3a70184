package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/blob"
	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	reghttp "github.com/aussiebroadwan/hackreg/internal/registration/http"
	"github.com/aussiebroadwan/hackreg/internal/registration/metrics"
	"github.com/aussiebroadwan/hackreg/internal/registration/notify"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/internal/registration/store/drivers/sqlite"
	"github.com/aussiebroadwan/hackreg/pkg/httpx"
	"github.com/aussiebroadwan/hackreg/pkg/regsdk"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@hq.org"
	adminPassword = "admin-password"
)

type server struct {
	URL    string
	tokens *service.Tokens
}

func newServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	tokens, err := service.NewTokens(service.TokenConfig{
		AuthSecret:    []byte("auth-secret"),
		EmailSecret:   []byte("email-secret"),
		ResetSecret:   []byte("reset-secret"),
		DiscordSecret: []byte("discord-secret"),
	})
	require.NoError(t, err)

	guard := service.NewGuard(domain.Settings{}, nil)
	require.NoError(t, guard.Reload(ctx, st.Settings()))

	reg := prometheus.NewRegistry()
	m := metrics.NewWith(reg)
	n := notify.NewLog("http://localhost:3000")

	accounts := &service.AccountService{Store: st, Tokens: tokens, Guard: guard, Notifier: n, Metrics: m}
	seeded, err := accounts.EnsureAdmin(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	require.True(t, seeded)

	limits := httpx.DefaultLimits()
	for _, l := range []*httpx.RateLimitConfig{&limits.Strict, &limits.Moderate, &limits.Lenient, &limits.Public} {
		l.RequestsPerWindow, l.Burst = 10000, 10000
	}

	r := reghttp.NewRouter("test", st, limits, slogx.Discard())
	r.AccountService = accounts
	r.AdmissionService = &service.AdmissionService{
		Store: st, Tokens: tokens, Guard: guard, Notifier: n, Blobs: blob.NewMemory(), Metrics: m,
	}
	r.TeamService = &service.TeamService{Store: st, MaxSize: 4, Metrics: m}
	r.SponsorService = &service.SponsorService{Store: st, Guard: guard, Notifier: n}
	r.QueryService = &service.QueryService{Store: st}
	r.SettingsService = &service.SettingsService{Store: st, Guard: guard}
	r.StatsService = &service.StatsService{Store: st}
	r.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	r.ApplyRoutes()

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &server{URL: ts.URL, tokens: tokens}
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (s *server) do(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, s.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *server) login(t *testing.T, email, password string) regsdk.SessionResponse {
	t.Helper()
	var session regsdk.SessionResponse
	resp := s.do(t, http.MethodPost, "/v1/auth/login", "", regsdk.CredentialsRequest{Email: email, Password: password}, &session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, session.Token)
	return session
}

// applicant registers, verifies and submits a profile.
func (s *server) applicant(t *testing.T, email string) regsdk.SessionResponse {
	t.Helper()

	var session regsdk.SessionResponse
	resp := s.do(t, http.MethodPost, "/v1/auth/register", "", regsdk.CredentialsRequest{Email: email, Password: "secret1"}, &session)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	verification, err := s.tokens.IssueEmail(email)
	require.NoError(t, err)
	resp = s.do(t, http.MethodPost, "/v1/auth/verify/"+verification, "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var u regsdk.User
	resp = s.do(t, http.MethodPut, "/v1/users/"+session.User.ID+"/profile", session.Token, profile("Ada"), &u)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "submitted", u.StatusName)

	session.User = u
	return session
}

func profile(name string) domain.Profile {
	return domain.Profile{
		Name:           name,
		FirstName:      name,
		LastName:       "Tester",
		School:         "State University",
		GraduationTime: domain.GraduationTimes[0],
		Gender:         domain.Genders[0],
		Resume:         true,
		Adult:          true,
		Skills:         []string{"go"},
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	var live regsdk.HealthResponse
	resp := s.do(t, http.MethodGet, "/livez", "", nil, &live)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", live.Status)
	assert.Equal(t, "test", live.Version)

	var ready regsdk.HealthResponse
	resp = s.do(t, http.MethodGet, "/readyz", "", nil, &ready)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, ready.Checks)
	assert.Equal(t, "ok", ready.Checks.Database)
}

func TestApplicantLifecycle(t *testing.T) {
	s := newServer(t)
	ada := s.applicant(t, "ada@uni.edu")
	admin := s.login(t, adminEmail, adminPassword)

	var u regsdk.User
	resp := s.do(t, http.MethodPost, "/v1/admin/users/"+ada.User.ID+"/admit", admin.Token, nil, &u)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admitted", u.StatusName)

	resp = s.do(t, http.MethodPut, "/v1/users/"+ada.User.ID+"/confirm", ada.Token,
		domain.Confirmation{ShirtSize: "M", SignatureLiability: "Ada"}, &u)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "confirmed", u.StatusName)

	resp = s.do(t, http.MethodPost, "/v1/admin/users/"+ada.User.ID+"/checkin", admin.Token, nil, &u)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "checked in", u.StatusName)

	resp = s.do(t, http.MethodPost, "/v1/admin/users/"+ada.User.ID+"/meals/lunch", admin.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var e regsdk.ErrorResponse
	resp = s.do(t, http.MethodPost, "/v1/admin/users/"+ada.User.ID+"/meals/lunch", admin.Token, nil, &e)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, regsdk.ErrorCodeConflict, e.Error)

	var me regsdk.User
	resp = s.do(t, http.MethodGet, "/v1/auth/me", ada.Token, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ada.User.ID, me.ID)
	assert.Equal(t, "checked in", me.StatusName)
}

func TestRegisterErrors(t *testing.T) {
	s := newServer(t)

	cases := []struct {
		name   string
		email  string
		pass   string
		status int
		code   string
	}{
		{"short password", "bob@uni.edu", "abc", http.StatusBadRequest, regsdk.ErrorCodeValidation},
		{"not whitelisted", "bob@gmail.com", "secret1", http.StatusForbidden, regsdk.ErrorCodeAuthorization},
		{"invalid email", "bob.edu", "secret1", http.StatusBadRequest, regsdk.ErrorCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var e regsdk.ErrorResponse
			resp := s.do(t, http.MethodPost, "/v1/auth/register", "",
				regsdk.CredentialsRequest{Email: tc.email, Password: tc.pass}, &e)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, e.Error)
			assert.NotEmpty(t, e.ErrorDescription)
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		body := regsdk.CredentialsRequest{Email: "dup@uni.edu", Password: "secret1"}
		resp := s.do(t, http.MethodPost, "/v1/auth/register", "", body, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var e regsdk.ErrorResponse
		resp = s.do(t, http.MethodPost, "/v1/auth/register", "", body, &e)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, regsdk.ErrorCodeConflict, e.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(s.URL+"/v1/auth/register", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLoginErrors(t *testing.T) {
	s := newServer(t)

	var e regsdk.ErrorResponse
	resp := s.do(t, http.MethodPost, "/v1/auth/login", "",
		regsdk.CredentialsRequest{Email: adminEmail, Password: "wrong-password"}, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, regsdk.ErrorCodeAuthentication, e.Error)
}

func TestAccessControl(t *testing.T) {
	s := newServer(t)
	ada := s.applicant(t, "ada@uni.edu")
	bob := s.applicant(t, "bob@uni.edu")
	admin := s.login(t, adminEmail, adminPassword)

	t.Run("missing token", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/v1/auth/me", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/v1/auth/me", "not-a-token", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("other users record", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/v1/users/"+bob.User.ID, ada.Token, nil, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = s.do(t, http.MethodPut, "/v1/users/"+bob.User.ID+"/profile", ada.Token, profile("Mallory"), nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin reads any record", func(t *testing.T) {
		var u regsdk.User
		resp := s.do(t, http.MethodGet, "/v1/users/"+bob.User.ID, admin.Token, nil, &u)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "bob@uni.edu", u.Email)
	})

	t.Run("admin routes", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/v1/admin/users", ada.Token, nil, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = s.do(t, http.MethodPost, "/v1/admin/users/"+bob.User.ID+"/admit", ada.Token, nil, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("sponsor routes", func(t *testing.T) {
		resp := s.do(t, http.MethodPut, "/v1/sponsor/profile", ada.Token, domain.SponsorFields{}, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("promotion applies to existing tokens", func(t *testing.T) {
		resp := s.do(t, http.MethodPut, "/v1/admin/users/"+ada.User.ID+"/admin", admin.Token,
			regsdk.AdminFlagRequest{Admin: true}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = s.do(t, http.MethodGet, "/v1/admin/stats", ada.Token, nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestAdminListing(t *testing.T) {
	s := newServer(t)
	s.applicant(t, "ada@uni.edu")
	s.applicant(t, "bob@uni.edu")
	admin := s.login(t, adminEmail, adminPassword)

	var page regsdk.PageResponse
	resp := s.do(t, http.MethodGet, "/v1/admin/users?page=0&size=1&text=uni.edu", admin.Token, nil, &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, page.Users, 1)
	assert.Equal(t, 2, page.TotalPages)

	var keys regsdk.PageResponse
	resp = s.do(t, http.MethodGet, "/v1/admin/users?size=0&text=uni.edu", admin.Token, nil, &keys)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, keys.Keys, 2)
	assert.Empty(t, keys.Users)

	resp = s.do(t, http.MethodGet, "/v1/admin/users?page=-1&size=10", admin.Token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var stats regsdk.Stats
	resp = s.do(t, http.MethodGet, "/v1/admin/stats", admin.Token, nil, &stats)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTeams(t *testing.T) {
	s := newServer(t)
	ada := s.applicant(t, "ada@uni.edu")
	bob := s.applicant(t, "bob@uni.edu")

	for _, session := range []regsdk.SessionResponse{ada, bob} {
		var u regsdk.User
		resp := s.do(t, http.MethodPut, "/v1/users/"+session.User.ID+"/team", session.Token, regsdk.TeamRequest{Code: "gophers"}, &u)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "gophers", u.TeamCode)
	}

	var mates regsdk.TeammatesResponse
	resp := s.do(t, http.MethodGet, "/v1/users/"+ada.User.ID+"/team", ada.Token, nil, &mates)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, mates.Teammates, 2)

	resp = s.do(t, http.MethodDelete, "/v1/users/"+bob.User.ID+"/team", bob.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/v1/users/"+ada.User.ID+"/team", ada.Token, regsdk.TeamRequest{Code: ""}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResumeUpload(t *testing.T) {
	s := newServer(t)
	ada := s.applicant(t, "ada@uni.edu")
	admin := s.login(t, adminEmail, adminPassword)

	pdf := []byte("%PDF-1.4 resume")
	req, err := http.NewRequest(http.MethodPut, s.URL+"/v1/users/"+ada.User.ID+"/resume", bytes.NewReader(pdf))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ada.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	req, err = http.NewRequest(http.MethodGet, s.URL+"/v1/users/"+ada.User.ID+"/resume", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+admin.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestSponsorFlow(t *testing.T) {
	s := newServer(t)
	ada := s.applicant(t, "ada@uni.edu")
	admin := s.login(t, adminEmail, adminPassword)

	var sponsor regsdk.User
	resp := s.do(t, http.MethodPost, "/v1/admin/sponsors", admin.Token, regsdk.EmailRequest{Email: "acme@corp.com"}, &sponsor)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, sponsor.Sponsor)

	resp = s.do(t, http.MethodPut, "/v1/admin/sponsors/"+sponsor.ID+"/resume-access", admin.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Sponsor passwords only go out by email, so mint a session directly.
	token, err := s.tokens.IssueAuth(sponsor.ID)
	require.NoError(t, err)

	var view regsdk.SponsorView
	resp = s.do(t, http.MethodPost, "/v1/sponsor/users/"+ada.User.ID+"/workshop", token, nil, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ada.User.ID, view.ID)

	var listing struct {
		Users []regsdk.SponsorView `json:"users"`
	}
	resp = s.do(t, http.MethodGet, "/v1/sponsor/users?size=10", token, nil, &listing)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listing.Users, 1)

	resp = s.do(t, http.MethodDelete, "/v1/admin/sponsors/"+sponsor.ID+"/resume-access", admin.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/v1/sponsor/users?size=10", token, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSettings(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, adminEmail, adminPassword)

	var settings regsdk.Settings
	resp := s.do(t, http.MethodGet, "/v1/settings", "", nil, &settings)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{".edu"}, settings.WhitelistedEmails)

	now := time.Now().UTC()
	resp = s.do(t, http.MethodPut, "/v1/admin/settings/times", admin.Token,
		regsdk.RegistrationTimesRequest{TimeOpen: now.Add(time.Hour), TimeClose: now}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/v1/admin/settings/times", admin.Token,
		regsdk.RegistrationTimesRequest{TimeOpen: now.Add(-2 * time.Hour), TimeClose: now.Add(-time.Hour)}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var e regsdk.ErrorResponse
	resp = s.do(t, http.MethodPost, "/v1/auth/register", "",
		regsdk.CredentialsRequest{Email: "late@uni.edu", Password: "secret1"}, &e)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, regsdk.ErrorCodeDeadlineExceeded, e.Error)
	assert.Equal(t, "Sorry, registration is closed.", e.ErrorDescription)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.applicant(t, "ada@uni.edu")

	resp, err := http.Get(s.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hackreg_registrations_total 1")
	assert.Contains(t, string(body), "hackreg_email_verifications_total 1")
}
