package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/blob"
	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/metrics"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/internal/registration/store/drivers/sqlite"
	"github.com/aussiebroadwan/hackreg/pkg/idx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) SendVerificationEmail(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

func (m *notifierMock) SendAcceptanceEmail(ctx context.Context, email string, confirmBy *time.Time) error {
	return m.Called(ctx, email, confirmBy).Error(0)
}

func (m *notifierMock) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

func (m *notifierMock) SendPasswordChangedEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *notifierMock) SendSponsorCredentials(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *notifierMock) SendDeferredEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *notifierMock) SendWalkInEmail(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

func (m *notifierMock) SendApplicationReminder(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// allowAll accepts any email not matched by an earlier expectation.
func (m *notifierMock) allowAll() {
	for _, method := range []struct {
		name  string
		nargs int
	}{
		{"SendVerificationEmail", 3},
		{"SendAcceptanceEmail", 3},
		{"SendPasswordResetEmail", 3},
		{"SendPasswordChangedEmail", 2},
		{"SendSponsorCredentials", 3},
		{"SendDeferredEmail", 2},
		{"SendWalkInEmail", 3},
		{"SendApplicationReminder", 2},
	} {
		args := make([]any, method.nargs)
		for i := range args {
			args[i] = mock.Anything
		}
		m.On(method.name, args...).Return(nil).Maybe()
	}
}

type fixture struct {
	ctx      context.Context
	store    *sqlite.Store
	clock    *clock
	tokens   *service.Tokens
	guard    *service.Guard
	notifier *notifierMock
	blobs    *blob.Memory

	admission *service.AdmissionService
	accounts  *service.AccountService
	teams     *service.TeamService
	sponsors  *service.SponsorService
	query     *service.QueryService
	settings  *service.SettingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clk := &clock{now: start}

	tokens, err := service.NewTokens(service.TokenConfig{
		AuthSecret:    []byte("auth-secret"),
		EmailSecret:   []byte("email-secret"),
		ResetSecret:   []byte("reset-secret"),
		DiscordSecret: []byte("discord-secret"),
		Now:           clk.Now,
	})
	require.NoError(t, err)

	guard := service.NewGuard(domain.Settings{}, clk.Now)
	require.NoError(t, guard.Reload(ctx, st.Settings()))

	n := &notifierMock{}
	t.Cleanup(func() { n.AssertExpectations(t) })

	m := metrics.NewWith(prometheus.NewRegistry())
	blobs := blob.NewMemory()

	return &fixture{
		ctx:      ctx,
		store:    st,
		clock:    clk,
		tokens:   tokens,
		guard:    guard,
		notifier: n,
		blobs:    blobs,
		admission: &service.AdmissionService{
			Store: st, Tokens: tokens, Guard: guard, Notifier: n, Blobs: blobs, Metrics: m,
		},
		accounts: &service.AccountService{
			Store: st, Tokens: tokens, Guard: guard, Notifier: n, Metrics: m, WalkInPassword: "walkin-temp",
		},
		teams:    &service.TeamService{Store: st, MaxSize: 4, Metrics: m},
		sponsors: &service.SponsorService{Store: st, Guard: guard, Notifier: n},
		query:    &service.QueryService{Store: st},
		settings: &service.SettingsService{Store: st, Guard: guard},
	}
}

// user inserts a record directly, verified unless mutate says otherwise.
func (f *fixture) user(t *testing.T, email string, mutate ...func(*domain.User)) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "unused",
		Verified:     true,
		CreatedAt:    f.clock.Now(),
		LastUpdated:  f.clock.Now(),
	}
	for _, m := range mutate {
		m(&u)
	}
	require.NoError(t, f.store.Users().Create(f.ctx, u))

	got, err := f.store.Users().GetByID(f.ctx, u.ID)
	require.NoError(t, err)
	return got
}

func unverified(u *domain.User) { u.Verified = false }

func sponsor(u *domain.User) {
	u.Sponsor = true
	u.SponsorFields.Status = domain.SponsorIncomplete
}

func requireKind(t *testing.T, err error, kind service.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, service.KindOf(err), "error: %v", err)

	if msg != "" {
		var se *service.Error
		require.ErrorAs(t, err, &se)
		require.Equal(t, msg, se.Msg)
	}
}

func validProfile(name string) domain.Profile {
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
