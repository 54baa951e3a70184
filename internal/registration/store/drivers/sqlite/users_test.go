package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
	"github.com/aussiebroadwan/hackreg/internal/registration/store/drivers/sqlite"
	"github.com/aussiebroadwan/hackreg/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	createUser(t, s, "Ada@Example.edu")

	err := s.Users().Create(ctx, domain.User{
		ID: idx.New().String(), Email: "ada@example.edu ", PasswordHash: "h", CreatedAt: epoch, LastUpdated: epoch,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.Users().GetByEmail(ctx, "ADA@example.edu")
	require.NoError(t, err)
	require.Equal(t, "ada@example.edu", got.Email)
	require.Equal(t, domain.SponsorIncomplete, got.SponsorFields.Status)
	require.True(t, got.CreatedAt.Equal(epoch))
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Users().GetByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetByEmail(ctx, "nobody@example.edu")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConditionalUpdateDistinguishesMissingFromGuard(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	unverified := createUser(t, s, "new@example.edu", func(u *domain.User) { u.Verified = false })

	_, err := s.Users().Admit(ctx, unverified.ID, "admin@example.edu", nil)
	require.ErrorIs(t, err, store.ErrPreconditionFailed)

	_, err = s.Users().Admit(ctx, idx.New().String(), "admin@example.edu", nil)
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Users().GetByID(ctx, unverified.ID)
	require.NoError(t, err)
	require.False(t, got.Status.Admitted)
}

func TestAdmissionTransitions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	users := s.Users()

	u := createUser(t, s, "grace@example.edu")
	deadline := epoch.Add(24 * time.Hour)

	u, err := users.Admit(ctx, u.ID, "admin@example.edu", &deadline)
	require.NoError(t, err)
	require.True(t, u.Status.Admitted)
	require.Equal(t, "admin@example.edu", u.Status.AdmittedBy)
	require.NotNil(t, u.Status.ConfirmBy)
	require.True(t, deadline.Equal(*u.Status.ConfirmBy))

	t.Run("confirmation after the deadline fails", func(t *testing.T) {
		_, err := users.UpdateConfirmation(ctx, u.ID, domain.Confirmation{ShirtSize: "M"}, deadline)
		require.ErrorIs(t, err, store.ErrPreconditionFailed)
	})

	t.Run("confirmation before the deadline succeeds", func(t *testing.T) {
		got, err := users.UpdateConfirmation(ctx, u.ID, domain.Confirmation{ShirtSize: "M"}, deadline.Add(-time.Minute))
		require.NoError(t, err)
		require.True(t, got.Status.Confirmed)
		require.Equal(t, "M", got.Confirmation.ShirtSize)
	})

	t.Run("confirmed users may edit after the deadline", func(t *testing.T) {
		got, err := users.UpdateConfirmation(ctx, u.ID, domain.Confirmation{ShirtSize: "L"}, deadline.Add(time.Hour))
		require.NoError(t, err)
		require.Equal(t, "L", got.Confirmation.ShirtSize)
	})

	t.Run("decline clears confirmed and is terminal", func(t *testing.T) {
		got, err := users.Decline(ctx, u.ID, deadline)
		require.NoError(t, err)
		require.True(t, got.Status.Declined)
		require.False(t, got.Status.Confirmed)
		require.Equal(t, domain.StatusDeclined, got.StatusName())

		_, err = users.Decline(ctx, u.ID, deadline)
		require.ErrorIs(t, err, store.ErrPreconditionFailed)

		_, err = users.UpdateConfirmation(ctx, u.ID, domain.Confirmation{}, deadline.Add(-time.Hour))
		require.ErrorIs(t, err, store.ErrPreconditionFailed)
	})
}

func TestUpdateProfileOptimisticGuard(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := createUser(t, s, "lin@example.edu")
	later := epoch.Add(time.Minute)

	got, err := s.Users().UpdateProfile(ctx, u.ID, domain.Profile{Name: "Lin"}, later, &u.LastUpdated)
	require.NoError(t, err)
	require.True(t, got.Status.CompletedProfile)
	require.True(t, got.LastUpdated.Equal(later))

	// A second writer holding the stale timestamp loses.
	_, err = s.Users().UpdateProfile(ctx, u.ID, domain.Profile{Name: "Other"}, later.Add(time.Minute), &u.LastUpdated)
	require.ErrorIs(t, err, store.ErrPreconditionFailed)

	got, err = s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Lin", got.Profile.Name)
}

func TestMarkMealIsExactlyOnceUnderContention(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := createUser(t, s, "hungry@example.edu")

	const callers = 16
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Users().MarkMeal(ctx, u.ID, domain.MealLunch)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, store.ErrPreconditionFailed):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, succeeded.Load())
	require.EqualValues(t, callers-1, rejected.Load())

	got, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.AtEvent.ReceivedLunch)
	require.False(t, got.AtEvent.ReceivedDinner)
}

func TestJoinTeamNeverExceedsCapacity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	const (
		maxSize = 4
		joiners = 12
	)
	ids := make([]string, joiners)
	for i := range ids {
		ids[i] = createUser(t, s, idx.New().String()+"@example.edu").ID
	}

	var (
		wg     sync.WaitGroup
		joined atomic.Int32
	)
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Users().JoinTeam(ctx, id, "rockets", maxSize); err == nil {
				joined.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, maxSize, joined.Load())

	members, err := s.Users().ListByTeam(ctx, "rockets")
	require.NoError(t, err)
	require.Len(t, members, maxSize)
}

// Each JoinTeam statement takes the write lock before it counts members, so
// the cap holds across connections and not only through the pool's single
// connection.
func TestJoinTeamCapacityAcrossConnections(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "teams.db")
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)", path)
	s, err := sqlite.NewStore(dsn, sqlite.WithMaxOpenConns(8))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	const (
		maxSize = 4
		joiners = 16
	)
	ids := make([]string, joiners)
	for i := range ids {
		ids[i] = createUser(t, s, idx.New().String()+"@example.edu").ID
	}

	var (
		wg       sync.WaitGroup
		joined   atomic.Int32
		rejected atomic.Int32
		start    = make(chan struct{})
	)
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.Users().JoinTeam(ctx, id, "comets", maxSize)
			switch {
			case err == nil:
				joined.Add(1)
			case errors.Is(err, store.ErrPreconditionFailed):
				rejected.Add(1)
			default:
				t.Errorf("join %s: %v", id, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.EqualValues(t, maxSize, joined.Load())
	require.EqualValues(t, joiners-maxSize, rejected.Load())

	members, err := s.Users().ListByTeam(ctx, "comets")
	require.NoError(t, err)
	require.Len(t, members, maxSize)
}

func TestNewStoreRejectsZeroConnections(t *testing.T) {
	_, err := sqlite.NewStore(":memory:", sqlite.WithMaxOpenConns(0))
	require.Error(t, err)
}

func TestJoinTeamRejoinAndLeave(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	users := s.Users()

	a := createUser(t, s, "a@example.edu")
	b := createUser(t, s, "b@example.edu")

	_, err := users.JoinTeam(ctx, a.ID, "duo", 1)
	require.NoError(t, err)

	// Re-joining the same team does not count the caller against the limit.
	_, err = users.JoinTeam(ctx, a.ID, "duo", 1)
	require.NoError(t, err)

	_, err = users.JoinTeam(ctx, b.ID, "duo", 1)
	require.ErrorIs(t, err, store.ErrPreconditionFailed)

	left, err := users.LeaveTeam(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, left.TeamCode)

	got, err := users.JoinTeam(ctx, b.ID, "duo", 1)
	require.NoError(t, err)
	require.Equal(t, "duo", got.TeamCode)
}

func TestAtEventSetsAreDeduplicated(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := createUser(t, s, "visitor@example.edu")
	sponsor := idx.New().String()

	_, err := s.Users().AddWorkshopAttended(ctx, u.ID, sponsor)
	require.NoError(t, err)
	got, err := s.Users().AddWorkshopAttended(ctx, u.ID, sponsor)
	require.NoError(t, err)
	require.Equal(t, []string{sponsor}, got.AtEvent.WorkshopsAttended)

	got, err = s.Users().AddTableVisited(ctx, u.ID, sponsor)
	require.NoError(t, err)
	require.Equal(t, []string{sponsor}, got.AtEvent.TablesVisited)
}

func TestDiscordLinkIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := createUser(t, s, "chat@example.edu")

	got, err := s.Users().LinkDiscord(ctx, u.ID, "1234", epoch)
	require.NoError(t, err)
	require.True(t, got.Discord.Verified)
	require.Equal(t, "1234", got.Discord.UserID)
	require.True(t, got.Status.CheckedIn)

	_, err = s.Users().LinkDiscord(ctx, u.ID, "5678", epoch)
	require.ErrorIs(t, err, store.ErrPreconditionFailed)

	_, err = s.Users().ResetDiscord(ctx, u.ID)
	require.NoError(t, err)

	got, err = s.Users().LinkDiscord(ctx, u.ID, "5678", epoch)
	require.NoError(t, err)
	require.Equal(t, "5678", got.Discord.UserID)
}

func TestSponsorFieldsKeepGrantedAccess(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	users := s.Users()

	sponsor := createUser(t, s, "corp@example.com", func(u *domain.User) { u.Sponsor = true })
	attendee := createUser(t, s, "student@example.edu")

	got, err := users.UpdateSponsorFields(ctx, sponsor.ID, domain.SponsorFields{CompanyName: "Acme"})
	require.NoError(t, err)
	require.Equal(t, domain.SponsorCompletedProfile, got.SponsorFields.Status)
	require.Equal(t, "Acme", got.SponsorFields.CompanyName)

	_, err = users.SetSponsorStatus(ctx, sponsor.ID, domain.SponsorGrantedResumeAccess)
	require.NoError(t, err)

	got, err = users.UpdateSponsorFields(ctx, sponsor.ID, domain.SponsorFields{CompanyName: "Acme Inc"})
	require.NoError(t, err)
	require.Equal(t, domain.SponsorGrantedResumeAccess, got.SponsorFields.Status)

	_, err = users.SetSponsorStatus(ctx, attendee.ID, domain.SponsorGrantedResumeAccess)
	require.ErrorIs(t, err, store.ErrPreconditionFailed)
}
