package service_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/stretchr/testify/require"
)

func TestJoinOrCreate(t *testing.T) {
	f := newFixture(t)

	members := make([]domain.User, 5)
	for i := range members {
		members[i] = f.user(t, fmt.Sprintf("m%d@example.edu", i))
	}

	for _, m := range members[:4] {
		got, err := f.teams.JoinOrCreate(f.ctx, m.ID, "  rockets ")
		require.NoError(t, err)
		require.Equal(t, "rockets", got.TeamCode)
	}

	_, err := f.teams.JoinOrCreate(f.ctx, members[4].ID, "rockets")
	requireKind(t, err, service.KindConflict, "Team is full.")

	// Re-joining the same team does not count the member twice.
	_, err = f.teams.JoinOrCreate(f.ctx, members[0].ID, "rockets")
	require.NoError(t, err)

	_, err = f.teams.Leave(f.ctx, members[0].ID)
	require.NoError(t, err)
	_, err = f.teams.JoinOrCreate(f.ctx, members[4].ID, "rockets")
	require.NoError(t, err)

	mates, err := f.teams.Teammates(f.ctx, members[4].ID)
	require.NoError(t, err)
	require.Len(t, mates, 4)
	for _, m := range mates {
		require.NotEqual(t, members[0].ID, m.ID)
	}

	_, err = f.teams.Teammates(f.ctx, members[0].ID)
	requireKind(t, err, service.KindAuthorization, "You're not on a team.")
}

func TestJoinOrCreateValidation(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "solo@example.edu")

	_, err := f.teams.JoinOrCreate(f.ctx, u.ID, "   ")
	requireKind(t, err, service.KindValidation, "Please enter a team name.")

	_, err = f.teams.JoinOrCreate(f.ctx, u.ID, strings.Repeat("x", 141))
	requireKind(t, err, service.KindValidation, "Team name is too long.")

	newbie := f.user(t, "newbie@example.edu", unverified)
	_, err = f.teams.JoinOrCreate(f.ctx, newbie.ID, "rockets")
	requireKind(t, err, service.KindAuthorization, "")
}

// The fixture store holds one connection; the multi-connection case is
// covered by the sqlite driver tests.
func TestJoinOrCreateRace(t *testing.T) {
	f := newFixture(t)

	const joiners = 20
	users := make([]domain.User, joiners)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("r%d@example.edu", i))
	}

	var (
		wg     sync.WaitGroup
		joined atomic.Int32
		full   atomic.Int32
	)
	for _, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.teams.JoinOrCreate(f.ctx, u.ID, "crowded")
			switch {
			case err == nil:
				joined.Add(1)
			case errors.Is(err, service.ErrConflict):
				full.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 4, joined.Load())
	require.EqualValues(t, joiners-4, full.Load())

	mates, err := f.store.Users().ListByTeam(f.ctx, "crowded")
	require.NoError(t, err)
	require.Len(t, mates, 4)
}
