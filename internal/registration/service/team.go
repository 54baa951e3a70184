package service

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/metrics"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
)

const (
	DefaultMaxTeamSize = 4
	maxTeamCodeLength  = 140
)

// TeamService manages team membership. A team is every record sharing a
// team code; there is no team entity to create or delete.
type TeamService struct {
	Store   store.Store
	MaxSize int
	Metrics *metrics.Metrics
}

func (s *TeamService) maxSize() int {
	if s.MaxSize > 0 {
		return s.MaxSize
	}
	return DefaultMaxTeamSize
}

// JoinOrCreate puts id on the team with code. The member count and the
// write are a single store operation, so racing joins cannot overfill a team.
func (s *TeamService) JoinOrCreate(ctx context.Context, id, code string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	code, err := requireText(code, "Please enter a team name.")
	if err != nil {
		return domain.User{}, err
	}
	if utf8.RuneCountInString(code) > maxTeamCodeLength {
		return domain.User{}, newError(KindValidation, "Team name is too long.")
	}

	u, err := s.Store.Users().JoinTeam(ctx, id, code, s.maxSize())
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, explainFailure(ctx, s.Store, id, func(u domain.User) error {
			if !u.Verified {
				return newError(KindAuthorization, msgNotVerified)
			}
			s.Metrics.IncTeamFull()
			log.Info("team join rejected, team full", slog.String("user_id", id), slog.String("team", code))
			return newError(KindConflict, "Team is full.")
		})
	}
	if err != nil {
		return domain.User{}, storeError(err)
	}

	s.Metrics.IncTeamJoin()
	return u, nil
}

// Leave clears the team code of id.
func (s *TeamService) Leave(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().LeaveTeam(ctx, id)
	return u, storeError(err)
}

// Teammates lists everyone on id's team, id included.
func (s *TeamService) Teammates(ctx context.Context, id string) ([]domain.Teammate, error) {
	u, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if u.TeamCode == "" {
		return nil, newError(KindAuthorization, "You're not on a team.")
	}

	members, err := s.Store.Users().ListByTeam(ctx, u.TeamCode)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Teammate, 0, len(members))
	for _, m := range members {
		out = append(out, m.AsTeammate())
	}
	return out, nil
}
