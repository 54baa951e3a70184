package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
)

// CheckIn marks a verified user as present.
func (s *AdmissionService) CheckIn(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().SetCheckedIn(ctx, id, true, s.Guard.Now())
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, newError(KindAuthorization, msgNotVerified)
	}
	if err != nil {
		return domain.User{}, storeError(err)
	}

	s.Metrics.IncCheckIn()
	slogx.FromContext(ctx).Info("user checked in", slog.String("user_id", u.ID))
	return u, nil
}

// CheckOut clears the checked-in flag and keeps the last check-in time.
func (s *AdmissionService) CheckOut(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().SetCheckedIn(ctx, id, false, s.Guard.Now())
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, newError(KindAuthorization, msgNotVerified)
	}
	return u, storeError(err)
}

// MarkMeal records that a user collected meal. Concurrent calls for the
// same user and meal succeed exactly once.
func (s *AdmissionService) MarkMeal(ctx context.Context, id string, meal domain.Meal) (domain.User, error) {
	if !meal.Valid() {
		return domain.User{}, newError(KindValidation, fmt.Sprintf("Unknown meal %q.", meal))
	}

	u, err := s.Store.Users().MarkMeal(ctx, id, meal)
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, s.explain(ctx, id, func(u domain.User) error {
			if !u.Verified {
				return newError(KindAuthorization, msgNotVerified)
			}
			return newError(KindConflict, fmt.Sprintf("User has already received %s.", meal))
		})
	}
	if err != nil {
		return domain.User{}, storeError(err)
	}

	s.Metrics.IncMealServed(string(meal))
	return u, nil
}

// MarkReceivedLunch is MarkMeal for lunch.
func (s *AdmissionService) MarkReceivedLunch(ctx context.Context, id string) (domain.User, error) {
	return s.MarkMeal(ctx, id, domain.MealLunch)
}

// MarkReceivedDinner is MarkMeal for dinner.
func (s *AdmissionService) MarkReceivedDinner(ctx context.Context, id string) (domain.User, error) {
	return s.MarkMeal(ctx, id, domain.MealDinner)
}

// IssueDiscordToken exchanges an auth token for a Discord linking token.
func (s *AdmissionService) IssueDiscordToken(ctx context.Context, authToken string) (string, error) {
	id, err := s.Tokens.VerifyAuth(authToken)
	if err != nil {
		return "", err
	}
	if _, err := s.Store.Users().GetByID(ctx, id); err != nil {
		return "", storeError(err)
	}
	return s.Tokens.IssueDiscord(id)
}

// LinkDiscord attaches a Discord account to the user named by discordToken
// and checks them in.
func (s *AdmissionService) LinkDiscord(ctx context.Context, discordToken, discordID string) (domain.User, error) {
	if discordToken == "" || discordID == "" {
		return domain.User{}, newError(KindValidation, "A Discord token and user id are required.")
	}

	id, err := s.Tokens.VerifyDiscord(discordToken)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.Store.Users().LinkDiscord(ctx, id, discordID, s.Guard.Now())
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, s.explain(ctx, id, func(u domain.User) error {
			if !u.Verified {
				return newError(KindAuthorization, msgNotVerified)
			}
			return newError(KindConflict, "This account is already linked to Discord.")
		})
	}
	if err != nil {
		return domain.User{}, storeError(err)
	}

	s.Metrics.IncDiscordLink()
	s.Metrics.IncCheckIn()
	slogx.FromContext(ctx).Info("discord linked", slog.String("user_id", u.ID), slog.String("discord_id", discordID))
	return u, nil
}

// ResetDiscord unlinks Discord so the user can link again.
func (s *AdmissionService) ResetDiscord(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().ResetDiscord(ctx, id)
	return u, storeError(err)
}

// AddWorkshopAttended records that a user attended sponsorID's workshop.
// Sponsors only see the attendee's id and profile.
func (s *AdmissionService) AddWorkshopAttended(ctx context.Context, id, sponsorID string) (domain.SponsorView, error) {
	u, err := s.Store.Users().AddWorkshopAttended(ctx, id, sponsorID)
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.SponsorView{}, newError(KindAuthorization, msgNotVerified)
	}
	if err != nil {
		return domain.SponsorView{}, storeError(err)
	}
	return u.AsSponsorView(), nil
}

// AddTableVisited records that a user visited sponsorID's table.
func (s *AdmissionService) AddTableVisited(ctx context.Context, id, sponsorID string) (domain.SponsorView, error) {
	u, err := s.Store.Users().AddTableVisited(ctx, id, sponsorID)
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.SponsorView{}, newError(KindAuthorization, msgNotVerified)
	}
	if err != nil {
		return domain.SponsorView{}, storeError(err)
	}
	return u.AsSponsorView(), nil
}
