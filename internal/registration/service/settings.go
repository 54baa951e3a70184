package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
)

// SettingsService edits the settings row and keeps the guard in step with it.
type SettingsService struct {
	Store store.Store
	Guard *Guard
}

func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	return s.Store.Settings().Get(ctx)
}

func (s *SettingsService) UpdateRegistrationTimes(ctx context.Context, openAt, closeAt time.Time) (domain.Settings, error) {
	if openAt.After(closeAt) {
		return domain.Settings{}, newError(KindValidation, "Registration must open before it closes.")
	}
	return s.update(ctx, "registration_times", func(st *domain.Settings) {
		st.TimeOpen = openAt.UTC()
		st.TimeClose = closeAt.UTC()
	})
}

// UpdateConfirmBy changes the deadline stamped on future admissions. A zero
// time removes the deadline.
func (s *SettingsService) UpdateConfirmBy(ctx context.Context, t time.Time) (domain.Settings, error) {
	return s.update(ctx, "confirm_by", func(st *domain.Settings) { st.TimeConfirm = t.UTC() })
}

func (s *SettingsService) UpdateSponsorClose(ctx context.Context, t time.Time) (domain.Settings, error) {
	return s.update(ctx, "sponsor_close", func(st *domain.Settings) { st.TimeCloseSponsor = t.UTC() })
}

// UpdateWhitelistedEmails replaces the accepted email suffixes.
func (s *SettingsService) UpdateWhitelistedEmails(ctx context.Context, suffixes []string) (domain.Settings, error) {
	clean := make([]string, 0, len(suffixes))
	for _, v := range cleanList(suffixes) {
		clean = append(clean, strings.ToLower(v))
	}
	return s.update(ctx, "whitelisted_emails", func(st *domain.Settings) { st.WhitelistedEmails = clean })
}

func (s *SettingsService) UpdateTexts(ctx context.Context, t domain.Texts) (domain.Settings, error) {
	return s.update(ctx, "texts", func(st *domain.Settings) {
		st.WaitlistText = t.Waitlist
		st.AcceptanceText = t.Acceptance
		st.ConfirmationText = t.Confirmation
	})
}

// update applies mutate to the stored row in one transaction, then publishes
// the result to the guard.
func (s *SettingsService) update(ctx context.Context, what string, mutate func(*domain.Settings)) (domain.Settings, error) {
	var saved domain.Settings
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Settings().Get(ctx)
		if err != nil {
			return err
		}
		mutate(&current)
		current.UpdatedAt = s.Guard.Now()

		saved, err = tx.Settings().Put(ctx, current)
		return err
	})
	if err != nil {
		return domain.Settings{}, err
	}

	s.Guard.Set(saved)
	slogx.FromContext(ctx).Info("settings updated", slog.String("field", what))
	return saved, nil
}
