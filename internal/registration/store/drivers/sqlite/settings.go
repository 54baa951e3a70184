package sqlite

import (
	"context"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
)

type settingsRepo struct {
	db DBTX
}

func (r *settingsRepo) Get(ctx context.Context) (domain.Settings, error) {
	var (
		s                                   domain.Settings
		open, closeAt, confirm, sponsorClose int64
		updated                             int64
		whitelist                           string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT time_open, time_close, time_confirm, time_close_sponsor, whitelisted_emails,
			waitlist_text, acceptance_text, confirmation_text, updated_at
		FROM settings WHERE id = 1`).Scan(
		&open, &closeAt, &confirm, &sponsorClose, &whitelist,
		&s.WaitlistText, &s.AcceptanceText, &s.ConfirmationText, &updated,
	)
	if err != nil {
		return domain.Settings{}, mapNotFound(err)
	}

	s.TimeOpen = fromMillis(open)
	s.TimeClose = fromMillis(closeAt)
	s.TimeConfirm = fromMillis(confirm)
	s.TimeCloseSponsor = fromMillis(sponsorClose)
	s.UpdatedAt = fromMillis(updated)
	if err := decodeJSON(whitelist, &s.WhitelistedEmails); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

// Put replaces the settings row and returns what was stored.
func (r *settingsRepo) Put(ctx context.Context, s domain.Settings) (domain.Settings, error) {
	if s.WhitelistedEmails == nil {
		s.WhitelistedEmails = []string{}
	}
	whitelist, err := encodeJSON(s.WhitelistedEmails)
	if err != nil {
		return domain.Settings{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, time_open, time_close, time_confirm, time_close_sponsor, whitelisted_emails,
			waitlist_text, acceptance_text, confirmation_text, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			time_open = excluded.time_open,
			time_close = excluded.time_close,
			time_confirm = excluded.time_confirm,
			time_close_sponsor = excluded.time_close_sponsor,
			whitelisted_emails = excluded.whitelisted_emails,
			waitlist_text = excluded.waitlist_text,
			acceptance_text = excluded.acceptance_text,
			confirmation_text = excluded.confirmation_text,
			updated_at = excluded.updated_at`,
		toMillis(s.TimeOpen), toMillis(s.TimeClose), toMillis(s.TimeConfirm), toMillis(s.TimeCloseSponsor),
		whitelist, s.WaitlistText, s.AcceptanceText, s.ConfirmationText, toMillis(s.UpdatedAt),
	)
	if err != nil {
		return domain.Settings{}, err
	}
	return r.Get(ctx)
}
