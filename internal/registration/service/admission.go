package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/metrics"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
	"github.com/aussiebroadwan/hackreg/pkg/cryptox"
	"github.com/aussiebroadwan/hackreg/pkg/idx"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
)

// AdmissionService owns the per-user lifecycle from registration through
// check-in. Every transition is one conditional update in the store; when the
// guard does not hold the record is read again to explain why.
type AdmissionService struct {
	Store    store.Store
	Tokens   *Tokens
	Guard    *Guard
	Notifier Notifier
	Blobs    BlobStore
	Metrics  *metrics.Metrics
}

// Session is a freshly issued auth token and the user it belongs to.
type Session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Register creates an unverified account and emails a verification link.
func (s *AdmissionService) Register(ctx context.Context, email, password string) (Session, error) {
	log := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	if len(password) < MinPasswordLength {
		return Session{}, newError(KindValidation, msgShortPassword)
	}
	if err := s.Guard.checkRegistrationOpen(); err != nil {
		return Session{}, err
	}
	if !domain.IsEmail(email) {
		return Session{}, newError(KindValidation, "Invalid email.")
	}
	if !s.Guard.IsEmailWhitelisted(email) {
		log.Warn("registration rejected, email not whitelisted", slog.String("email", email))
		return Session{}, newError(KindAuthorization, "Not a valid educational email.")
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return Session{}, err
	}

	now := s.Guard.Now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		LastUpdated:  now,
	}
	if err := s.Store.Users().Create(ctx, u); err != nil {
		return Session{}, storeError(err)
	}

	token, err := s.Tokens.IssueAuth(u.ID)
	if err != nil {
		return Session{}, err
	}
	verification, err := s.Tokens.IssueEmail(u.Email)
	if err != nil {
		return Session{}, err
	}
	logNotifyFailure(ctx, "verification", u.Email, s.Notifier.SendVerificationEmail(ctx, u.Email, verification))

	s.Metrics.IncRegistration()
	log.Info("user registered", slog.String("user_id", u.ID))

	return Session{Token: token, User: u}, nil
}

// VerifyEmail marks the account named by an email verification token.
func (s *AdmissionService) VerifyEmail(ctx context.Context, token string) (domain.User, error) {
	email, err := s.Tokens.VerifyEmail(token)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.Store.Users().MarkVerified(ctx, email)
	if err != nil {
		return domain.User{}, storeError(err)
	}

	s.Metrics.IncVerification()
	slogx.FromContext(ctx).Info("email verified", slog.String("user_id", u.ID))
	return u, nil
}

// GetUser returns the record with id.
func (s *AdmissionService) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetByID(ctx, id)
	return u, storeError(err)
}

// UpdateProfile validates and stores p. Once a profile has been submitted,
// blank incoming fields keep their earlier values and the merged result is
// what gets validated.
func (s *AdmissionService) UpdateProfile(ctx context.Context, id string, p domain.Profile) (domain.User, error) {
	users := s.Store.Users()
	current, err := users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, storeError(err)
	}
	if !current.Verified {
		return domain.User{}, newError(KindAuthorization, msgNotVerified)
	}
	if current.Status.CompletedProfile {
		p = p.MergeOnto(current.Profile)
	}
	if err := p.Validate(); err != nil {
		return domain.User{}, wrapError(KindValidation, "Invalid profile.", err)
	}

	u, err := users.UpdateProfile(ctx, id, p, s.Guard.Now(), &current.LastUpdated)
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, s.explain(ctx, id, func(u domain.User) error {
			if !u.Verified {
				return newError(KindAuthorization, msgNotVerified)
			}
			return newError(KindConflict, "Your profile was changed by another request, please try again.")
		})
	}
	if err != nil {
		return domain.User{}, storeError(err)
	}
	return u, nil
}

// Admit admits a verified user and stamps the current confirm-by deadline.
func (s *AdmissionService) Admit(ctx context.Context, id, adminEmail string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().Admit(ctx, id, adminEmail, s.Guard.ConfirmBy())
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, newError(KindAuthorization, msgNotVerified)
	}
	if err != nil {
		return domain.User{}, storeError(err)
	}

	logNotifyFailure(ctx, "acceptance", u.Email, s.Notifier.SendAcceptanceEmail(ctx, u.Email, u.Status.ConfirmBy))

	s.Metrics.IncAdmission()
	log.Info("user admitted", slog.String("user_id", u.ID), slog.String("admitted_by", adminEmail))
	return u, nil
}

// UpdateConfirmation stores the logistics of an admitted user. Users who have
// already confirmed may edit them after the deadline.
func (s *AdmissionService) UpdateConfirmation(ctx context.Context, id string, c domain.Confirmation) (domain.User, error) {
	if err := c.Validate(); err != nil {
		return domain.User{}, wrapError(KindValidation, "Invalid confirmation.", err)
	}

	u, err := s.Store.Users().UpdateConfirmation(ctx, id, c, s.Guard.Now())
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, s.explain(ctx, id, func(u domain.User) error {
			if !u.Verified || !u.Status.Admitted || u.Status.Declined {
				return newError(KindAuthorization, "You can only confirm an admission you have not declined.")
			}
			return newError(KindDeadlineExceeded, "You've missed the confirmation deadline.")
		})
	}
	if err != nil {
		return domain.User{}, storeError(err)
	}

	s.Metrics.IncConfirmation()
	return u, nil
}

// Decline gives up an admission. It is terminal.
func (s *AdmissionService) Decline(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().Decline(ctx, id, s.Guard.Now())
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, s.explain(ctx, id, func(u domain.User) error {
			if u.Status.Declined {
				return newError(KindConflict, "You've already declined.")
			}
			return newError(KindAuthorization, "You can only decline an admission.")
		})
	}
	if err != nil {
		return domain.User{}, storeError(err)
	}

	s.Metrics.IncDecline()
	slogx.FromContext(ctx).Info("admission declined", slog.String("user_id", u.ID))
	return u, nil
}

// Defer tells a verified applicant they have been deferred. Nothing is stored.
func (s *AdmissionService) Defer(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return domain.User{}, storeError(err)
	}
	if !u.Verified {
		return domain.User{}, newError(KindAuthorization, msgNotVerified)
	}

	logNotifyFailure(ctx, "deferred", u.Email, s.Notifier.SendDeferredEmail(ctx, u.Email))
	return u, nil
}

// SendConfirmationReminder re-stamps the confirm-by deadline of a confirmed
// user from the current settings.
func (s *AdmissionService) SendConfirmationReminder(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().RestampConfirmBy(ctx, id, s.Guard.ConfirmBy())
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, newError(KindAuthorization, "User has not confirmed.")
	}
	return u, storeError(err)
}

// SendApplicationReminder nudges an address to finish its application.
func (s *AdmissionService) SendApplicationReminder(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if !domain.IsEmail(email) {
		return newError(KindValidation, "Invalid email.")
	}
	logNotifyFailure(ctx, "application_reminder", email, s.Notifier.SendApplicationReminder(ctx, email))
	return nil
}

// SetAdmin grants or removes admin rights on a verified user.
func (s *AdmissionService) SetAdmin(ctx context.Context, id string, admin bool) (domain.User, error) {
	u, err := s.Store.Users().SetAdmin(ctx, id, admin)
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, newError(KindAuthorization, msgNotVerified)
	}
	if err != nil {
		return domain.User{}, storeError(err)
	}

	slogx.FromContext(ctx).Info("admin flag changed", slog.String("user_id", u.ID), slog.Bool("admin", admin))
	return u, nil
}

// MarkReimbursementGiven records that an admitted user was reimbursed.
func (s *AdmissionService) MarkReimbursementGiven(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().MarkReimbursementGiven(ctx, id)
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, newError(KindAuthorization, "User is not admitted.")
	}
	return u, storeError(err)
}

// explain re-reads id after a failed guard and lets classify pick the error.
func (s *AdmissionService) explain(ctx context.Context, id string, classify func(domain.User) error) error {
	return explainFailure(ctx, s.Store, id, classify)
}

func explainFailure(ctx context.Context, st store.Store, id string, classify func(domain.User) error) error {
	u, err := st.Users().GetByID(ctx, id)
	if err != nil {
		return storeError(err)
	}
	return classify(u)
}

func requireText(v, msg string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", newError(KindValidation, msg)
	}
	return v, nil
}
