package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
	"github.com/aussiebroadwan/hackreg/pkg/cryptox"
	"github.com/aussiebroadwan/hackreg/pkg/idx"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
)

const sponsorPasswordLength = 15

const msgNotSponsor = "User is not a sponsor."

// SponsorService runs the sponsor access workflow:
// incomplete -> completedProfile <-> grantedResumeAccess.
type SponsorService struct {
	Store    store.Store
	Guard    *Guard
	Notifier Notifier
}

// Provision creates a verified sponsor account with a generated password
// and mails the credentials.
func (s *SponsorService) Provision(ctx context.Context, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if !domain.IsEmail(email) {
		return domain.User{}, newError(KindValidation, "Invalid email.")
	}

	password, err := cryptox.GeneratePassword(sponsorPasswordLength)
	if err != nil {
		return domain.User{}, err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.Guard.Now()
	u := domain.User{
		ID:            idx.NewAt(now).String(),
		Email:         email,
		PasswordHash:  hash,
		Sponsor:       true,
		Verified:      true,
		CreatedAt:     now,
		LastUpdated:   now,
		SponsorFields: domain.SponsorFields{Status: domain.SponsorIncomplete},
	}
	if err := s.Store.Users().Create(ctx, u); err != nil {
		return domain.User{}, storeError(err)
	}

	logNotifyFailure(ctx, "sponsor_credentials", email, s.Notifier.SendSponsorCredentials(ctx, email, password))
	slogx.FromContext(ctx).Info("sponsor provisioned", slog.String("user_id", u.ID))
	return u, nil
}

// SubmitProfile stores the sponsor's company details. Resubmitting never
// takes away resume access that was already granted.
func (s *SponsorService) SubmitProfile(ctx context.Context, id string, f domain.SponsorFields) (domain.User, error) {
	if err := f.Validate(); err != nil {
		return domain.User{}, wrapError(KindValidation, "Invalid sponsor profile.", err)
	}

	u, err := s.Store.Users().UpdateSponsorFields(ctx, id, f)
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, newError(KindAuthorization, msgNotSponsor)
	}
	return u, storeError(err)
}

// GrantResumeAccess lets a sponsor read attendee resumes. It applies from
// any current status.
func (s *SponsorService) GrantResumeAccess(ctx context.Context, id string) (domain.User, error) {
	return s.setStatus(ctx, id, domain.SponsorGrantedResumeAccess)
}

// RevokeResumeAccess moves a sponsor back to completedProfile.
func (s *SponsorService) RevokeResumeAccess(ctx context.Context, id string) (domain.User, error) {
	return s.setStatus(ctx, id, domain.SponsorCompletedProfile)
}

func (s *SponsorService) setStatus(ctx context.Context, id string, status domain.SponsorStatus) (domain.User, error) {
	u, err := s.Store.Users().SetSponsorStatus(ctx, id, status)
	if errors.Is(err, store.ErrPreconditionFailed) {
		return domain.User{}, newError(KindAuthorization, msgNotSponsor)
	}
	if err != nil {
		return domain.User{}, storeError(err)
	}

	slogx.FromContext(ctx).Info("sponsor status changed",
		slog.String("user_id", u.ID),
		slog.String("status", string(status)),
	)
	return u, nil
}
