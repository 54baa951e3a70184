package regsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ListUsersParams filters an admin listing. Size 0 returns export keys only.
type ListUsersParams struct {
	Page            int
	Size            int
	Text            string
	ResumeOnly      bool
	USStudentOnly   bool
	GraduationTimes []string
	Skills          []string
}

func (p ListUsersParams) values() url.Values {
	v := url.Values{
		"page": {strconv.Itoa(p.Page)},
		"size": {strconv.Itoa(p.Size)},
	}
	if p.Text != "" {
		v.Set("text", p.Text)
	}
	if p.ResumeOnly {
		v.Set("resume", "true")
	}
	if p.USStudentOnly {
		v.Set("usStudent", "true")
	}
	if len(p.GraduationTimes) > 0 {
		v.Set("graduationTimes", strings.Join(p.GraduationTimes, ","))
	}
	if len(p.Skills) > 0 {
		v.Set("skills", strings.Join(p.Skills, ","))
	}
	return v
}

// ListUsers pages through users. Requires admin.
func (s *Session) ListUsers(ctx context.Context, p ListUsersParams) (*PageResponse, error) {
	return s.page(ctx, "/v1/admin/users?"+p.values().Encode())
}

// ListSponsors pages through sponsor accounts. Requires admin.
func (s *Session) ListSponsors(ctx context.Context, p ListUsersParams) (*PageResponse, error) {
	return s.page(ctx, "/v1/admin/sponsors?"+p.values().Encode())
}

func (s *Session) page(ctx context.Context, path string) (*PageResponse, error) {
	resp, err := s.client.doJSON(ctx, http.MethodGet, path, s.token, nil)
	if err != nil {
		return nil, err
	}

	var page PageResponse
	if err := decodeJSON(resp, &page, http.StatusOK); err != nil {
		return nil, err
	}
	return &page, nil
}

// Stats returns lifecycle counts. Requires admin.
func (s *Session) Stats(ctx context.Context) (*Stats, error) {
	resp, err := s.client.doJSON(ctx, http.MethodGet, "/v1/admin/stats", s.token, nil)
	if err != nil {
		return nil, err
	}

	var stats Stats
	if err := decodeJSON(resp, &stats, http.StatusOK); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Session) Admit(ctx context.Context, id string) (*User, error) {
	return s.userCall(ctx, http.MethodPost, "/v1/admin/users/"+id+"/admit", nil)
}

func (s *Session) Defer(ctx context.Context, id string) (*User, error) {
	return s.userCall(ctx, http.MethodPost, "/v1/admin/users/"+id+"/defer", nil)
}

func (s *Session) CheckIn(ctx context.Context, id string) (*User, error) {
	return s.userCall(ctx, http.MethodPost, "/v1/admin/users/"+id+"/checkin", nil)
}

func (s *Session) CheckOut(ctx context.Context, id string) (*User, error) {
	return s.userCall(ctx, http.MethodPost, "/v1/admin/users/"+id+"/checkout", nil)
}

// MarkMeal records that a user received meal ("lunch" or "dinner").
func (s *Session) MarkMeal(ctx context.Context, id, meal string) (*User, error) {
	return s.userCall(ctx, http.MethodPost, "/v1/admin/users/"+id+"/meals/"+url.PathEscape(meal), nil)
}

func (s *Session) SetAdmin(ctx context.Context, id string, admin bool) (*User, error) {
	return s.userCall(ctx, http.MethodPut, "/v1/admin/users/"+id+"/admin", AdminFlagRequest{Admin: admin})
}

// ProvisionSponsor creates a sponsor account; its password is emailed.
func (s *Session) ProvisionSponsor(ctx context.Context, email string) (*User, error) {
	return s.created(ctx, "/v1/admin/sponsors", email)
}

// ProvisionWalkIn creates an account for an on-site registrant.
func (s *Session) ProvisionWalkIn(ctx context.Context, email string) (*User, error) {
	return s.created(ctx, "/v1/admin/walkins", email)
}

func (s *Session) created(ctx context.Context, path, email string) (*User, error) {
	resp, err := s.client.doJSON(ctx, http.MethodPost, path, s.token, EmailRequest{Email: email})
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusCreated); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) GrantResumeAccess(ctx context.Context, sponsorID string) (*User, error) {
	return s.userCall(ctx, http.MethodPut, "/v1/admin/sponsors/"+sponsorID+"/resume-access", nil)
}

func (s *Session) RevokeResumeAccess(ctx context.Context, sponsorID string) (*User, error) {
	return s.userCall(ctx, http.MethodDelete, "/v1/admin/sponsors/"+sponsorID+"/resume-access", nil)
}

// ============================================================================
// Settings
// ============================================================================

func (s *Session) settingsCall(ctx context.Context, path string, body any) (*Settings, error) {
	resp, err := s.client.doJSON(ctx, http.MethodPut, "/v1/admin/settings/"+path, s.token, body)
	if err != nil {
		return nil, err
	}

	var st Settings
	if err := decodeJSON(resp, &st, http.StatusOK); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Session) SetRegistrationTimes(ctx context.Context, open, closeAt time.Time) (*Settings, error) {
	return s.settingsCall(ctx, "times", RegistrationTimesRequest{TimeOpen: open, TimeClose: closeAt})
}

// SetConfirmBy sets the deadline stamped on later admissions. The zero time clears it.
func (s *Session) SetConfirmBy(ctx context.Context, t time.Time) (*Settings, error) {
	return s.settingsCall(ctx, "confirm-by", TimeRequest{Time: t})
}

func (s *Session) SetWhitelist(ctx context.Context, suffixes []string) (*Settings, error) {
	return s.settingsCall(ctx, "whitelist", WhitelistRequest{Emails: suffixes})
}

func (s *Session) SetTexts(ctx context.Context, texts TextsRequest) (*Settings, error) {
	return s.settingsCall(ctx, "texts", texts)
}
