package regsdk

import (
	"context"
	"net/http"
)

// SubmitSponsorProfile stores the caller's company details. Requires a
// sponsor account.
func (s *Session) SubmitSponsorProfile(ctx context.Context, fields any) (*User, error) {
	return s.userCall(ctx, http.MethodPut, "/v1/sponsor/profile", fields)
}

// RecordWorkshop marks that attendee id came to the caller's workshop.
func (s *Session) RecordWorkshop(ctx context.Context, id string) (*SponsorView, error) {
	return s.sponsorView(ctx, "/v1/sponsor/users/"+id+"/workshop")
}

// RecordTableVisit marks that attendee id visited the caller's table.
func (s *Session) RecordTableVisit(ctx context.Context, id string) (*SponsorView, error) {
	return s.sponsorView(ctx, "/v1/sponsor/users/"+id+"/table")
}

func (s *Session) sponsorView(ctx context.Context, path string) (*SponsorView, error) {
	resp, err := s.client.doJSON(ctx, http.MethodPost, path, s.token, nil)
	if err != nil {
		return nil, err
	}

	var v SponsorView
	if err := decodeJSON(resp, &v, http.StatusOK); err != nil {
		return nil, err
	}
	return &v, nil
}
