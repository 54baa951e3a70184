package regsdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Session is an authenticated caller. Tokens do not refresh; log in again
// once the server starts answering 401.
type Session struct {
	client *Client
	token  string
	user   User
}

// Token returns the bearer token.
func (s *Session) Token() string { return s.token }

// User returns the record returned when the session was created. It is empty
// for sessions built with NewSession.
func (s *Session) User() User { return s.user }

func (s *Session) userCall(ctx context.Context, method, path string, body any) (*User, error) {
	resp, err := s.client.doJSON(ctx, method, path, s.token, body)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) noContent(ctx context.Context, method, path string, body any) error {
	resp, err := s.client.doJSON(ctx, method, path, s.token, body)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ============================================================================
// Account
// ============================================================================

// Me returns the caller's record.
func (s *Session) Me(ctx context.Context) (*User, error) {
	return s.userCall(ctx, http.MethodGet, "/v1/auth/me", nil)
}

// GetUser returns a record. Only admins may read other users.
func (s *Session) GetUser(ctx context.Context, id string) (*User, error) {
	return s.userCall(ctx, http.MethodGet, "/v1/users/"+id, nil)
}

// ResendVerification emails a new verification link.
func (s *Session) ResendVerification(ctx context.Context) error {
	return s.noContent(ctx, http.MethodPost, "/v1/auth/verify/resend", nil)
}

// ChangePassword replaces the caller's password.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return s.noContent(ctx, http.MethodPut, "/v1/auth/password",
		ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword})
}

// ============================================================================
// Application
// ============================================================================

// UpdateProfile submits the application profile. Any JSON-encodable value
// with the profile fields is accepted.
func (s *Session) UpdateProfile(ctx context.Context, id string, profile any) (*User, error) {
	return s.userCall(ctx, http.MethodPut, "/v1/users/"+id+"/profile", profile)
}

// Confirm submits the confirmation form of an admitted user.
func (s *Session) Confirm(ctx context.Context, id string, confirmation any) (*User, error) {
	return s.userCall(ctx, http.MethodPut, "/v1/users/"+id+"/confirm", confirmation)
}

// Decline gives up an admission.
func (s *Session) Decline(ctx context.Context, id string) (*User, error) {
	return s.userCall(ctx, http.MethodPost, "/v1/users/"+id+"/decline", nil)
}

// UploadResume stores a PDF resume.
func (s *Session) UploadResume(ctx context.Context, id string, pdf []byte) error {
	resp, err := s.client.doRequest(ctx, http.MethodPut, "/v1/users/"+id+"/resume", s.token,
		bytes.NewReader(pdf), map[string]string{"Content-Type": "application/pdf"})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// GetResume downloads a resume the caller may read.
func (s *Session) GetResume(ctx context.Context, id string) ([]byte, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/v1/users/"+id+"/resume", s.token, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp, body)
	}
	return body, nil
}

// ============================================================================
// Teams and Discord
// ============================================================================

// JoinTeam joins the team with code, creating it if nobody holds it yet.
func (s *Session) JoinTeam(ctx context.Context, id, code string) (*User, error) {
	return s.userCall(ctx, http.MethodPut, "/v1/users/"+id+"/team", TeamRequest{Code: code})
}

// LeaveTeam clears the caller's team.
func (s *Session) LeaveTeam(ctx context.Context, id string) (*User, error) {
	return s.userCall(ctx, http.MethodDelete, "/v1/users/"+id+"/team", nil)
}

// Teammates lists the members of the caller's team, the caller included.
func (s *Session) Teammates(ctx context.Context, id string) ([]Teammate, error) {
	resp, err := s.client.doJSON(ctx, http.MethodGet, "/v1/users/"+id+"/team", s.token, nil)
	if err != nil {
		return nil, err
	}

	var tr TeammatesResponse
	if err := decodeJSON(resp, &tr, http.StatusOK); err != nil {
		return nil, err
	}
	return tr.Teammates, nil
}

// DiscordToken issues the token a user pastes into the Discord bot.
func (s *Session) DiscordToken(ctx context.Context, id string) (string, error) {
	resp, err := s.client.doJSON(ctx, http.MethodPost, "/v1/users/"+id+"/discord/token", s.token, nil)
	if err != nil {
		return "", err
	}

	var dr DiscordTokenResponse
	if err := decodeJSON(resp, &dr, http.StatusOK); err != nil {
		return "", err
	}
	return dr.Token, nil
}
