package regsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientLoginAndSession(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorCodeAuthentication, ErrorDescription: "Wrong password"})
			return
		}
		_ = json.NewEncoder(w).Encode(SessionResponse{Token: "tok", User: User{ID: "u1", Email: req.Email}})
	})
	mux.HandleFunc("PUT /v1/users/{id}/team", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req TeamRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(User{ID: r.PathValue("id"), TeamCode: req.Code})
	})
	mux.HandleFunc("GET /v1/admin/users", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "0", r.URL.Query().Get("size"))
		require.Equal(t, "go,rust", r.URL.Query().Get("skills"))
		_ = json.NewEncoder(w).Encode(PageResponse{Keys: []string{"u1_Lovelace_Ada"}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL + "/")
	require.Equal(t, srv.URL, client.BaseURL)

	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.Login(ctx, "ada@uni.edu", "nope")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, ErrorCodeAuthentication, apiErr.Code)
		require.Equal(t, "Wrong password", apiErr.Description)
	})

	session, err := client.Login(ctx, "ada@uni.edu", "secret1")
	require.NoError(t, err)
	require.Equal(t, "tok", session.Token())
	require.Equal(t, "u1", session.User().ID)

	u, err := session.JoinTeam(ctx, "u1", "rockets")
	require.NoError(t, err)
	require.Equal(t, "rockets", u.TeamCode)

	page, err := session.ListUsers(ctx, ListUsersParams{Skills: []string{"go", "rust"}})
	require.NoError(t, err)
	require.Equal(t, []string{"u1_Lovelace_Ada"}, page.Keys)
}

func TestParseErrorResponseWithoutBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL).GetLiveness(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}

func TestNoContentCalls(t *testing.T) {
	t.Parallel()

	var got ResetPasswordRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/reset", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	require.NoError(t, NewClient(srv.URL).ResetPassword(context.Background(), "reset-token", "new-secret"))
	require.Equal(t, ResetPasswordRequest{Token: "reset-token", Password: "new-secret"}, got)
}
