package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/hackreg/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func staticAuth(tokens map[string]httpx.Principal) httpx.Authenticator {
	return httpx.AuthenticatorFunc(func(_ context.Context, token string) (httpx.Principal, error) {
		p, ok := tokens[token]
		if !ok {
			return httpx.Principal{}, errors.New("unknown token")
		}
		return p, nil
	})
}

func TestAuthnAndRoles(t *testing.T) {
	auth := staticAuth(map[string]httpx.Principal{
		"admin-token": {UserID: "a1", Roles: []string{"admin"}},
		"user-token":  {UserID: "u1"},
	})

	var seen string
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpx.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}), httpx.AuthnMiddleware(auth), httpx.RequireAnyRole("admin", "sponsor"))

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := call("")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")

	require.Equal(t, http.StatusUnauthorized, call("Bearer nope").Code)
	require.Equal(t, http.StatusUnauthorized, call("Basic abc").Code)

	rec = call("Bearer user-token")
	require.Equal(t, http.StatusForbidden, rec.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "insufficient_scope", body.Error)

	require.Equal(t, http.StatusNoContent, call("bearer admin-token").Code)
	require.Equal(t, "a1", seen)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
	req.Header.Set("Content-Type", "application/json")
	require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &dst))
	require.Equal(t, "a@b.co", dst.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{} {}`))
	require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`email=x`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &dst))
}
