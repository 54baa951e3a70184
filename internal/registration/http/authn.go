package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/pkg/httpx"
)

// authenticator resolves auth tokens against the stored record, so role
// changes apply to tokens that were already issued.
func authenticator(accounts *service.AccountService) httpx.AuthenticatorFunc {
	return func(ctx context.Context, token string) (httpx.Principal, error) {
		u, err := accounts.LoginWithToken(ctx, token)
		if err != nil {
			return httpx.Principal{}, err
		}
		return httpx.Principal{UserID: u.ID, Roles: u.Roles()}, nil
	}
}

// selfOrAdmin reports whether the caller may act on the {id} in the path.
func selfOrAdmin(r *http.Request) (string, bool) {
	id := r.PathValue("id")
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		return id, false
	}
	return id, p.UserID == id || p.HasRole(domain.RoleAdmin)
}

// self reports whether {id} in the path is the caller.
func self(r *http.Request) (string, bool) {
	id := r.PathValue("id")
	return id, id != "" && id == httpx.UserIDFromContext(r.Context())
}

// bearer returns the raw token of an authenticated request.
func bearer(r *http.Request) string {
	token, _ := httpx.BearerToken(r)
	return token
}
