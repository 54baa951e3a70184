package http

import (
	"net/http"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/pkg/httpx"
	"github.com/aussiebroadwan/hackreg/pkg/regsdk"
)

// userBody is a user record plus its derived status.
type userBody struct {
	domain.User
	StatusName domain.StatusName `json:"statusName"`
}

func userJSON(u domain.User) userBody {
	return userBody{User: u, StatusName: u.StatusName()}
}

type sessionBody struct {
	Token string   `json:"token"`
	User  userBody `json:"user"`
}

// AuthHandler serves account creation, login and password endpoints.
type AuthHandler struct {
	Admission *service.AdmissionService
	Accounts  *service.AccountService
}

// HandleRegister handles POST /v1/auth/register
//
//	@Summary		Register
//	@Description	Creates an unverified account while registration is open and emails a verification link.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		regsdk.CredentialsRequest	true	"email and password"
//	@Success		201		{object}	regsdk.SessionResponse		"auth token and user"
//	@Failure		400		{object}	regsdk.ErrorResponse		"invalid email or short password"
//	@Failure		403		{object}	regsdk.ErrorResponse		"registration closed or email not whitelisted"
//	@Failure		409		{object}	regsdk.ErrorResponse		"email already registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req regsdk.CredentialsRequest
	if !decode(w, r, &req) {
		return
	}

	s, err := h.Admission.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, sessionBody{Token: s.Token, User: userJSON(s.User)})
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Login
//	@Description	Exchanges email and password for an auth token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		regsdk.CredentialsRequest	true	"email and password"
//	@Success		200		{object}	regsdk.SessionResponse		"auth token and user"
//	@Failure		400		{object}	regsdk.ErrorResponse		"missing password or invalid email"
//	@Failure		401		{object}	regsdk.ErrorResponse		"unknown email or wrong password"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req regsdk.CredentialsRequest
	if !decode(w, r, &req) {
		return
	}

	s, err := h.Accounts.LoginWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionBody{Token: s.Token, User: userJSON(s.User)})
}

// HandleMe handles GET /v1/auth/me
//
//	@Summary		Current user
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	regsdk.User				"the caller"
//	@Failure		401	{object}	regsdk.ErrorResponse	"missing or invalid token"
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.Admission.GetUser(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}

// HandleVerify handles POST /v1/auth/verify/{token}
//
//	@Summary		Verify email
//	@Tags			Auth
//	@Produce		json
//	@Param			token	path		string					true	"email verification token"
//	@Success		200		{object}	regsdk.User				"verified user"
//	@Failure		401		{object}	regsdk.ErrorResponse	"invalid or expired token"
//	@Failure		404		{object}	regsdk.ErrorResponse	"account not found"
//	@Router			/v1/auth/verify/{token} [post].
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	u, err := h.Admission.VerifyEmail(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}

// HandleResendVerification handles POST /v1/auth/verify/resend
//
//	@Summary		Resend verification email
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204
//	@Failure		409	{object}	regsdk.ErrorResponse	"already verified"
//	@Router			/v1/auth/verify/resend [post].
func (h *AuthHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	if err := h.Accounts.ResendVerification(r.Context(), httpx.UserIDFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSendReset handles POST /v1/auth/reset/send
//
//	@Summary		Send password reset
//	@Description	Emails a reset link. Unknown addresses are accepted silently.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	regsdk.EmailRequest	true	"email"
//	@Success		204
//	@Router			/v1/auth/reset/send [post].
func (h *AuthHandler) HandleSendReset(w http.ResponseWriter, r *http.Request) {
	var req regsdk.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Accounts.SendPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReset handles POST /v1/auth/reset
//
//	@Summary		Reset password
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	regsdk.ResetPasswordRequest	true	"reset token and new password"
//	@Success		204
//	@Failure		400	{object}	regsdk.ErrorResponse	"short password"
//	@Failure		401	{object}	regsdk.ErrorResponse	"invalid or expired token"
//	@Router			/v1/auth/reset [post].
func (h *AuthHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req regsdk.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Accounts.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChangePassword handles PUT /v1/auth/password
//
//	@Summary		Change password
//	@Tags			Auth
//	@Accept			json
//	@Security		BearerAuth
//	@Param			request	body	regsdk.ChangePasswordRequest	true	"old and new password"
//	@Success		204
//	@Failure		400	{object}	regsdk.ErrorResponse	"short password"
//	@Failure		401	{object}	regsdk.ErrorResponse	"wrong old password"
//	@Router			/v1/auth/password [put].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req regsdk.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.Accounts.ChangePassword(r.Context(), httpx.UserIDFromContext(r.Context()), req.OldPassword, req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCompleteWalkIn handles POST /v1/auth/walkin
//
//	@Summary		Complete walk-in account
//	@Description	Verifies a walk-in account with the emailed token and sets its password.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		regsdk.ResetPasswordRequest	true	"email token and new password"
//	@Success		200		{object}	regsdk.User					"verified user"
//	@Failure		400		{object}	regsdk.ErrorResponse		"short password"
//	@Failure		401		{object}	regsdk.ErrorResponse		"invalid token"
//	@Router			/v1/auth/walkin [post].
func (h *AuthHandler) HandleCompleteWalkIn(w http.ResponseWriter, r *http.Request) {
	var req regsdk.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Accounts.CompleteWalkIn(r.Context(), req.Token, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}
