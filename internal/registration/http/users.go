package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/pkg/httpx"
	"github.com/aussiebroadwan/hackreg/pkg/regsdk"
)

// UserHandler serves the attendee's own record: profile, confirmation,
// team, resume and Discord linking.
type UserHandler struct {
	Admission *service.AdmissionService
	Teams     *service.TeamService
}

// HandleGet handles GET /v1/users/{id}
//
//	@Summary		Get user
//	@Description	Returns a user record to its owner or an admin.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"user id"
//	@Success		200	{object}	regsdk.User				"user"
//	@Failure		403	{object}	regsdk.ErrorResponse	"not the owner"
//	@Failure		404	{object}	regsdk.ErrorResponse	"no such user"
//	@Router			/v1/users/{id} [get].
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := selfOrAdmin(r)
	if !ok {
		writeForbidden(w, "You can only view your own record.")
		return
	}
	u, err := h.Admission.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}

// HandleUpdateProfile handles PUT /v1/users/{id}/profile
//
//	@Summary		Submit application profile
//	@Description	Validates and stores the profile. After the first submission blank fields keep their earlier values.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"user id"
//	@Param			request	body		object					true	"profile document"
//	@Success		200		{object}	regsdk.User				"updated user"
//	@Failure		400		{object}	regsdk.ErrorResponse	"error, error_description, fields"
//	@Failure		403		{object}	regsdk.ErrorResponse	"not verified"
//	@Failure		409		{object}	regsdk.ErrorResponse	"concurrent update"
//	@Router			/v1/users/{id}/profile [put].
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := self(r)
	if !ok {
		writeForbidden(w, "You can only edit your own profile.")
		return
	}
	var p domain.Profile
	if !decode(w, r, &p) {
		return
	}
	u, err := h.Admission.UpdateProfile(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}

// HandleConfirm handles PUT /v1/users/{id}/confirm
//
//	@Summary		Confirm attendance
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"user id"
//	@Param			request	body		object					true	"confirmation document"
//	@Success		200		{object}	regsdk.User				"updated user"
//	@Failure		400		{object}	regsdk.ErrorResponse	"invalid confirmation"
//	@Failure		403		{object}	regsdk.ErrorResponse	"not admitted, declined or past the deadline"
//	@Router			/v1/users/{id}/confirm [put].
func (h *UserHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := self(r)
	if !ok {
		writeForbidden(w, "You can only confirm your own admission.")
		return
	}
	var c domain.Confirmation
	if !decode(w, r, &c) {
		return
	}
	u, err := h.Admission.UpdateConfirmation(r.Context(), id, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}

// HandleDecline handles POST /v1/users/{id}/decline
//
//	@Summary		Decline admission
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"user id"
//	@Success		200	{object}	regsdk.User				"updated user"
//	@Failure		403	{object}	regsdk.ErrorResponse	"not admitted"
//	@Failure		409	{object}	regsdk.ErrorResponse	"already declined"
//	@Router			/v1/users/{id}/decline [post].
func (h *UserHandler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	id, ok := self(r)
	if !ok {
		writeForbidden(w, "You can only decline your own admission.")
		return
	}
	u, err := h.Admission.Decline(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}

// HandleJoinTeam handles PUT /v1/users/{id}/team
//
//	@Summary		Join or create a team
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"user id"
//	@Param			request	body		regsdk.TeamRequest		true	"team code"
//	@Success		200		{object}	regsdk.User				"updated user"
//	@Failure		400		{object}	regsdk.ErrorResponse	"empty or long team name"
//	@Failure		409		{object}	regsdk.ErrorResponse	"team is full"
//	@Router			/v1/users/{id}/team [put].
func (h *UserHandler) HandleJoinTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := self(r)
	if !ok {
		writeForbidden(w, "You can only change your own team.")
		return
	}
	var req regsdk.TeamRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Teams.JoinOrCreate(r.Context(), id, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}

// HandleLeaveTeam handles DELETE /v1/users/{id}/team
//
//	@Summary		Leave team
//	@Tags			Teams
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string		true	"user id"
//	@Success		200	{object}	regsdk.User	"updated user"
//	@Router			/v1/users/{id}/team [delete].
func (h *UserHandler) HandleLeaveTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := self(r)
	if !ok {
		writeForbidden(w, "You can only change your own team.")
		return
	}
	u, err := h.Teams.Leave(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}

// HandleTeammates handles GET /v1/users/{id}/team
//
//	@Summary		List teammates
//	@Tags			Teams
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"user id"
//	@Success		200	{object}	regsdk.TeammatesResponse	"members, caller included"
//	@Failure		403	{object}	regsdk.ErrorResponse		"not on a team"
//	@Router			/v1/users/{id}/team [get].
func (h *UserHandler) HandleTeammates(w http.ResponseWriter, r *http.Request) {
	id, ok := self(r)
	if !ok {
		writeForbidden(w, "You can only view your own team.")
		return
	}
	mates, err := h.Teams.Teammates(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"teammates": mates})
}

// HandleUploadResume handles PUT /v1/users/{id}/resume
//
//	@Summary		Upload resume
//	@Description	Stores the raw request body as the user's PDF resume.
//	@Tags			Users
//	@Accept			application/pdf
//	@Security		BearerAuth
//	@Param			id	path	string	true	"user id"
//	@Success		204
//	@Failure		400	{object}	regsdk.ErrorResponse	"not a PDF or too large"
//	@Router			/v1/users/{id}/resume [put].
func (h *UserHandler) HandleUploadResume(w http.ResponseWriter, r *http.Request) {
	id, ok := self(r)
	if !ok {
		writeForbidden(w, "You can only upload your own resume.")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, service.MaxResumeSize))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeBadRequest(w, "Resume is too large.")
		return
	}
	if err != nil {
		writeBadRequest(w, "Could not read the upload.")
		return
	}

	if err := h.Admission.UploadResume(r.Context(), id, data); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetResume handles GET /v1/users/{id}/resume
//
//	@Summary		Download resume
//	@Description	Readable by the owner, admins and sponsors with resume access.
//	@Tags			Users
//	@Produce		application/pdf
//	@Security		BearerAuth
//	@Param			id	path	string	true	"user id"
//	@Success		200
//	@Failure		403	{object}	regsdk.ErrorResponse	"no resume access"
//	@Failure		404	{object}	regsdk.ErrorResponse	"no resume uploaded"
//	@Router			/v1/users/{id}/resume [get].
func (h *UserHandler) HandleGetResume(w http.ResponseWriter, r *http.Request) {
	data, err := h.Admission.GetResume(r.Context(), httpx.UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleDiscordToken handles POST /v1/users/{id}/discord/token
//
//	@Summary		Issue Discord linking token
//	@Tags			Discord
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string						true	"user id"
//	@Success		200	{object}	regsdk.DiscordTokenResponse	"token to hand to the Discord bot"
//	@Router			/v1/users/{id}/discord/token [post].
func (h *UserHandler) HandleDiscordToken(w http.ResponseWriter, r *http.Request) {
	if _, ok := self(r); !ok {
		writeForbidden(w, "You can only link your own account.")
		return
	}
	token, err := h.Admission.IssueDiscordToken(r.Context(), bearer(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, regsdk.DiscordTokenResponse{Token: token})
}

// HandleLinkDiscord handles POST /v1/discord/link
//
//	@Summary		Link Discord account
//	@Description	Called by the Discord bot with a linking token. Linking also checks the user in.
//	@Tags			Discord
//	@Accept			json
//	@Produce		json
//	@Param			request	body		regsdk.DiscordLinkRequest	true	"linking token and Discord user id"
//	@Success		200		{object}	regsdk.User					"updated user"
//	@Failure		401		{object}	regsdk.ErrorResponse		"invalid token"
//	@Failure		409		{object}	regsdk.ErrorResponse		"already linked"
//	@Router			/v1/discord/link [post].
func (h *UserHandler) HandleLinkDiscord(w http.ResponseWriter, r *http.Request) {
	var req regsdk.DiscordLinkRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Admission.LinkDiscord(r.Context(), req.Token, req.DiscordID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}
