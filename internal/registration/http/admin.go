package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/pkg/httpx"
	"github.com/aussiebroadwan/hackreg/pkg/regsdk"
)

const defaultPageSize = 50

// AdminHandler serves the organiser endpoints. Every route is gated on the
// admin role.
type AdminHandler struct {
	Admission *service.AdmissionService
	Accounts  *service.AccountService
	Sponsors  *service.SponsorService
	Query     *service.QueryService
	Stats     *service.StatsService
}

// parsePageQuery reads page, size, text, graduationTimes, skills, resume and
// usStudent. List parameters may repeat or be comma separated.
func parsePageQuery(q url.Values) (service.PageQuery, error) {
	pq := service.PageQuery{Size: defaultPageSize, Text: q.Get("text")}

	var err error
	if v := q.Get("page"); v != "" {
		if pq.Page, err = strconv.Atoi(v); err != nil {
			return pq, err
		}
	}
	if v := q.Get("size"); v != "" {
		if pq.Size, err = strconv.Atoi(v); err != nil {
			return pq, err
		}
	}
	if v := q.Get("resume"); v != "" {
		if pq.ResumeOnly, err = strconv.ParseBool(v); err != nil {
			return pq, err
		}
	}
	if v := q.Get("usStudent"); v != "" {
		if pq.USStudentOnly, err = strconv.ParseBool(v); err != nil {
			return pq, err
		}
	}
	pq.GraduationTimes = splitList(q["graduationTimes"])
	pq.Skills = splitList(q["skills"])
	return pq, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

func pageJSON(p service.Page) map[string]any {
	body := map[string]any{
		"page":       p.Page,
		"size":       p.Size,
		"totalPages": p.TotalPages,
	}
	if p.Keys != nil {
		body["keys"] = p.Keys
		return body
	}
	users := make([]userBody, 0, len(p.Users))
	for _, u := range p.Users {
		users = append(users, userJSON(u))
	}
	body["users"] = users
	return body
}

// HandleListUsers handles GET /v1/admin/users
//
//	@Summary		List users
//	@Description	Pages through users matching the filters. size=0 returns every match as id_lastName_firstName keys.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page			query		int						false	"zero based page"
//	@Param			size			query		int						false	"page size, 0 for export keys"
//	@Param			text			query		string					false	"matches email, name, team or id"
//	@Param			graduationTimes	query		[]string				false	"graduation cohorts"
//	@Param			skills			query		[]string				false	"any of these skills"
//	@Param			resume			query		bool					false	"only users with a resume"
//	@Param			usStudent		query		bool					false	"only US students"
//	@Success		200				{object}	regsdk.PageResponse		"page"
//	@Failure		400				{object}	regsdk.ErrorResponse	"bad paging"
//	@Failure		403				{object}	regsdk.ErrorResponse	"not an admin"
//	@Router			/v1/admin/users [get].
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	q, err := parsePageQuery(r.URL.Query())
	if err != nil {
		writeBadRequest(w, "Invalid query parameters.")
		return
	}
	page, err := h.Query.Page(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageJSON(page))
}

// HandleListSponsors handles GET /v1/admin/sponsors
//
//	@Summary		List sponsors
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query		int					false	"zero based page"
//	@Param			size	query		int					false	"page size"
//	@Param			text	query		string				false	"matches email, name or id"
//	@Success		200		{object}	regsdk.PageResponse	"page"
//	@Router			/v1/admin/sponsors [get].
func (h *AdminHandler) HandleListSponsors(w http.ResponseWriter, r *http.Request) {
	q, err := parsePageQuery(r.URL.Query())
	if err != nil {
		writeBadRequest(w, "Invalid query parameters.")
		return
	}
	page, err := h.Query.SponsorPage(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageJSON(page))
}

// HandleStats handles GET /v1/admin/stats
//
//	@Summary		Aggregate counts
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	regsdk.Stats	"counts"
//	@Router			/v1/admin/stats [get].
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// userAction adapts an id-only admin transition to a handler.
func userAction(fn func(r *http.Request, id string) (domain.User, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := fn(r, r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, userJSON(u))
	}
}

func (h *AdminHandler) adminEmail(r *http.Request) string {
	u, err := h.Admission.GetUser(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		return httpx.UserIDFromContext(r.Context())
	}
	return u.Email
}

// HandleAdmit handles POST /v1/admin/users/{id}/admit
//
//	@Summary		Admit user
//	@Description	Admits a verified user and stamps the current confirmation deadline.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"user id"
//	@Success		200	{object}	regsdk.User				"updated user"
//	@Failure		403	{object}	regsdk.ErrorResponse	"user not verified"
//	@Router			/v1/admin/users/{id}/admit [post].
func (h *AdminHandler) HandleAdmit(w http.ResponseWriter, r *http.Request) {
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Admission.Admit(r.Context(), id, h.adminEmail(r))
	})(w, r)
}

// HandleDefer handles POST /v1/admin/users/{id}/defer
//
//	@Summary		Defer applicant
//	@Description	Emails the applicant that they were deferred. No state changes.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string		true	"user id"
//	@Success		200	{object}	regsdk.User	"user"
//	@Router			/v1/admin/users/{id}/defer [post].
func (h *AdminHandler) HandleDefer(w http.ResponseWriter, r *http.Request) {
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Admission.Defer(r.Context(), id)
	})(w, r)
}

// HandleCheckIn handles POST /v1/admin/users/{id}/checkin
//
//	@Summary		Check user in
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string		true	"user id"
//	@Success		200	{object}	regsdk.User	"updated user"
//	@Router			/v1/admin/users/{id}/checkin [post].
func (h *AdminHandler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Admission.CheckIn(r.Context(), id)
	})(w, r)
}

// HandleCheckOut handles POST /v1/admin/users/{id}/checkout
//
//	@Summary		Check user out
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string		true	"user id"
//	@Success		200	{object}	regsdk.User	"updated user"
//	@Router			/v1/admin/users/{id}/checkout [post].
func (h *AdminHandler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Admission.CheckOut(r.Context(), id)
	})(w, r)
}

// HandleMeal handles POST /v1/admin/users/{id}/meals/{meal}
//
//	@Summary		Record a meal
//	@Description	Succeeds once per user and meal.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"user id"
//	@Param			meal	path		string					true	"lunch or dinner"
//	@Success		200		{object}	regsdk.User				"updated user"
//	@Failure		409		{object}	regsdk.ErrorResponse	"meal already received"
//	@Router			/v1/admin/users/{id}/meals/{meal} [post].
func (h *AdminHandler) HandleMeal(w http.ResponseWriter, r *http.Request) {
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Admission.MarkMeal(r.Context(), id, domain.Meal(r.PathValue("meal")))
	})(w, r)
}

// HandleConfirmationReminder handles POST /v1/admin/users/{id}/reminder
//
//	@Summary		Restamp confirmation deadline
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string		true	"user id"
//	@Success		200	{object}	regsdk.User	"updated user"
//	@Router			/v1/admin/users/{id}/reminder [post].
func (h *AdminHandler) HandleConfirmationReminder(w http.ResponseWriter, r *http.Request) {
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Admission.SendConfirmationReminder(r.Context(), id)
	})(w, r)
}

// HandleReimbursement handles POST /v1/admin/users/{id}/reimbursement
//
//	@Summary		Mark reimbursement given
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string		true	"user id"
//	@Success		200	{object}	regsdk.User	"updated user"
//	@Router			/v1/admin/users/{id}/reimbursement [post].
func (h *AdminHandler) HandleReimbursement(w http.ResponseWriter, r *http.Request) {
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Admission.MarkReimbursementGiven(r.Context(), id)
	})(w, r)
}

// HandleResetDiscord handles POST /v1/admin/users/{id}/discord/reset
//
//	@Summary		Unlink Discord
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string		true	"user id"
//	@Success		200	{object}	regsdk.User	"updated user"
//	@Router			/v1/admin/users/{id}/discord/reset [post].
func (h *AdminHandler) HandleResetDiscord(w http.ResponseWriter, r *http.Request) {
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Admission.ResetDiscord(r.Context(), id)
	})(w, r)
}

// HandleSetAdmin handles PUT /v1/admin/users/{id}/admin
//
//	@Summary		Grant or remove admin
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"user id"
//	@Param			request	body		regsdk.AdminFlagRequest	true	"admin flag"
//	@Success		200		{object}	regsdk.User				"updated user"
//	@Router			/v1/admin/users/{id}/admin [put].
func (h *AdminHandler) HandleSetAdmin(w http.ResponseWriter, r *http.Request) {
	var req regsdk.AdminFlagRequest
	if !decode(w, r, &req) {
		return
	}
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Admission.SetAdmin(r.Context(), id, req.Admin)
	})(w, r)
}

// HandleProvisionSponsor handles POST /v1/admin/sponsors
//
//	@Summary		Create sponsor account
//	@Description	Creates a verified sponsor with a generated password and emails the credentials.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		regsdk.EmailRequest		true	"sponsor email"
//	@Success		201		{object}	regsdk.User				"sponsor"
//	@Failure		409		{object}	regsdk.ErrorResponse	"email taken"
//	@Router			/v1/admin/sponsors [post].
func (h *AdminHandler) HandleProvisionSponsor(w http.ResponseWriter, r *http.Request) {
	var req regsdk.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Sponsors.Provision(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, userJSON(u))
}

// HandleGrantResumeAccess handles PUT /v1/admin/sponsors/{id}/resume-access
//
//	@Summary		Grant resume access
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"sponsor id"
//	@Success		200	{object}	regsdk.User				"sponsor"
//	@Failure		403	{object}	regsdk.ErrorResponse	"not a sponsor"
//	@Router			/v1/admin/sponsors/{id}/resume-access [put].
func (h *AdminHandler) HandleGrantResumeAccess(w http.ResponseWriter, r *http.Request) {
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Sponsors.GrantResumeAccess(r.Context(), id)
	})(w, r)
}

// HandleRevokeResumeAccess handles DELETE /v1/admin/sponsors/{id}/resume-access
//
//	@Summary		Revoke resume access
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string		true	"sponsor id"
//	@Success		200	{object}	regsdk.User	"sponsor"
//	@Router			/v1/admin/sponsors/{id}/resume-access [delete].
func (h *AdminHandler) HandleRevokeResumeAccess(w http.ResponseWriter, r *http.Request) {
	userAction(func(r *http.Request, id string) (domain.User, error) {
		return h.Sponsors.RevokeResumeAccess(r.Context(), id)
	})(w, r)
}

// HandleProvisionWalkIn handles POST /v1/admin/walkins
//
//	@Summary		Create walk-in account
//	@Description	Creates an unverified account outside the registration window and emails a completion link.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		regsdk.EmailRequest		true	"attendee email"
//	@Success		201		{object}	regsdk.User				"new user"
//	@Failure		409		{object}	regsdk.ErrorResponse	"email taken"
//	@Router			/v1/admin/walkins [post].
func (h *AdminHandler) HandleProvisionWalkIn(w http.ResponseWriter, r *http.Request) {
	var req regsdk.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.Accounts.ProvisionWalkIn(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, userJSON(u))
}

// HandleApplicationReminder handles POST /v1/admin/reminders/application
//
//	@Summary		Send application reminder
//	@Tags			Admin
//	@Accept			json
//	@Security		BearerAuth
//	@Param			request	body	regsdk.EmailRequest	true	"recipient"
//	@Success		204
//	@Router			/v1/admin/reminders/application [post].
func (h *AdminHandler) HandleApplicationReminder(w http.ResponseWriter, r *http.Request) {
	var req regsdk.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Admission.SendApplicationReminder(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
