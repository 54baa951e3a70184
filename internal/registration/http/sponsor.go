package http

import (
	"net/http"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/pkg/httpx"
)

// SponsorHandler serves sponsor accounts. Routes are gated on the sponsor role.
type SponsorHandler struct {
	Admission *service.AdmissionService
	Sponsors  *service.SponsorService
	Query     *service.QueryService
}

// HandleSubmitProfile handles PUT /v1/sponsor/profile
//
//	@Summary		Submit sponsor profile
//	@Description	Stores company details. Resume access already granted is kept.
//	@Tags			Sponsors
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		object					true	"sponsor fields"
//	@Success		200		{object}	regsdk.User				"sponsor"
//	@Failure		400		{object}	regsdk.ErrorResponse	"invalid fields"
//	@Router			/v1/sponsor/profile [put].
func (h *SponsorHandler) HandleSubmitProfile(w http.ResponseWriter, r *http.Request) {
	var f domain.SponsorFields
	if !decode(w, r, &f) {
		return
	}
	u, err := h.Sponsors.SubmitProfile(r.Context(), httpx.UserIDFromContext(r.Context()), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userJSON(u))
}

// HandleWorkshop handles POST /v1/sponsor/users/{id}/workshop
//
//	@Summary		Record workshop attendance
//	@Tags			Sponsors
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string				true	"attendee id"
//	@Success		200	{object}	regsdk.SponsorView	"attendee id and profile"
//	@Router			/v1/sponsor/users/{id}/workshop [post].
func (h *SponsorHandler) HandleWorkshop(w http.ResponseWriter, r *http.Request) {
	view, err := h.Admission.AddWorkshopAttended(r.Context(), r.PathValue("id"), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

// HandleTable handles POST /v1/sponsor/users/{id}/table
//
//	@Summary		Record table visit
//	@Tags			Sponsors
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string				true	"attendee id"
//	@Success		200	{object}	regsdk.SponsorView	"attendee id and profile"
//	@Router			/v1/sponsor/users/{id}/table [post].
func (h *SponsorHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	view, err := h.Admission.AddTableVisited(r.Context(), r.PathValue("id"), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

// HandleListUsers handles GET /v1/sponsor/users
//
//	@Summary		Browse attendees
//	@Description	Pages through attendees as id and profile only. Requires granted resume access.
//	@Tags			Sponsors
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page			query		int						false	"zero based page"
//	@Param			size			query		int						false	"page size"
//	@Param			graduationTimes	query		[]string				false	"graduation cohorts"
//	@Param			skills			query		[]string				false	"any of these skills"
//	@Success		200				{object}	object					"users, page, size, totalPages"
//	@Failure		403				{object}	regsdk.ErrorResponse	"no resume access"
//	@Router			/v1/sponsor/users [get].
func (h *SponsorHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	me, err := h.Admission.GetUser(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !me.CanReadResumes() {
		writeForbidden(w, "You do not have access to resumes.")
		return
	}

	q, err := parsePageQuery(r.URL.Query())
	if err != nil || q.Size == 0 {
		writeBadRequest(w, "Invalid query parameters.")
		return
	}
	q.ResumeOnly = true

	page, err := h.Query.Page(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]domain.SponsorView, 0, len(page.Users))
	for _, u := range page.Users {
		if u.Sponsor || u.Admin {
			continue
		}
		views = append(views, u.AsSponsorView())
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"users":      views,
		"page":       page.Page,
		"size":       page.Size,
		"totalPages": page.TotalPages,
	})
}
