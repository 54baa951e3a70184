package http

import (
	"net/http"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/pkg/httpx"
	"github.com/aussiebroadwan/hackreg/pkg/regsdk"
)

// SettingsHandler reads and edits the settings row.
type SettingsHandler struct {
	Settings *service.SettingsService
}

func (h *SettingsHandler) write(w http.ResponseWriter, r *http.Request, s domain.Settings, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

// HandleGet handles GET /v1/settings
//
//	@Summary		Event settings
//	@Description	Registration window, confirmation deadline, whitelist and dashboard texts.
//	@Tags			Settings
//	@Produce		json
//	@Success		200	{object}	regsdk.Settings	"settings"
//	@Router			/v1/settings [get].
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.Settings.Get(r.Context())
	h.write(w, r, s, err)
}

// HandleTimes handles PUT /v1/admin/settings/times
//
//	@Summary		Set registration window
//	@Tags			Settings
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		regsdk.RegistrationTimesRequest	true	"open and close"
//	@Success		200		{object}	regsdk.Settings					"settings"
//	@Failure		400		{object}	regsdk.ErrorResponse			"opens after it closes"
//	@Router			/v1/admin/settings/times [put].
func (h *SettingsHandler) HandleTimes(w http.ResponseWriter, r *http.Request) {
	var req regsdk.RegistrationTimesRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Settings.UpdateRegistrationTimes(r.Context(), req.TimeOpen, req.TimeClose)
	h.write(w, r, s, err)
}

// HandleConfirmBy handles PUT /v1/admin/settings/confirm-by
//
//	@Summary		Set confirmation deadline
//	@Description	Applies to users admitted afterwards. A zero time removes the deadline.
//	@Tags			Settings
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		regsdk.TimeRequest	true	"deadline"
//	@Success		200		{object}	regsdk.Settings		"settings"
//	@Router			/v1/admin/settings/confirm-by [put].
func (h *SettingsHandler) HandleConfirmBy(w http.ResponseWriter, r *http.Request) {
	var req regsdk.TimeRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Settings.UpdateConfirmBy(r.Context(), req.Time)
	h.write(w, r, s, err)
}

// HandleSponsorClose handles PUT /v1/admin/settings/sponsor-close
//
//	@Summary		Set sponsor close time
//	@Tags			Settings
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		regsdk.TimeRequest	true	"time"
//	@Success		200		{object}	regsdk.Settings		"settings"
//	@Router			/v1/admin/settings/sponsor-close [put].
func (h *SettingsHandler) HandleSponsorClose(w http.ResponseWriter, r *http.Request) {
	var req regsdk.TimeRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Settings.UpdateSponsorClose(r.Context(), req.Time)
	h.write(w, r, s, err)
}

// HandleWhitelist handles PUT /v1/admin/settings/whitelist
//
//	@Summary		Set whitelisted email suffixes
//	@Tags			Settings
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		regsdk.WhitelistRequest	true	"suffixes"
//	@Success		200		{object}	regsdk.Settings			"settings"
//	@Router			/v1/admin/settings/whitelist [put].
func (h *SettingsHandler) HandleWhitelist(w http.ResponseWriter, r *http.Request) {
	var req regsdk.WhitelistRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Settings.UpdateWhitelistedEmails(r.Context(), req.Emails)
	h.write(w, r, s, err)
}

// HandleTexts handles PUT /v1/admin/settings/texts
//
//	@Summary		Set dashboard texts
//	@Tags			Settings
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		regsdk.TextsRequest	true	"texts"
//	@Success		200		{object}	regsdk.Settings		"settings"
//	@Router			/v1/admin/settings/texts [put].
func (h *SettingsHandler) HandleTexts(w http.ResponseWriter, r *http.Request) {
	var req regsdk.TextsRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.Settings.UpdateTexts(r.Context(), domain.Texts{
		Waitlist:     req.WaitlistText,
		Acceptance:   req.AcceptanceText,
		Confirmation: req.ConfirmationText,
	})
	h.write(w, r, s, err)
}
