package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
	"github.com/aussiebroadwan/hackreg/pkg/httpx"
	"github.com/aussiebroadwan/hackreg/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/hackreg/api/registration" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       httpx.Limits

	store            store.Store
	AdmissionService *service.AdmissionService
	AccountService   *service.AccountService
	TeamService      *service.TeamService
	SponsorService   *service.SponsorService
	QueryService     *service.QueryService
	SettingsService  *service.SettingsService
	StatsService     *service.StatsService

	// Metrics serves /metrics. Nil uses the default Prometheus registry.
	Metrics http.Handler
}

func NewRouter(
	buildVersion string,
	st store.Store,
	limits httpx.Limits,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		limits:       limits,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerDiscord()
	r.registerSponsor()
	r.registerAdmin()
	r.registerSettings()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Hackathon Registration API
//	@version		0.1.0
//	@description	Applicant registration, admission, confirmation, teams and on-site event tracking.
//	@description
//	@description				Authenticated endpoints take the token returned by login or registration.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/hackreg
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Auth token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed wraps h with token authentication, optional role gates, and a
// per-user limit.
func (r *Router) authed(h http.HandlerFunc, limit httpx.RateLimitConfig, roles ...string) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(authenticator(r.AccountService))}
	if len(roles) > 0 {
		mws = append(mws, httpx.RequireAnyRole(roles...))
	}
	mws = append(mws, httpx.RateLimitByUser(limit))
	return httpx.Chain(h, mws...)
}

func (r *Router) public(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h, httpx.RateLimitByIP(limit))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Admission: r.AdmissionService, Accounts: r.AccountService}

	// Credential and email-token endpoints are strict by IP to slow guessing.
	r.Mux.Handle("POST /v1/auth/register", r.public(h.HandleRegister, r.limits.Strict))
	r.Mux.Handle("POST /v1/auth/login", r.public(h.HandleLogin, r.limits.Strict))
	r.Mux.Handle("POST /v1/auth/verify/{token}", r.public(h.HandleVerify, r.limits.Strict))
	r.Mux.Handle("POST /v1/auth/reset/send", r.public(h.HandleSendReset, r.limits.Strict))
	r.Mux.Handle("POST /v1/auth/reset", r.public(h.HandleReset, r.limits.Strict))
	r.Mux.Handle("POST /v1/auth/walkin", r.public(h.HandleCompleteWalkIn, r.limits.Strict))

	r.Mux.Handle("GET /v1/auth/me", r.authed(h.HandleMe, r.limits.Lenient))
	r.Mux.Handle("POST /v1/auth/verify/resend", r.authed(h.HandleResendVerification, r.limits.Strict))
	r.Mux.Handle("PUT /v1/auth/password", r.authed(h.HandleChangePassword, r.limits.Strict))
}

func (r *Router) registerUsers() {
	h := &UserHandler{Admission: r.AdmissionService, Teams: r.TeamService}

	r.Mux.Handle("GET /v1/users/{id}", r.authed(h.HandleGet, r.limits.Lenient))
	r.Mux.Handle("PUT /v1/users/{id}/profile", r.authed(h.HandleUpdateProfile, r.limits.Moderate))
	r.Mux.Handle("PUT /v1/users/{id}/confirm", r.authed(h.HandleConfirm, r.limits.Moderate))
	r.Mux.Handle("POST /v1/users/{id}/decline", r.authed(h.HandleDecline, r.limits.Moderate))

	r.Mux.Handle("GET /v1/users/{id}/team", r.authed(h.HandleTeammates, r.limits.Lenient))
	r.Mux.Handle("PUT /v1/users/{id}/team", r.authed(h.HandleJoinTeam, r.limits.Moderate))
	r.Mux.Handle("DELETE /v1/users/{id}/team", r.authed(h.HandleLeaveTeam, r.limits.Moderate))

	r.Mux.Handle("GET /v1/users/{id}/resume", r.authed(h.HandleGetResume, r.limits.Lenient))
	r.Mux.Handle("PUT /v1/users/{id}/resume", r.authed(h.HandleUploadResume, r.limits.Moderate))

	r.Mux.Handle("POST /v1/users/{id}/discord/token", r.authed(h.HandleDiscordToken, r.limits.Moderate))
}

func (r *Router) registerDiscord() {
	h := &UserHandler{Admission: r.AdmissionService, Teams: r.TeamService}

	// Called by the Discord bot with the token the user pasted.
	r.Mux.Handle("POST /v1/discord/link", r.public(h.HandleLinkDiscord, r.limits.Strict))
}

func (r *Router) registerSponsor() {
	h := &SponsorHandler{
		Admission: r.AdmissionService,
		Sponsors:  r.SponsorService,
		Query:     r.QueryService,
	}

	r.Mux.Handle("PUT /v1/sponsor/profile", r.authed(h.HandleSubmitProfile, r.limits.Moderate, domain.RoleSponsor))
	r.Mux.Handle("GET /v1/sponsor/users", r.authed(h.HandleListUsers, r.limits.Lenient, domain.RoleSponsor))
	r.Mux.Handle("POST /v1/sponsor/users/{id}/workshop", r.authed(h.HandleWorkshop, r.limits.Moderate, domain.RoleSponsor))
	r.Mux.Handle("POST /v1/sponsor/users/{id}/table", r.authed(h.HandleTable, r.limits.Moderate, domain.RoleSponsor))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{
		Admission: r.AdmissionService,
		Accounts:  r.AccountService,
		Sponsors:  r.SponsorService,
		Query:     r.QueryService,
		Stats:     r.StatsService,
	}
	admin := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return r.authed(fn, limit, domain.RoleAdmin)
	}

	// Search and stats
	r.Mux.Handle("GET /v1/admin/users", admin(h.HandleListUsers, r.limits.Lenient))
	r.Mux.Handle("GET /v1/admin/sponsors", admin(h.HandleListSponsors, r.limits.Lenient))
	r.Mux.Handle("GET /v1/admin/stats", admin(h.HandleStats, r.limits.Lenient))

	// Admission and event day
	r.Mux.Handle("POST /v1/admin/users/{id}/admit", admin(h.HandleAdmit, r.limits.Moderate))
	r.Mux.Handle("POST /v1/admin/users/{id}/defer", admin(h.HandleDefer, r.limits.Moderate))
	r.Mux.Handle("POST /v1/admin/users/{id}/checkin", admin(h.HandleCheckIn, r.limits.Lenient))
	r.Mux.Handle("POST /v1/admin/users/{id}/checkout", admin(h.HandleCheckOut, r.limits.Lenient))
	r.Mux.Handle("POST /v1/admin/users/{id}/meals/{meal}", admin(h.HandleMeal, r.limits.Lenient))
	r.Mux.Handle("POST /v1/admin/users/{id}/reminder", admin(h.HandleConfirmationReminder, r.limits.Moderate))
	r.Mux.Handle("POST /v1/admin/users/{id}/reimbursement", admin(h.HandleReimbursement, r.limits.Moderate))
	r.Mux.Handle("POST /v1/admin/users/{id}/discord/reset", admin(h.HandleResetDiscord, r.limits.Moderate))
	r.Mux.Handle("PUT /v1/admin/users/{id}/admin", admin(h.HandleSetAdmin, r.limits.Moderate))
	r.Mux.Handle("POST /v1/admin/reminders/application", admin(h.HandleApplicationReminder, r.limits.Moderate))

	// Account provisioning
	r.Mux.Handle("POST /v1/admin/sponsors", admin(h.HandleProvisionSponsor, r.limits.Moderate))
	r.Mux.Handle("PUT /v1/admin/sponsors/{id}/resume-access", admin(h.HandleGrantResumeAccess, r.limits.Moderate))
	r.Mux.Handle("DELETE /v1/admin/sponsors/{id}/resume-access", admin(h.HandleRevokeResumeAccess, r.limits.Moderate))
	r.Mux.Handle("POST /v1/admin/walkins", admin(h.HandleProvisionWalkIn, r.limits.Moderate))
}

func (r *Router) registerSettings() {
	h := &SettingsHandler{Settings: r.SettingsService}

	r.Mux.Handle("GET /v1/settings", r.public(h.HandleGet, r.limits.Public))
	r.Mux.Handle("GET /v1/admin/settings", r.authed(h.HandleGet, r.limits.Lenient, domain.RoleAdmin))
	r.Mux.Handle("PUT /v1/admin/settings/times", r.authed(h.HandleTimes, r.limits.Moderate, domain.RoleAdmin))
	r.Mux.Handle("PUT /v1/admin/settings/confirm-by", r.authed(h.HandleConfirmBy, r.limits.Moderate, domain.RoleAdmin))
	r.Mux.Handle("PUT /v1/admin/settings/sponsor-close", r.authed(h.HandleSponsorClose, r.limits.Moderate, domain.RoleAdmin))
	r.Mux.Handle("PUT /v1/admin/settings/whitelist", r.authed(h.HandleWhitelist, r.limits.Moderate, domain.RoleAdmin))
	r.Mux.Handle("PUT /v1/admin/settings/texts", r.authed(h.HandleTexts, r.limits.Moderate, domain.RoleAdmin))
}

func (r *Router) registerSystem() {
	// Monitoring systems poll these frequently.
	r.Mux.Handle("GET /livez", r.public(LivezHandler(r.startTime, r.buildVersion), r.limits.Public))
	r.Mux.Handle("GET /readyz", r.public(ReadyzHandler(r.startTime, r.buildVersion, r.store), r.limits.Public))

	metrics := r.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Mux.Handle("GET /metrics", metrics)
}
