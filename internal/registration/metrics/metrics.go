// Package metrics holds the Prometheus instruments for registration
// transitions. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registrations  prometheus.Counter
	Verifications  prometheus.Counter
	Admissions     prometheus.Counter
	Confirmations  prometheus.Counter
	Declines       prometheus.Counter
	CheckIns       prometheus.Counter
	MealsServed    *prometheus.CounterVec
	TeamJoins      prometheus.Counter
	TeamFull       prometheus.Counter
	DiscordLinks   prometheus.Counter
	PasswordResets prometheus.Counter

	// Users is refreshed by housekeeping from the aggregate stats query.
	Users *prometheus.GaugeVec
}

// New registers the instruments with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the instruments with reg. Tests pass a fresh registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Name: "hackreg_registrations_total",
			Help: "Accounts created through self registration",
		}),
		Verifications: f.NewCounter(prometheus.CounterOpts{
			Name: "hackreg_email_verifications_total",
			Help: "Email addresses verified",
		}),
		Admissions: f.NewCounter(prometheus.CounterOpts{
			Name: "hackreg_admissions_total",
			Help: "Users admitted by an admin",
		}),
		Confirmations: f.NewCounter(prometheus.CounterOpts{
			Name: "hackreg_confirmations_total",
			Help: "Confirmation submissions accepted",
		}),
		Declines: f.NewCounter(prometheus.CounterOpts{
			Name: "hackreg_declines_total",
			Help: "Admitted users who declined",
		}),
		CheckIns: f.NewCounter(prometheus.CounterOpts{
			Name: "hackreg_checkins_total",
			Help: "On-site check-ins, including those made by linking Discord",
		}),
		MealsServed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hackreg_meals_served_total",
			Help: "Meals handed out, by meal",
		}, []string{"meal"}),
		TeamJoins: f.NewCounter(prometheus.CounterOpts{
			Name: "hackreg_team_joins_total",
			Help: "Successful team joins",
		}),
		TeamFull: f.NewCounter(prometheus.CounterOpts{
			Name: "hackreg_team_full_rejections_total",
			Help: "Team joins rejected because the team was at capacity",
		}),
		DiscordLinks: f.NewCounter(prometheus.CounterOpts{
			Name: "hackreg_discord_links_total",
			Help: "Discord accounts linked",
		}),
		PasswordResets: f.NewCounter(prometheus.CounterOpts{
			Name: "hackreg_password_resets_total",
			Help: "Passwords reset with an emailed token",
		}),
		Users: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hackreg_users",
			Help: "Users per lifecycle stage at the last housekeeping run",
		}, []string{"stage"}),
	}
}

func (m *Metrics) IncRegistration() {
	if m != nil {
		m.Registrations.Inc()
	}
}

func (m *Metrics) IncVerification() {
	if m != nil {
		m.Verifications.Inc()
	}
}

func (m *Metrics) IncAdmission() {
	if m != nil {
		m.Admissions.Inc()
	}
}

func (m *Metrics) IncConfirmation() {
	if m != nil {
		m.Confirmations.Inc()
	}
}

func (m *Metrics) IncDecline() {
	if m != nil {
		m.Declines.Inc()
	}
}

func (m *Metrics) IncCheckIn() {
	if m != nil {
		m.CheckIns.Inc()
	}
}

// IncMealServed records one meal of the given kind.
func (m *Metrics) IncMealServed(meal string) {
	if m != nil {
		m.MealsServed.WithLabelValues(meal).Inc()
	}
}

func (m *Metrics) IncTeamJoin() {
	if m != nil {
		m.TeamJoins.Inc()
	}
}

func (m *Metrics) IncTeamFull() {
	if m != nil {
		m.TeamFull.Inc()
	}
}

func (m *Metrics) IncDiscordLink() {
	if m != nil {
		m.DiscordLinks.Inc()
	}
}

func (m *Metrics) IncPasswordReset() {
	if m != nil {
		m.PasswordResets.Inc()
	}
}

// SetUsers publishes a stats snapshot as the users gauge.
func (m *Metrics) SetUsers(s domain.Stats) {
	if m == nil {
		return
	}
	for stage, n := range map[string]int{
		"total":      s.Total,
		"verified":   s.Verified,
		"submitted":  s.Submitted,
		"admitted":   s.Admitted,
		"confirmed":  s.Confirmed,
		"declined":   s.Declined,
		"checked_in": s.CheckedIn,
		"sponsors":   s.Sponsors,
	} {
		m.Users.WithLabelValues(stage).Set(float64(n))
	}
}
