package domain

import (
	"strings"
	"time"
)

// Role names attached to authenticated principals.
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleSponsor = "sponsor"
)

// User is the registration record. It is created by registration, sponsor or
// walk-in provisioning and is never deleted.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"admin"`
	Sponsor      bool      `json:"sponsor"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"timestamp"`
	LastUpdated  time.Time `json:"lastUpdated"`

	// TeamCode is empty when the user is not on a team.
	TeamCode string `json:"teamCode,omitempty"`

	Profile       Profile       `json:"profile"`
	Confirmation  Confirmation  `json:"confirmation"`
	Status        Status        `json:"status"`
	SponsorFields SponsorFields `json:"sponsorFields"`
	AtEvent       AtEvent       `json:"userAtEvent"`
	Discord       Discord       `json:"discord"`
}

// AtEvent tracks what happened to an attendee on site.
type AtEvent struct {
	ReceivedLunch     bool     `json:"receivedLunch"`
	ReceivedDinner    bool     `json:"receivedDinner"`
	WorkshopsAttended []string `json:"workshopsAttended"`
	TablesVisited     []string `json:"tablesVisited"`
}

// Discord is the third party chat account linked to the user.
type Discord struct {
	Verified bool   `json:"verified"`
	UserID   string `json:"userID,omitempty"`
}

// Meal is a catered meal served at the event.
type Meal string

const (
	MealLunch  Meal = "lunch"
	MealDinner Meal = "dinner"
)

// Valid reports whether m is a known meal.
func (m Meal) Valid() bool {
	return m == MealLunch || m == MealDinner
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Roles returns the principal roles for the user.
func (u User) Roles() []string {
	roles := []string{RoleUser}
	if u.Admin {
		roles = append(roles, RoleAdmin)
	}
	if u.Sponsor {
		roles = append(roles, RoleSponsor)
	}
	return roles
}

// StatusName returns the derived lifecycle state of the user.
func (u User) StatusName() StatusName {
	return DeriveStatus(u)
}

// HasReceived reports whether the meal flag is set.
func (u User) HasReceived(m Meal) bool {
	switch m {
	case MealLunch:
		return u.AtEvent.ReceivedLunch
	case MealDinner:
		return u.AtEvent.ReceivedDinner
	}
	return false
}

// CanReadResumes reports whether u may download other users' resumes.
func (u User) CanReadResumes() bool {
	if u.Admin {
		return true
	}
	return u.Sponsor && u.SponsorFields.Status == SponsorGrantedResumeAccess
}

// Teammate is the projection of a user shown to members of the same team.
type Teammate struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Status StatusName `json:"status"`
}

// AsTeammate projects u to the fields teammates are allowed to see.
func (u User) AsTeammate() Teammate {
	return Teammate{
		ID:     u.ID,
		Name:   u.Profile.Name,
		Email:  u.Email,
		Status: u.StatusName(),
	}
}

// SponsorView is the projection of an attendee returned to sponsors.
type SponsorView struct {
	ID      string  `json:"id"`
	Profile Profile `json:"profile"`
}

// AsSponsorView projects u for sponsor-facing endpoints.
func (u User) AsSponsorView() SponsorView {
	return SponsorView{ID: u.ID, Profile: u.Profile}
}

// ExportKey is the compact id_lastName_firstName key used by bulk export.
func (u User) ExportKey() string {
	return u.ID + "_" + u.Profile.LastName + "_" + u.Profile.FirstName
}

// Stats are aggregate counts over every record.
type Stats struct {
	Total          int `json:"total"`
	Verified       int `json:"verified"`
	Submitted      int `json:"submitted"`
	Admitted       int `json:"admitted"`
	Confirmed      int `json:"confirmed"`
	Declined       int `json:"declined"`
	CheckedIn      int `json:"checkedIn"`
	Sponsors       int `json:"sponsors"`
	ReceivedLunch  int `json:"receivedLunch"`
	ReceivedDinner int `json:"receivedDinner"`
	DiscordLinked  int `json:"discordLinked"`
	Teams          int `json:"teams"`
}
