package regsdk

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error            string       `json:"error"`
	ErrorDescription string       `json:"error_description,omitempty"`
	Fields           []FieldError `json:"fields,omitempty"`
}

// FieldError names one invalid field of a submission.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Settings string `json:"settings"`
}

// ============================================================================
// Auth
// ============================================================================

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ============================================================================
// Users
// ============================================================================

// User is the registration record as served by the API. Nested documents
// are kept raw so the SDK does not pin every profile field.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Admin       bool      `json:"admin"`
	Sponsor     bool      `json:"sponsor"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"timestamp"`
	LastUpdated time.Time `json:"lastUpdated"`
	TeamCode    string    `json:"teamCode,omitempty"`
	StatusName  string    `json:"statusName"`

	Status        Status          `json:"status"`
	Discord       Discord         `json:"discord"`
	Profile       json.RawMessage `json:"profile,omitempty"`
	Confirmation  json.RawMessage `json:"confirmation,omitempty"`
	SponsorFields json.RawMessage `json:"sponsorFields,omitempty"`
	AtEvent       json.RawMessage `json:"userAtEvent,omitempty"`
}

type Status struct {
	CompletedProfile   bool       `json:"completedProfile"`
	Admitted           bool       `json:"admitted"`
	AdmittedBy         string     `json:"admittedBy,omitempty"`
	Confirmed          bool       `json:"confirmed"`
	Declined           bool       `json:"declined"`
	CheckedIn          bool       `json:"checkedIn"`
	CheckInTime        *time.Time `json:"checkInTime,omitempty"`
	ConfirmBy          *time.Time `json:"confirmBy,omitempty"`
	ReimbursementGiven bool       `json:"reimbursementGiven"`
}

type Discord struct {
	Verified bool   `json:"verified"`
	UserID   string `json:"userID,omitempty"`
}

type TeamRequest struct {
	Code string `json:"code"`
}

type Teammate struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

type TeammatesResponse struct {
	Teammates []Teammate `json:"teammates"`
}

type DiscordTokenResponse struct {
	Token string `json:"token"`
}

type DiscordLinkRequest struct {
	Token     string `json:"token"`
	DiscordID string `json:"discordID"`
}

// SponsorView is the projection of an attendee shown to sponsors.
type SponsorView struct {
	ID      string          `json:"id"`
	Profile json.RawMessage `json:"profile"`
}

// ============================================================================
// Admin
// ============================================================================

// PageResponse is one page of a listing. Keys replaces Users when the page
// size was zero.
type PageResponse struct {
	Users      []User   `json:"users,omitempty"`
	Keys       []string `json:"keys,omitempty"`
	Page       int      `json:"page"`
	Size       int      `json:"size"`
	TotalPages int      `json:"totalPages"`
}

type AdminFlagRequest struct {
	Admin bool `json:"admin"`
}

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

type Settings struct {
	TimeOpen          time.Time `json:"timeOpen"`
	TimeClose         time.Time `json:"timeClose"`
	TimeConfirm       time.Time `json:"timeConfirm"`
	TimeCloseSponsor  time.Time `json:"timeCloseSponsor"`
	WhitelistedEmails []string  `json:"whitelistedEmails"`
	WaitlistText      string    `json:"waitlistText"`
	AcceptanceText    string    `json:"acceptanceText"`
	ConfirmationText  string    `json:"confirmationText"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type RegistrationTimesRequest struct {
	TimeOpen  time.Time `json:"timeOpen"`
	TimeClose time.Time `json:"timeClose"`
}

type TimeRequest struct {
	Time time.Time `json:"time"`
}

type WhitelistRequest struct {
	Emails []string `json:"emails"`
}

type TextsRequest struct {
	WaitlistText     string `json:"waitlistText"`
	AcceptanceText   string `json:"acceptanceText"`
	ConfirmationText string `json:"confirmationText"`
}
