package domain

import "time"

// Settings is the process-wide configuration row edited by admins.
type Settings struct {
	TimeOpen         time.Time `json:"timeOpen"`
	TimeClose        time.Time `json:"timeClose"`
	TimeConfirm      time.Time `json:"timeConfirm"`
	TimeCloseSponsor time.Time `json:"timeCloseSponsor"`

	WhitelistedEmails []string `json:"whitelistedEmails"`

	WaitlistText     string `json:"waitlistText"`
	AcceptanceText   string `json:"acceptanceText"`
	ConfirmationText string `json:"confirmationText"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// ConfirmBy returns the deadline stamped on newly admitted users, or nil
// when no confirmation deadline is configured.
func (s Settings) ConfirmBy() *time.Time {
	if s.TimeConfirm.IsZero() {
		return nil
	}
	t := s.TimeConfirm
	return &t
}

// Texts are the display blocks shown on the dashboard.
type Texts struct {
	Waitlist     string `json:"waitlistText"`
	Acceptance   string `json:"acceptanceText"`
	Confirmation string `json:"confirmationText"`
}
