package domain

import "time"

// Status holds the admission flags of a user.
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

// StatusName is the lifecycle state derived from a user's flags.
type StatusName string

const (
	StatusCheckedIn       StatusName = "checked in"
	StatusDeclined        StatusName = "declined"
	StatusConfirmed       StatusName = "confirmed"
	StatusAdmitted        StatusName = "admitted"
	StatusSubmitted       StatusName = "submitted"
	StatusUnverified      StatusName = "unverified"
	StatusSponsorApproved StatusName = "approved"
	StatusSponsorPending  StatusName = "pending"
	StatusIncomplete      StatusName = "incomplete"
)

// DeriveStatus computes the state of u. The first matching rule wins, so the
// order below is the precedence order.
func DeriveStatus(u User) StatusName {
	switch {
	case u.Status.CheckedIn:
		return StatusCheckedIn
	case u.Status.Declined:
		return StatusDeclined
	case u.Status.Confirmed:
		return StatusConfirmed
	case u.Status.Admitted:
		return StatusAdmitted
	case u.Status.CompletedProfile:
		return StatusSubmitted
	case !u.Verified:
		return StatusUnverified
	case u.Sponsor && u.SponsorFields.Status == SponsorGrantedResumeAccess:
		return StatusSponsorApproved
	case u.Sponsor && u.SponsorFields.Status == SponsorCompletedProfile:
		return StatusSponsorPending
	default:
		return StatusIncomplete
	}
}
