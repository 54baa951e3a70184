package domain

import (
	"fmt"
	"time"
)

// SponsorStatus gates sponsor access to attendee resumes.
type SponsorStatus string

const (
	SponsorIncomplete          SponsorStatus = "incomplete"
	SponsorCompletedProfile    SponsorStatus = "completedProfile"
	SponsorGrantedResumeAccess SponsorStatus = "grantedResumeAccess"
)

// SponsorFields is only meaningful when User.Sponsor is set.
type SponsorFields struct {
	Status                  SponsorStatus `json:"sponsorStatus"`
	CompanyName             string        `json:"companyName,omitempty"`
	RepresentativeEmail     string        `json:"representativeEmail,omitempty"`
	RepresentativeFirstName string        `json:"representativeFirstName,omitempty"`
	RepresentativeLastName  string        `json:"representativeLastName,omitempty"`
	Tier                    string        `json:"tier"`
	Workshop                bool          `json:"workshop"`
	Paid                    bool          `json:"paid"`
	OpeningStatementTime    *time.Time    `json:"openingStatementTime,omitempty"`
	ClosingStatementTime    *time.Time    `json:"closingStatementTime,omitempty"`
	EstimatedCost           float64       `json:"estimatedCost"`
	OtherNotes              string        `json:"otherNotes,omitempty"`
}

// SponsorTiers are the accepted sponsorship levels. Empty means undecided.
var SponsorTiers = []string{"Kilo", "Mega", "Giga", "Title", ""}

// Validate checks the sponsor-editable fields.
func (f SponsorFields) Validate() error {
	var errs ValidationErrors

	if !contains(SponsorTiers, f.Tier) {
		errs = errs.add("tier", fmt.Sprintf("unknown tier %q", f.Tier))
	}
	if f.RepresentativeEmail != "" && !IsEmail(f.RepresentativeEmail) {
		errs = errs.add("representativeEmail", "invalid email")
	}
	if f.EstimatedCost < 0 {
		errs = errs.add("estimatedCost", "must not be negative")
	}
	if f.OpeningStatementTime != nil && f.ClosingStatementTime != nil &&
		f.ClosingStatementTime.Before(*f.OpeningStatementTime) {
		errs = errs.add("closingStatementTime", "before opening statement")
	}
	checkLen(&errs, "companyName", f.CompanyName, 150)
	checkLen(&errs, "otherNotes", f.OtherNotes, 1500)

	return errs.err()
}
