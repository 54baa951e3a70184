package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatusPrecedence(t *testing.T) {
	tests := []struct {
		name string
		user domain.User
		want domain.StatusName
	}{
		{"fresh account", domain.User{}, domain.StatusUnverified},
		{"verified", domain.User{Verified: true}, domain.StatusIncomplete},
		{"submitted", domain.User{Verified: true, Status: domain.Status{CompletedProfile: true}}, domain.StatusSubmitted},
		{"submitted beats unverified", domain.User{Status: domain.Status{CompletedProfile: true}}, domain.StatusSubmitted},
		{"admitted", domain.User{Verified: true, Status: domain.Status{CompletedProfile: true, Admitted: true}}, domain.StatusAdmitted},
		{"confirmed", domain.User{Verified: true, Status: domain.Status{Admitted: true, Confirmed: true}}, domain.StatusConfirmed},
		{"declined", domain.User{Verified: true, Status: domain.Status{Admitted: true, Declined: true}}, domain.StatusDeclined},
		{"checked in wins", domain.User{Verified: true, Status: domain.Status{Admitted: true, Declined: true, CheckedIn: true}}, domain.StatusCheckedIn},
		{"sponsor pending", domain.User{Verified: true, Sponsor: true, SponsorFields: domain.SponsorFields{Status: domain.SponsorCompletedProfile}}, domain.StatusSponsorPending},
		{"sponsor approved", domain.User{Verified: true, Sponsor: true, SponsorFields: domain.SponsorFields{Status: domain.SponsorGrantedResumeAccess}}, domain.StatusSponsorApproved},
		{"sponsor incomplete", domain.User{Verified: true, Sponsor: true, SponsorFields: domain.SponsorFields{Status: domain.SponsorIncomplete}}, domain.StatusIncomplete},
		{"non-sponsor with sponsor status", domain.User{Verified: true, SponsorFields: domain.SponsorFields{Status: domain.SponsorGrantedResumeAccess}}, domain.StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.user.StatusName())
		})
	}
}

func TestRolesAndResumeAccess(t *testing.T) {
	require.Equal(t, []string{"user"}, domain.User{}.Roles())
	require.Equal(t, []string{"user", "admin", "sponsor"}, domain.User{Admin: true, Sponsor: true}.Roles())

	require.True(t, domain.User{Admin: true}.CanReadResumes())
	require.False(t, domain.User{Sponsor: true}.CanReadResumes())
	require.True(t, domain.User{Sponsor: true, SponsorFields: domain.SponsorFields{Status: domain.SponsorGrantedResumeAccess}}.CanReadResumes())
}

func TestExportKey(t *testing.T) {
	u := domain.User{ID: "01J", Profile: domain.Profile{FirstName: "Ada", LastName: "Lovelace"}}
	require.Equal(t, "01J_Lovelace_Ada", u.ExportKey())
}
