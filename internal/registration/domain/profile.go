package domain

import "regexp"

// Profile is the self-reported application of an attendee.
type Profile struct {
	Name        string `json:"name"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Birthday    string `json:"birthday,omitempty"`
	Adult       bool   `json:"adult"`

	Gender      string `json:"gender,omitempty"`
	OtherGender string `json:"otherGender,omitempty"`
	Race        string `json:"race,omitempty"`
	OtherRace   string `json:"otherRace,omitempty"`

	School         string `json:"school"`
	Major          string `json:"major,omitempty"`
	Standing       string `json:"standing,omitempty"`
	GraduationTime string `json:"graduationTime"`

	Resume          bool     `json:"resume"`
	Skills          []string `json:"skills"`
	FirstHackathon  string   `json:"firstHackathon,omitempty"`
	NumHackathons   int      `json:"numHackathons"`
	SocialMedia     []string `json:"socialMedia"`
	Reimbursement   string   `json:"reimbursement,omitempty"`
	Essay           string   `json:"essay,omitempty"`
	Desires         string   `json:"desires,omitempty"`
	Description     string   `json:"description,omitempty"`
	ExperienceLevel string   `json:"experienceLevel,omitempty"`
	Apprehensions   string   `json:"apprehensions,omitempty"`

	// Mailing details are only required when both USStudent and Swag are set.
	USStudent     bool   `json:"usStudent"`
	Swag          bool   `json:"swag"`
	StreetAddress string `json:"streetAddress,omitempty"`
	AptNumber     string `json:"aptNumber,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	Zip           string `json:"zip,omitempty"`
}

var (
	GraduationTimes = []string{
		"Fall 2020", "Spring 2021",
		"Fall 2021", "Spring 2022",
		"Fall 2022", "Spring 2023",
		"Fall 2023", "Spring 2024",
		"Other",
	}

	Genders          = []string{"M", "F", "O", "N"}
	Races            = []string{"I", "A", "B", "H", "W", "O", "N"}
	Standings        = []string{"F", "P", "J", "S", "M", "D"}
	Reimbursements   = []string{"O", "I", "N"}
	ExperienceLevels = []string{"L", "M", "H"}
	Apprehensions    = []string{"T", "F", "K", "G", "S"}

	// USStates are the mailing state codes, DC included.
	USStates = []string{
		"TX", "AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC",
		"FL", "GA", "HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA",
		"ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV",
		"NH", "NJ", "NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA",
		"RI", "SC", "SD", "TN", "UT", "VT", "VA", "WA", "WV", "WI",
		"WY",
	}
)

var zipPattern = regexp.MustCompile(`^[0-9]{5}$`)

// Validate reports every rule the profile breaks. A nil error means the
// profile is complete.
func (p Profile) Validate() error {
	var errs ValidationErrors

	required := []struct{ field, v string }{
		{"name", p.Name},
		{"firstName", p.FirstName},
		{"lastName", p.LastName},
		{"school", p.School},
	}
	for _, r := range required {
		if r.v == "" {
			errs = errs.add(r.field, "required")
		}
	}

	if !p.Resume {
		errs = errs.add("resume", "a resume is required")
	}
	if !p.Adult {
		errs = errs.add("adult", "must be 18 or older")
	}
	if !contains(GraduationTimes, p.GraduationTime) {
		errs = errs.add("graduationTime", "unexpected value "+p.GraduationTime)
	}
	if !contains(Genders, p.Gender) {
		errs = errs.add("gender", "unexpected value "+p.Gender)
	}

	if p.USStudent && p.Swag {
		if p.StreetAddress == "" {
			errs = errs.add("streetAddress", "required for mailing")
		}
		if p.City == "" {
			errs = errs.add("city", "required for mailing")
		}
		if !zipPattern.MatchString(p.Zip) {
			errs = errs.add("zip", "must be 5 digits")
		}
		if !contains(USStates, p.State) {
			errs = errs.add("state", "unknown state "+p.State)
		}
	}

	checkEnum(&errs, "race", p.Race, Races)
	checkEnum(&errs, "standing", p.Standing, Standings)
	checkEnum(&errs, "reimbursement", p.Reimbursement, Reimbursements)
	checkEnum(&errs, "experienceLevel", p.ExperienceLevel, ExperienceLevels)
	checkEnum(&errs, "apprehensions", p.Apprehensions, Apprehensions)

	checkLen(&errs, "name", p.Name, 100)
	checkLen(&errs, "firstName", p.FirstName, 100)
	checkLen(&errs, "lastName", p.LastName, 100)
	checkLen(&errs, "school", p.School, 150)
	checkLen(&errs, "essay", p.Essay, 1500)
	checkLen(&errs, "desires", p.Desires, 1500)
	checkLen(&errs, "description", p.Description, 300)
	checkLen(&errs, "streetAddress", p.StreetAddress, 150)
	checkLen(&errs, "aptNumber", p.AptNumber, 50)
	checkLen(&errs, "city", p.City, 50)

	if p.NumHackathons < 0 {
		errs = errs.add("numHackathons", "must not be negative")
	}

	return errs.err()
}

// MergeOnto applies p on top of a previously submitted profile. Once a
// profile is submitted it only grows: empty text fields keep their old
// value and list fields are unioned.
func (p Profile) MergeOnto(prev Profile) Profile {
	out := p

	keep := func(dst *string, old string) {
		if *dst == "" {
			*dst = old
		}
	}
	keep(&out.Name, prev.Name)
	keep(&out.FirstName, prev.FirstName)
	keep(&out.LastName, prev.LastName)
	keep(&out.PhoneNumber, prev.PhoneNumber)
	keep(&out.Birthday, prev.Birthday)
	keep(&out.Gender, prev.Gender)
	keep(&out.OtherGender, prev.OtherGender)
	keep(&out.Race, prev.Race)
	keep(&out.OtherRace, prev.OtherRace)
	keep(&out.School, prev.School)
	keep(&out.Major, prev.Major)
	keep(&out.Standing, prev.Standing)
	keep(&out.GraduationTime, prev.GraduationTime)
	keep(&out.FirstHackathon, prev.FirstHackathon)
	keep(&out.Reimbursement, prev.Reimbursement)
	keep(&out.Essay, prev.Essay)
	keep(&out.Desires, prev.Desires)
	keep(&out.Description, prev.Description)
	keep(&out.ExperienceLevel, prev.ExperienceLevel)
	keep(&out.Apprehensions, prev.Apprehensions)
	keep(&out.StreetAddress, prev.StreetAddress)
	keep(&out.AptNumber, prev.AptNumber)
	keep(&out.City, prev.City)
	keep(&out.State, prev.State)
	keep(&out.Zip, prev.Zip)

	if out.NumHackathons == 0 {
		out.NumHackathons = prev.NumHackathons
	}
	out.Skills = union(prev.Skills, p.Skills)
	out.SocialMedia = union(prev.SocialMedia, p.SocialMedia)

	return out
}
