package domain

// Confirmation holds the logistics an admitted attendee submits when
// confirming their place.
type Confirmation struct {
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	ShirtSize           string   `json:"shirtSize,omitempty"`
	WantsHardware       bool     `json:"wantsHardware"`
	Hardware            string   `json:"hardware,omitempty"`

	Github   string `json:"github,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`

	ContactName         string `json:"contactName,omitempty"`
	ContactPhone        string `json:"contactPhone,omitempty"`
	ContactRelationship string `json:"contactRelationship,omitempty"`

	Platforms          []string `json:"platforms"`
	Workshops          string   `json:"workshops,omitempty"`
	Help               string   `json:"help,omitempty"`
	Notes              string   `json:"notes,omitempty"`
	OtherWorkshopIdeas string   `json:"otherWorkshopIdeas,omitempty"`

	SignatureLiability     string `json:"signatureLiability,omitempty"`
	SignaturePhotoRelease  string `json:"signaturePhotoRelease,omitempty"`
	SignatureCodeOfConduct string `json:"signatureCodeOfConduct,omitempty"`
	SignatureAffiliation   string `json:"signatureAffliationMlh,omitempty"`
}

var ShirtSizes = []string{"XS", "S", "M", "L", "XL", "XXL", "WXS", "WS", "WM", "WL", "WXL", "WXXL"}

// Validate checks enumerations and field lengths.
func (c Confirmation) Validate() error {
	var errs ValidationErrors

	checkEnum(&errs, "shirtSize", c.ShirtSize, ShirtSizes)
	checkLen(&errs, "hardware", c.Hardware, 500)
	checkLen(&errs, "notes", c.Notes, 1500)
	checkLen(&errs, "help", c.Help, 1500)
	checkLen(&errs, "otherWorkshopIdeas", c.OtherWorkshopIdeas, 1500)

	return errs.err()
}
