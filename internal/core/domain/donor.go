package domain

import (
	"math"
	"time"
)

type EligibilityStatus string

const (
	EligibilityEligible  EligibilityStatus = "eligible"
	EligibilityTemporary EligibilityStatus = "temporairement noneligible"
	EligibilityPermanent EligibilityStatus = "definitivement noneligible"
	EligibilityUnknown   EligibilityStatus = "inconnu"
)

// DonorRecord is one row of the candidate survey after header normalization
// and district/profession canonicalization. Numeric fields use NaN for
// missing values until feature preparation imputes them.
type DonorRecord struct {
	FormDate    time.Time `json:"form_date"`
	HasFormDate bool      `json:"has_form_date"`

	Age        float64 `json:"age"`
	WeightKg   float64 `json:"weight_kg"`
	HeightCm   float64 `json:"height_cm"`
	Hemoglobin float64 `json:"hemoglobin_g_dl"`

	Gender         string            `json:"gender"`
	AlreadyDonated string            `json:"already_donated"`
	Education      string            `json:"education"`
	Eligibility    EligibilityStatus `json:"eligibility"`
	District       string            `json:"district"`
	Profession     string            `json:"profession"`
	Feedback       string            `json:"feedback,omitempty"`

	// Survey reason flags, keyed by the short label inside the bracketed
	// column header (e.g. "hypertendus").
	PermanentReasons map[string]bool `json:"-"`
	TemporaryReasons map[string]bool `json:"-"`
}

func (r DonorRecord) Eligible() bool {
	return r.Eligibility == EligibilityEligible
}

func (r DonorRecord) Returning() bool {
	return r.AlreadyDonated == "oui"
}

// Missing reports whether a numeric survey value was absent from the source.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
