package domain

import "time"

// Gender matches the stored enum values.
type Gender string

const (
	GenderMale           Gender = "MALE"
	GenderFemale         Gender = "FEMALE"
	GenderOther          Gender = "OTHER"
	GenderPreferNotToSay Gender = "PREFER_NOT_TO_SAY"
)

// UserProfile holds the extended per-user record managed by the user
// service. CompletionPercentage is derived; RecalculateCompletion must run
// on every write path before persisting.
type UserProfile struct {
	ID     string
	UserID string

	// Personal
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	DateOfBirth *time.Time
	Gender      Gender

	// Address
	Address string
	City    string
	State   string
	ZipCode string
	Country string

	// Emergency contact
	EmergencyContactName         string
	EmergencyContactPhone        string
	EmergencyContactRelationship string

	// Medical
	MedicalConditions  string
	Allergies          string
	Medications        string
	SkinType           string
	SkinSensitivity    string
	PreviousTreatments string
	TreatmentGoals     string

	// Treatment progress
	CurrentTreatmentPlan  string
	SessionsCompleted     int
	TotalSessionsPlanned  int
	LastSessionDate       *time.Time
	NextSessionDate       *time.Time
	TreatmentProgressNote string

	// Preferences
	PreferredClinicID        string
	PreferredStaffID         string
	PreferredAppointmentTime string
	PreferredDays            string
	CommunicationPreferences string
	LanguagePreference       string
	Timezone                 string

	// Consents
	MarketingConsent      bool
	DataProcessingConsent bool
	PhotoConsent          bool

	Active               bool
	CompletionPercentage int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// RecalculateCompletion recomputes the derived completion percentage from
// the same field weighting the product has always used: basic identity,
// contact, personal, address, and intake medical fields.
func (p *UserProfile) RecalculateCompletion() {
	completed, total := 0, 0

	count := func(filled bool) {
		total++
		if filled {
			completed++
		}
	}

	count(p.FirstName != "")
	count(p.LastName != "")
	count(p.Email != "")
	count(p.PhoneNumber != "")
	count(p.DateOfBirth != nil)
	count(p.Gender != "")
	count(p.Address != "")
	count(p.City != "")
	count(p.State != "")
	count(p.ZipCode != "")
	count(p.SkinType != "")
	count(p.SkinSensitivity != "")
	count(p.TreatmentGoals != "")

	if total == 0 {
		p.CompletionPercentage = 0
		return
	}
	p.CompletionPercentage = completed * 100 / total
}
