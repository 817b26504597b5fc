package dto

import (
	"time"

	"github.com/clinicsys/clinic-services/internal/domain"
)

const dateLayout = "2006-01-02"

// ProfileRequest is the create/replace payload for a user profile.
type ProfileRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`

	EmergencyContactName         string `json:"emergencyContactName"`
	EmergencyContactPhone        string `json:"emergencyContactPhone"`
	EmergencyContactRelationship string `json:"emergencyContactRelationship"`

	MedicalConditions  string `json:"medicalConditions"`
	Allergies          string `json:"allergies"`
	Medications        string `json:"medications"`
	SkinType           string `json:"skinType"`
	SkinSensitivity    string `json:"skinSensitivity"`
	PreviousTreatments string `json:"previousTreatments"`
	TreatmentGoals     string `json:"treatmentGoals"`

	PreferredClinicID        string `json:"preferredClinicId"`
	PreferredStaffID         string `json:"preferredStaffId"`
	PreferredAppointmentTime string `json:"preferredAppointmentTime"`
	PreferredDays            string `json:"preferredDays"`
	CommunicationPreferences string `json:"communicationPreferences"`
	LanguagePreference       string `json:"languagePreference"`
	Timezone                 string `json:"timezone"`

	MarketingConsent      bool `json:"marketingConsent"`
	DataProcessingConsent bool `json:"dataProcessingConsent"`
	PhotoConsent          bool `json:"photoConsent"`
}

// ToDomain converts the request to the domain model. An unparseable date is
// dropped rather than rejected.
func (r ProfileRequest) ToDomain() *domain.UserProfile {
	profile := &domain.UserProfile{
		FirstName:                    r.FirstName,
		LastName:                     r.LastName,
		Email:                        r.Email,
		PhoneNumber:                  r.PhoneNumber,
		Gender:                       domain.Gender(r.Gender),
		Address:                      r.Address,
		City:                         r.City,
		State:                        r.State,
		ZipCode:                      r.ZipCode,
		Country:                      r.Country,
		EmergencyContactName:         r.EmergencyContactName,
		EmergencyContactPhone:        r.EmergencyContactPhone,
		EmergencyContactRelationship: r.EmergencyContactRelationship,
		MedicalConditions:            r.MedicalConditions,
		Allergies:                    r.Allergies,
		Medications:                  r.Medications,
		SkinType:                     r.SkinType,
		SkinSensitivity:              r.SkinSensitivity,
		PreviousTreatments:           r.PreviousTreatments,
		TreatmentGoals:               r.TreatmentGoals,
		PreferredClinicID:            r.PreferredClinicID,
		PreferredStaffID:             r.PreferredStaffID,
		PreferredAppointmentTime:     r.PreferredAppointmentTime,
		PreferredDays:                r.PreferredDays,
		CommunicationPreferences:     r.CommunicationPreferences,
		LanguagePreference:           r.LanguagePreference,
		Timezone:                     r.Timezone,
		MarketingConsent:             r.MarketingConsent,
		DataProcessingConsent:        r.DataProcessingConsent,
		PhotoConsent:                 r.PhotoConsent,
	}
	if r.DateOfBirth != "" {
		if parsed, err := time.Parse(dateLayout, r.DateOfBirth); err == nil {
			profile.DateOfBirth = &parsed
		}
	}
	return profile
}

// ProfileResponse is the wire form of a user profile.
type ProfileResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      string `json:"gender,omitempty"`

	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`

	EmergencyContactName         string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone        string `json:"emergencyContactPhone,omitempty"`
	EmergencyContactRelationship string `json:"emergencyContactRelationship,omitempty"`

	MedicalConditions  string `json:"medicalConditions,omitempty"`
	Allergies          string `json:"allergies,omitempty"`
	Medications        string `json:"medications,omitempty"`
	SkinType           string `json:"skinType,omitempty"`
	SkinSensitivity    string `json:"skinSensitivity,omitempty"`
	PreviousTreatments string `json:"previousTreatments,omitempty"`
	TreatmentGoals     string `json:"treatmentGoals,omitempty"`

	CurrentTreatmentPlan  string `json:"currentTreatmentPlan,omitempty"`
	SessionsCompleted     int    `json:"sessionsCompleted"`
	TotalSessionsPlanned  int    `json:"totalSessionsPlanned"`
	LastSessionDate       string `json:"lastSessionDate,omitempty"`
	NextSessionDate       string `json:"nextSessionDate,omitempty"`
	TreatmentProgressNote string `json:"treatmentProgressNotes,omitempty"`

	PreferredClinicID        string `json:"preferredClinicId,omitempty"`
	PreferredStaffID         string `json:"preferredStaffId,omitempty"`
	PreferredAppointmentTime string `json:"preferredAppointmentTime,omitempty"`
	PreferredDays            string `json:"preferredDays,omitempty"`
	CommunicationPreferences string `json:"communicationPreferences,omitempty"`
	LanguagePreference       string `json:"languagePreference,omitempty"`
	Timezone                 string `json:"timezone,omitempty"`

	MarketingConsent      bool `json:"marketingConsent"`
	DataProcessingConsent bool `json:"dataProcessingConsent"`
	PhotoConsent          bool `json:"photoConsent"`

	Active               bool      `json:"active"`
	CompletionPercentage int       `json:"completionPercentage"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// NewProfileResponse maps a domain profile onto the wire form.
func NewProfileResponse(p *domain.UserProfile) ProfileResponse {
	resp := ProfileResponse{
		ID:                           p.ID,
		UserID:                       p.UserID,
		FirstName:                    p.FirstName,
		LastName:                     p.LastName,
		Email:                        p.Email,
		PhoneNumber:                  p.PhoneNumber,
		Gender:                       string(p.Gender),
		Address:                      p.Address,
		City:                         p.City,
		State:                        p.State,
		ZipCode:                      p.ZipCode,
		Country:                      p.Country,
		EmergencyContactName:         p.EmergencyContactName,
		EmergencyContactPhone:        p.EmergencyContactPhone,
		EmergencyContactRelationship: p.EmergencyContactRelationship,
		MedicalConditions:            p.MedicalConditions,
		Allergies:                    p.Allergies,
		Medications:                  p.Medications,
		SkinType:                     p.SkinType,
		SkinSensitivity:              p.SkinSensitivity,
		PreviousTreatments:           p.PreviousTreatments,
		TreatmentGoals:               p.TreatmentGoals,
		CurrentTreatmentPlan:         p.CurrentTreatmentPlan,
		SessionsCompleted:            p.SessionsCompleted,
		TotalSessionsPlanned:         p.TotalSessionsPlanned,
		TreatmentProgressNote:        p.TreatmentProgressNote,
		PreferredClinicID:            p.PreferredClinicID,
		PreferredStaffID:             p.PreferredStaffID,
		PreferredAppointmentTime:     p.PreferredAppointmentTime,
		PreferredDays:                p.PreferredDays,
		CommunicationPreferences:     p.CommunicationPreferences,
		LanguagePreference:           p.LanguagePreference,
		Timezone:                     p.Timezone,
		MarketingConsent:             p.MarketingConsent,
		DataProcessingConsent:        p.DataProcessingConsent,
		PhotoConsent:                 p.PhotoConsent,
		Active:                       p.Active,
		CompletionPercentage:         p.CompletionPercentage,
		CreatedAt:                    p.CreatedAt,
		UpdatedAt:                    p.UpdatedAt,
	}
	if p.DateOfBirth != nil {
		resp.DateOfBirth = p.DateOfBirth.Format(dateLayout)
	}
	if p.LastSessionDate != nil {
		resp.LastSessionDate = p.LastSessionDate.Format(dateLayout)
	}
	if p.NextSessionDate != nil {
		resp.NextSessionDate = p.NextSessionDate.Format(dateLayout)
	}
	return resp
}
