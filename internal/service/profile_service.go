package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clinicsys/clinic-services/internal/domain"
	"github.com/clinicsys/clinic-services/internal/repository"
	apperrors "github.com/clinicsys/clinic-services/pkg/util"
)

const profileCacheTTL = 5 * time.Minute

// ProfileService manages user profiles. Reads go through a write-invalidated
// Redis cache; a missing or unreachable cache degrades to the repository.
type ProfileService struct {
	profiles repository.ProfileRepository
	cache    *redis.Client
	logger   *zap.Logger
}

// NewProfileService builds the service. cache may be nil.
func NewProfileService(profiles repository.ProfileRepository, cache *redis.Client, logger *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, cache: cache, logger: logger}
}

// GetByUserID returns the caller's profile.
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if cached := s.cacheGet(ctx, userID); cached != nil {
		return cached, nil
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"user_id": userID})
		}
		return nil, err
	}

	s.cacheSet(ctx, profile)
	return profile, nil
}

// GetByID returns a profile by primary id (admin access).
func (s *ProfileService) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"id": id})
		}
		return nil, err
	}
	return profile, nil
}

// List returns a page of profiles (admin access).
func (s *ProfileService) List(ctx context.Context, limit, offset int) ([]*domain.UserProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.profiles.List(ctx, limit, offset)
}

// CreateForUser creates the caller's profile.
func (s *ProfileService) CreateForUser(ctx context.Context, userID string, profile *domain.UserProfile) (*domain.UserProfile, error) {
	if _, err := s.profiles.GetByUserID(ctx, userID); err == nil {
		return nil, apperrors.NewConflict("profile already exists", map[string]any{"user_id": userID})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	profile.UserID = userID
	profile.Active = true
	if profile.LanguagePreference == "" {
		profile.LanguagePreference = "ENGLISH"
	}
	if profile.Timezone == "" {
		profile.Timezone = "UTC"
	}
	profile.RecalculateCompletion()

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, userID)
	return profile, nil
}

// ReplaceForUser applies a full-document update to the caller's profile.
// Clinic-managed state (treatment progress, the active flag) is not part of
// the payload and survives the replace; empty payload fields leave the
// stored value alone.
func (s *ProfileService) ReplaceForUser(ctx context.Context, userID string, updated *domain.UserProfile) (*domain.UserProfile, error) {
	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	mergeEditableFields(profile, updated)
	profile.RecalculateCompletion()

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, userID)
	return profile, nil
}

// ReplaceByID applies the same merge to an arbitrary profile (admin access).
func (s *ProfileService) ReplaceByID(ctx context.Context, id string, updated *domain.UserProfile) (*domain.UserProfile, error) {
	profile, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mergeEditableFields(profile, updated)
	profile.RecalculateCompletion()

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, profile.UserID)
	return profile, nil
}

// DeleteByID removes a profile (admin access).
func (s *ProfileService) DeleteByID(ctx context.Context, id string) error {
	profile, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.profiles.Delete(ctx, profile.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("profile", map[string]any{"id": id})
		}
		return err
	}
	s.cacheInvalidate(ctx, profile.UserID)
	return nil
}

// Search returns profiles whose name or email matches the query (admin
// access).
func (s *ProfileService) Search(ctx context.Context, query string, limit, offset int) ([]*domain.UserProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.profiles.Search(ctx, query, limit, offset)
}

// UpdateSection applies a partial update to one profile section. Unknown
// sections are a validation error; unknown keys inside a section are
// ignored, matching the permissive PATCH contract the clients rely on.
func (s *ProfileService) UpdateSection(ctx context.Context, userID, section string, updates map[string]any) (*domain.UserProfile, error) {
	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch section {
	case "personal-info":
		applyPersonalInfo(profile, updates)
	case "medical-info":
		applyMedicalInfo(profile, updates)
	case "preferences":
		applyPreferences(profile, updates)
	case "emergency-contact":
		applyEmergencyContact(profile, updates)
	case "treatment-progress":
		applyTreatmentProgress(profile, updates)
	case "consents":
		applyConsents(profile, updates)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown profile section %q", section), nil)
	}

	profile.RecalculateCompletion()
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, userID)
	return profile, nil
}

// Completion reports the derived completion status for the caller.
func (s *ProfileService) Completion(ctx context.Context, userID string) (map[string]any, error) {
	profile, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"completionPercentage": profile.CompletionPercentage,
		"updatedAt":            profile.UpdatedAt,
	}, nil
}

// mergeEditableFields copies the user-editable fields of src onto dst,
// skipping empty values. Consent flags always apply because the payload
// carries them explicitly. ID, UserID, CreatedAt, Active and the
// treatment-progress fields are never copied.
func mergeEditableFields(dst, src *domain.UserProfile) {
	mergeString(&dst.FirstName, src.FirstName)
	mergeString(&dst.LastName, src.LastName)
	mergeString(&dst.Email, src.Email)
	mergeString(&dst.PhoneNumber, src.PhoneNumber)
	if src.DateOfBirth != nil {
		dst.DateOfBirth = src.DateOfBirth
	}
	if src.Gender != "" {
		dst.Gender = src.Gender
	}
	mergeString(&dst.Address, src.Address)
	mergeString(&dst.City, src.City)
	mergeString(&dst.State, src.State)
	mergeString(&dst.ZipCode, src.ZipCode)
	mergeString(&dst.Country, src.Country)
	mergeString(&dst.EmergencyContactName, src.EmergencyContactName)
	mergeString(&dst.EmergencyContactPhone, src.EmergencyContactPhone)
	mergeString(&dst.EmergencyContactRelationship, src.EmergencyContactRelationship)
	mergeString(&dst.MedicalConditions, src.MedicalConditions)
	mergeString(&dst.Allergies, src.Allergies)
	mergeString(&dst.Medications, src.Medications)
	mergeString(&dst.SkinType, src.SkinType)
	mergeString(&dst.SkinSensitivity, src.SkinSensitivity)
	mergeString(&dst.PreviousTreatments, src.PreviousTreatments)
	mergeString(&dst.TreatmentGoals, src.TreatmentGoals)
	mergeString(&dst.PreferredClinicID, src.PreferredClinicID)
	mergeString(&dst.PreferredStaffID, src.PreferredStaffID)
	mergeString(&dst.PreferredAppointmentTime, src.PreferredAppointmentTime)
	mergeString(&dst.PreferredDays, src.PreferredDays)
	mergeString(&dst.CommunicationPreferences, src.CommunicationPreferences)
	mergeString(&dst.LanguagePreference, src.LanguagePreference)
	mergeString(&dst.Timezone, src.Timezone)
	dst.MarketingConsent = src.MarketingConsent
	dst.DataProcessingConsent = src.DataProcessingConsent
	dst.PhotoConsent = src.PhotoConsent
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func applyPersonalInfo(p *domain.UserProfile, updates map[string]any) {
	setString(updates, "firstName", &p.FirstName)
	setString(updates, "lastName", &p.LastName)
	setString(updates, "email", &p.Email)
	setString(updates, "phoneNumber", &p.PhoneNumber)
	setDate(updates, "dateOfBirth", &p.DateOfBirth)
	if v, ok := stringValue(updates, "gender"); ok {
		p.Gender = domain.Gender(v)
	}
	setString(updates, "address", &p.Address)
	setString(updates, "city", &p.City)
	setString(updates, "state", &p.State)
	setString(updates, "zipCode", &p.ZipCode)
	setString(updates, "country", &p.Country)
}

func applyMedicalInfo(p *domain.UserProfile, updates map[string]any) {
	setString(updates, "medicalConditions", &p.MedicalConditions)
	setString(updates, "allergies", &p.Allergies)
	setString(updates, "medications", &p.Medications)
	setString(updates, "skinType", &p.SkinType)
	setString(updates, "skinSensitivity", &p.SkinSensitivity)
	setString(updates, "previousTreatments", &p.PreviousTreatments)
	setString(updates, "treatmentGoals", &p.TreatmentGoals)
}

func applyPreferences(p *domain.UserProfile, updates map[string]any) {
	setString(updates, "preferredClinicId", &p.PreferredClinicID)
	setString(updates, "preferredStaffId", &p.PreferredStaffID)
	setString(updates, "preferredAppointmentTime", &p.PreferredAppointmentTime)
	setString(updates, "preferredDays", &p.PreferredDays)
	setString(updates, "communicationPreferences", &p.CommunicationPreferences)
	setString(updates, "languagePreference", &p.LanguagePreference)
	setString(updates, "timezone", &p.Timezone)
}

func applyEmergencyContact(p *domain.UserProfile, updates map[string]any) {
	setString(updates, "emergencyContactName", &p.EmergencyContactName)
	setString(updates, "emergencyContactPhone", &p.EmergencyContactPhone)
	setString(updates, "emergencyContactRelationship", &p.EmergencyContactRelationship)
}

func applyTreatmentProgress(p *domain.UserProfile, updates map[string]any) {
	setString(updates, "currentTreatmentPlan", &p.CurrentTreatmentPlan)
	setInt(updates, "sessionsCompleted", &p.SessionsCompleted)
	setInt(updates, "totalSessionsPlanned", &p.TotalSessionsPlanned)
	setDate(updates, "lastSessionDate", &p.LastSessionDate)
	setDate(updates, "nextSessionDate", &p.NextSessionDate)
	setString(updates, "treatmentProgressNotes", &p.TreatmentProgressNote)
}

func applyConsents(p *domain.UserProfile, updates map[string]any) {
	setBool(updates, "marketingConsent", &p.MarketingConsent)
	setBool(updates, "dataProcessingConsent", &p.DataProcessingConsent)
	setBool(updates, "photoConsent", &p.PhotoConsent)
}

func stringValue(updates map[string]any, key string) (string, bool) {
	raw, ok := updates[key]
	if !ok {
		return "", false
	}
	val, ok := raw.(string)
	return val, ok
}

func setString(updates map[string]any, key string, dst *string) {
	if val, ok := stringValue(updates, key); ok {
		*dst = val
	}
}

func setBool(updates map[string]any, key string, dst *bool) {
	if raw, ok := updates[key]; ok {
		if val, ok := raw.(bool); ok {
			*dst = val
		}
	}
}

// setInt accepts float64 because decoded JSON numbers arrive that way.
func setInt(updates map[string]any, key string, dst *int) {
	switch val := updates[key].(type) {
	case float64:
		*dst = int(val)
	case int:
		*dst = val
	}
}

func setDate(updates map[string]any, key string, dst **time.Time) {
	val, ok := stringValue(updates, key)
	if !ok {
		return
	}
	parsed, err := time.Parse("2006-01-02", val)
	if err != nil {
		return
	}
	*dst = &parsed
}

func profileCacheKey(userID string) string {
	return "profile:user:" + userID
}

func (s *ProfileService) cacheGet(ctx context.Context, userID string) *domain.UserProfile {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, profileCacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("profile cache read failed", zap.Error(err))
		}
		return nil
	}
	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil
	}
	return &profile
}

func (s *ProfileService) cacheSet(ctx context.Context, profile *domain.UserProfile) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, profileCacheKey(profile.UserID), raw, profileCacheTTL).Err(); err != nil {
		s.logger.Warn("profile cache write failed", zap.Error(err))
	}
}

func (s *ProfileService) cacheInvalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, profileCacheKey(userID)).Err(); err != nil {
		s.logger.Warn("profile cache invalidation failed", zap.Error(err))
	}
}
