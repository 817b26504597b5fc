package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicsys/clinic-services/internal/domain"
)

// ProfileRepository defines persistence access for user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) error
	Update(ctx context.Context, profile *domain.UserProfile) error
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)
	GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
	List(ctx context.Context, limit, offset int) ([]*domain.UserProfile, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*domain.UserProfile, error)
	Delete(ctx context.Context, id string) error
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `
    id, user_id, first_name, last_name, email, phone_number, date_of_birth, gender,
    address, city, state, zip_code, country,
    emergency_contact_name, emergency_contact_phone, emergency_contact_relationship,
    medical_conditions, allergies, medications, skin_type, skin_sensitivity,
    previous_treatments, treatment_goals,
    current_treatment_plan, sessions_completed, total_sessions_planned,
    last_session_date, next_session_date, treatment_progress_note,
    preferred_clinic_id, preferred_staff_id, preferred_appointment_time,
    preferred_days, communication_preferences, language_preference, timezone,
    marketing_consent, data_processing_consent, photo_consent,
    active, completion_percentage, created_at, updated_at`

func (r *profileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        INSERT INTO user_profiles (
            user_id, first_name, last_name, email, phone_number, date_of_birth, gender,
            address, city, state, zip_code, country,
            emergency_contact_name, emergency_contact_phone, emergency_contact_relationship,
            medical_conditions, allergies, medications, skin_type, skin_sensitivity,
            previous_treatments, treatment_goals,
            current_treatment_plan, sessions_completed, total_sessions_planned,
            last_session_date, next_session_date, treatment_progress_note,
            preferred_clinic_id, preferred_staff_id, preferred_appointment_time,
            preferred_days, communication_preferences, language_preference, timezone,
            marketing_consent, data_processing_consent, photo_consent,
            active, completion_percentage)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
                $21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,$39,$40)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.FirstName,
		profile.LastName,
		profile.Email,
		profile.PhoneNumber,
		profile.DateOfBirth,
		profile.Gender,
		profile.Address,
		profile.City,
		profile.State,
		profile.ZipCode,
		profile.Country,
		profile.EmergencyContactName,
		profile.EmergencyContactPhone,
		profile.EmergencyContactRelationship,
		profile.MedicalConditions,
		profile.Allergies,
		profile.Medications,
		profile.SkinType,
		profile.SkinSensitivity,
		profile.PreviousTreatments,
		profile.TreatmentGoals,
		profile.CurrentTreatmentPlan,
		profile.SessionsCompleted,
		profile.TotalSessionsPlanned,
		profile.LastSessionDate,
		profile.NextSessionDate,
		profile.TreatmentProgressNote,
		profile.PreferredClinicID,
		profile.PreferredStaffID,
		profile.PreferredAppointmentTime,
		profile.PreferredDays,
		profile.CommunicationPreferences,
		profile.LanguagePreference,
		profile.Timezone,
		profile.MarketingConsent,
		profile.DataProcessingConsent,
		profile.PhotoConsent,
		profile.Active,
		profile.CompletionPercentage,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        UPDATE user_profiles SET
            first_name=$1, last_name=$2, email=$3, phone_number=$4, date_of_birth=$5, gender=$6,
            address=$7, city=$8, state=$9, zip_code=$10, country=$11,
            emergency_contact_name=$12, emergency_contact_phone=$13, emergency_contact_relationship=$14,
            medical_conditions=$15, allergies=$16, medications=$17, skin_type=$18, skin_sensitivity=$19,
            previous_treatments=$20, treatment_goals=$21,
            current_treatment_plan=$22, sessions_completed=$23, total_sessions_planned=$24,
            last_session_date=$25, next_session_date=$26, treatment_progress_note=$27,
            preferred_clinic_id=$28, preferred_staff_id=$29, preferred_appointment_time=$30,
            preferred_days=$31, communication_preferences=$32, language_preference=$33, timezone=$34,
            marketing_consent=$35, data_processing_consent=$36, photo_consent=$37,
            active=$38, completion_percentage=$39, updated_at=NOW()
        WHERE id=$40`

	cmd, err := r.pool.Exec(ctx, query,
		profile.FirstName,
		profile.LastName,
		profile.Email,
		profile.PhoneNumber,
		profile.DateOfBirth,
		profile.Gender,
		profile.Address,
		profile.City,
		profile.State,
		profile.ZipCode,
		profile.Country,
		profile.EmergencyContactName,
		profile.EmergencyContactPhone,
		profile.EmergencyContactRelationship,
		profile.MedicalConditions,
		profile.Allergies,
		profile.Medications,
		profile.SkinType,
		profile.SkinSensitivity,
		profile.PreviousTreatments,
		profile.TreatmentGoals,
		profile.CurrentTreatmentPlan,
		profile.SessionsCompleted,
		profile.TotalSessionsPlanned,
		profile.LastSessionDate,
		profile.NextSessionDate,
		profile.TreatmentProgressNote,
		profile.PreferredClinicID,
		profile.PreferredStaffID,
		profile.PreferredAppointmentTime,
		profile.PreferredDays,
		profile.CommunicationPreferences,
		profile.LanguagePreference,
		profile.Timezone,
		profile.MarketingConsent,
		profile.DataProcessingConsent,
		profile.PhotoConsent,
		profile.Active,
		profile.CompletionPercentage,
		profile.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id=$1`
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id=$1`
	return scanProfile(r.pool.QueryRow(ctx, query, userID))
}

func (r *profileRepository) List(ctx context.Context, limit, offset int) ([]*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectProfiles(rows)
}

func (r *profileRepository) Search(ctx context.Context, query string, limit, offset int) ([]*domain.UserProfile, error) {
	sql := `SELECT ` + profileColumns + ` FROM user_profiles
        WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, sql, "%"+query+"%", limit, offset)
	if err != nil {
		return nil, err
	}
	return collectProfiles(rows)
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM user_profiles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func collectProfiles(rows pgx.Rows) ([]*domain.UserProfile, error) {
	defer rows.Close()

	var profiles []*domain.UserProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.PhoneNumber,
		&p.DateOfBirth,
		&p.Gender,
		&p.Address,
		&p.City,
		&p.State,
		&p.ZipCode,
		&p.Country,
		&p.EmergencyContactName,
		&p.EmergencyContactPhone,
		&p.EmergencyContactRelationship,
		&p.MedicalConditions,
		&p.Allergies,
		&p.Medications,
		&p.SkinType,
		&p.SkinSensitivity,
		&p.PreviousTreatments,
		&p.TreatmentGoals,
		&p.CurrentTreatmentPlan,
		&p.SessionsCompleted,
		&p.TotalSessionsPlanned,
		&p.LastSessionDate,
		&p.NextSessionDate,
		&p.TreatmentProgressNote,
		&p.PreferredClinicID,
		&p.PreferredStaffID,
		&p.PreferredAppointmentTime,
		&p.PreferredDays,
		&p.CommunicationPreferences,
		&p.LanguagePreference,
		&p.Timezone,
		&p.MarketingConsent,
		&p.DataProcessingConsent,
		&p.PhotoConsent,
		&p.Active,
		&p.CompletionPercentage,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
