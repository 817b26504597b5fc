package service

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicsys/clinic-services/internal/domain"
)

type memoryProfileRepo struct {
	byID     map[string]*domain.UserProfile
	byUserID map[string]*domain.UserProfile
}

func newMemoryProfileRepo() *memoryProfileRepo {
	return &memoryProfileRepo{
		byID:     make(map[string]*domain.UserProfile),
		byUserID: make(map[string]*domain.UserProfile),
	}
}

func (r *memoryProfileRepo) Create(_ context.Context, profile *domain.UserProfile) error {
	profile.ID = uuid.NewString()
	clone := *profile
	r.byID[profile.ID] = &clone
	r.byUserID[profile.UserID] = &clone
	return nil
}

func (r *memoryProfileRepo) Update(_ context.Context, profile *domain.UserProfile) error {
	if _, ok := r.byID[profile.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *profile
	r.byID[profile.ID] = &clone
	r.byUserID[profile.UserID] = &clone
	return nil
}

func (r *memoryProfileRepo) GetByID(_ context.Context, id string) (*domain.UserProfile, error) {
	profile, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *profile
	return &clone, nil
}

func (r *memoryProfileRepo) GetByUserID(_ context.Context, userID string) (*domain.UserProfile, error) {
	profile, ok := r.byUserID[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *profile
	return &clone, nil
}

func (r *memoryProfileRepo) List(_ context.Context, limit, offset int) ([]*domain.UserProfile, error) {
	var out []*domain.UserProfile
	for _, profile := range r.byID {
		clone := *profile
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memoryProfileRepo) Search(_ context.Context, query string, limit, offset int) ([]*domain.UserProfile, error) {
	needle := strings.ToLower(query)
	var out []*domain.UserProfile
	for _, profile := range r.byID {
		haystack := strings.ToLower(profile.FirstName + " " + profile.LastName + " " + profile.Email)
		if strings.Contains(haystack, needle) {
			clone := *profile
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memoryProfileRepo) Delete(_ context.Context, id string) error {
	profile, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(r.byUserID, profile.UserID)
	delete(r.byID, id)
	return nil
}

func newTestProfileService(t *testing.T) (*ProfileService, *memoryProfileRepo) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryProfileRepo()
	return NewProfileService(repo, client, zap.NewNop()), repo
}

func TestCreateForUserComputesCompletion(t *testing.T) {
	svc, _ := newTestProfileService(t)

	profile, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "a@x.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "user-1", profile.UserID)
	assert.True(t, profile.Active)
	assert.Equal(t, "ENGLISH", profile.LanguagePreference)
	assert.Equal(t, 3*100/13, profile.CompletionPercentage)
}

func TestCreateForUserDuplicateConflicts(t *testing.T) {
	svc, _ := newTestProfileService(t)

	_, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{FirstName: "Ada"})
	require.NoError(t, err)

	_, err = svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{FirstName: "Ada"})
	assert.Equal(t, "CONFLICT", errorCode(t, err))
}

func TestGetByUserIDServesFromCache(t *testing.T) {
	svc, repo := newTestProfileService(t)

	created, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{FirstName: "Ada"})
	require.NoError(t, err)

	first, err := svc.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", first.FirstName)

	// Mutate the store behind the cache; the cached copy still wins.
	repo.byUserID["user-1"].FirstName = "Grace"
	repo.byID[created.ID].FirstName = "Grace"

	cached, err := svc.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", cached.FirstName)

	// Any write invalidates; the next read sees the store.
	_, err = svc.UpdateSection(context.Background(), "user-1", "personal-info", map[string]any{"city": "London"})
	require.NoError(t, err)

	fresh, err := svc.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "London", fresh.City)
}

func TestGetByUserIDMissingProfile(t *testing.T) {
	svc, _ := newTestProfileService(t)

	_, err := svc.GetByUserID(context.Background(), "nobody")
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestReplaceForUserKeepsClinicManagedFields(t *testing.T) {
	svc, _ := newTestProfileService(t)

	_, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{
		FirstName:   "Ada",
		PhoneNumber: "555-1234",
	})
	require.NoError(t, err)

	_, err = svc.UpdateSection(context.Background(), "user-1", "treatment-progress", map[string]any{
		"currentTreatmentPlan": "laser plan",
		"sessionsCompleted":    float64(4),
	})
	require.NoError(t, err)

	replaced, err := svc.ReplaceForUser(context.Background(), "user-1", &domain.UserProfile{
		FirstName: "Grace",
		LastName:  "Hopper",
	})
	require.NoError(t, err)

	assert.Equal(t, "Grace", replaced.FirstName)
	assert.Equal(t, "Hopper", replaced.LastName)
	// Fields absent from the payload keep their stored values.
	assert.Equal(t, "555-1234", replaced.PhoneNumber)
	// Clinic-managed state survives the replace.
	assert.Equal(t, "laser plan", replaced.CurrentTreatmentPlan)
	assert.Equal(t, 4, replaced.SessionsCompleted)
	assert.True(t, replaced.Active)

	stored, err := svc.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "laser plan", stored.CurrentTreatmentPlan)
	assert.Equal(t, 4, stored.SessionsCompleted)
	assert.True(t, stored.Active)
}

func TestReplaceByIDMergesFields(t *testing.T) {
	svc, _ := newTestProfileService(t)

	created, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{
		FirstName: "Ada",
		Email:     "a@x.com",
	})
	require.NoError(t, err)

	updated, err := svc.ReplaceByID(context.Background(), created.ID, &domain.UserProfile{
		City: "London",
	})
	require.NoError(t, err)

	assert.Equal(t, "London", updated.City)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.True(t, updated.Active)

	_, err = svc.ReplaceByID(context.Background(), "missing-id", &domain.UserProfile{})
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestDeleteByID(t *testing.T) {
	svc, _ := newTestProfileService(t)

	created, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{FirstName: "Ada"})
	require.NoError(t, err)

	// Warm the cache so the delete has something to invalidate.
	_, err = svc.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByID(context.Background(), created.ID))

	_, err = svc.GetByUserID(context.Background(), "user-1")
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))

	assert.Equal(t, "NOT_FOUND", errorCode(t, svc.DeleteByID(context.Background(), created.ID)))
}

func TestSearchProfiles(t *testing.T) {
	svc, _ := newTestProfileService(t)

	_, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com",
	})
	require.NoError(t, err)
	_, err = svc.CreateForUser(context.Background(), "user-2", &domain.UserProfile{
		FirstName: "Grace", LastName: "Hopper", Email: "grace@x.com",
	})
	require.NoError(t, err)

	matches, err := svc.Search(context.Background(), "lovelace", 20, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Ada", matches[0].FirstName)

	all, err := svc.Search(context.Background(), "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateSectionPersonalInfo(t *testing.T) {
	svc, _ := newTestProfileService(t)

	_, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{})
	require.NoError(t, err)

	updated, err := svc.UpdateSection(context.Background(), "user-1", "personal-info", map[string]any{
		"firstName":   "Ada",
		"lastName":    "Lovelace",
		"email":       "a@x.com",
		"dateOfBirth": "1990-12-10",
		"gender":      "FEMALE",
		"unknownKey":  "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, domain.GenderFemale, updated.Gender)
	require.NotNil(t, updated.DateOfBirth)
	assert.Equal(t, 1990, updated.DateOfBirth.Year())
	assert.Equal(t, 5*100/13, updated.CompletionPercentage)
}

func TestUpdateSectionTreatmentProgress(t *testing.T) {
	svc, _ := newTestProfileService(t)

	_, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{})
	require.NoError(t, err)

	// JSON numbers decode as float64.
	updated, err := svc.UpdateSection(context.Background(), "user-1", "treatment-progress", map[string]any{
		"sessionsCompleted":    float64(3),
		"totalSessionsPlanned": float64(10),
		"nextSessionDate":      "2026-09-01",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, updated.SessionsCompleted)
	assert.Equal(t, 10, updated.TotalSessionsPlanned)
	require.NotNil(t, updated.NextSessionDate)
}

func TestUpdateSectionConsents(t *testing.T) {
	svc, _ := newTestProfileService(t)

	_, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{})
	require.NoError(t, err)

	updated, err := svc.UpdateSection(context.Background(), "user-1", "consents", map[string]any{
		"marketingConsent": true,
		"photoConsent":     true,
	})
	require.NoError(t, err)

	assert.True(t, updated.MarketingConsent)
	assert.True(t, updated.PhotoConsent)
	assert.False(t, updated.DataProcessingConsent) // untouched key keeps its value
}

func TestUpdateSectionUnknownSection(t *testing.T) {
	svc, _ := newTestProfileService(t)

	_, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{})
	require.NoError(t, err)

	_, err = svc.UpdateSection(context.Background(), "user-1", "billing", map[string]any{})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
}

func TestCompletionReport(t *testing.T) {
	svc, _ := newTestProfileService(t)

	_, err := svc.CreateForUser(context.Background(), "user-1", &domain.UserProfile{
		FirstName: "Ada",
	})
	require.NoError(t, err)

	report, err := svc.Completion(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1*100/13, report["completionPercentage"])
}
