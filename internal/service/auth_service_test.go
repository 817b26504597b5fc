package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicsys/clinic-services/internal/config"
	"github.com/clinicsys/clinic-services/internal/domain"
	"github.com/clinicsys/clinic-services/internal/events"
	"github.com/clinicsys/clinic-services/internal/token"
	apperrors "github.com/clinicsys/clinic-services/pkg/util"
)

type memoryUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *memoryUserRepo) remove(id string) {
	if user, ok := r.byID[id]; ok {
		delete(r.byEmail, user.Email)
		delete(r.byID, id)
	}
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessTokenTTLHours:  1,
		RefreshTokenTTLHours: 168,
		BcryptCost:           bcrypt.MinCost,
		CookieName:           "jwt_token",
	}
}

func newTestAuthService(t *testing.T) (*AuthService, *memoryUserRepo, *token.Codec) {
	t.Helper()

	repo := newMemoryUserRepo()
	codec := token.NewCodec([]byte("auth-service-test-secret"))
	svc := NewAuthService(testAuthConfig(), AuthDependencies{
		UserRepo:   repo,
		Codec:      codec,
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     zap.NewNop(),
	})
	return svc, repo, codec
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "pw123456",
	}
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	svc, _, codec := newTestAuthService(t)

	result, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)

	assert.True(t, result.User.Active)
	assert.False(t, result.User.Verified)
	assert.Equal(t, domain.RoleUser, result.User.Role)
	assert.Equal(t, int64(3600000), result.ExpiresIn.Milliseconds())

	access, err := codec.Decode(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, access.Subject)
	assert.Equal(t, "USER", access.Role)
	assert.Equal(t, token.KindAccess, access.Kind)

	refresh, err := codec.Decode(result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, token.KindRefresh, refresh.Kind)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerInput("a@x.com"))
	assert.Equal(t, "CONFLICT", errorCode(t, err))
}

func TestLoginRotatesTokenPair(t *testing.T) {
	svc, _, codec := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)

	loggedIn, err := svc.Login(context.Background(), "a@x.com", "pw123456")
	require.NoError(t, err)

	assert.NotEqual(t, registered.AccessToken, loggedIn.AccessToken)
	assert.NotEqual(t, registered.RefreshToken, loggedIn.RefreshToken)

	claims, err := codec.Decode(loggedIn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.Subject)
	assert.Equal(t, string(registered.User.Role), claims.Role)
}

func TestLoginFailuresShareOneShape(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), "a@x.com", "wrong-password")
	_, unknownEmail := svc.Login(context.Background(), "nobody@x.com", "pw123456")

	assert.Equal(t, "UNAUTHORIZED", errorCode(t, wrongPassword))
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, unknownEmail))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginInactiveAccountRejected(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)

	result, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)

	result.User.Active = false
	require.NoError(t, repo.Update(context.Background(), result.User))

	_, err = svc.Login(context.Background(), "a@x.com", "pw123456")
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestRefreshIssuesNewPair(t *testing.T) {
	svc, _, codec := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), registered.RefreshToken)
	require.NoError(t, err)

	assert.NotEqual(t, registered.AccessToken, refreshed.AccessToken)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	claims, err := codec.Decode(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.Subject)

	// The presented refresh token is not invalidated; a second refresh with
	// the same token still succeeds.
	_, err = svc.Refresh(context.Background(), registered.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), registered.AccessToken)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestRefreshRejectsTamperedToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)

	raw := []byte(registered.RefreshToken)
	raw[len(raw)-2] ^= 0x01

	_, err = svc.Refresh(context.Background(), string(raw))
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestRefreshRejectsDeletedOrInactiveSubject(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)

	registered.User.Active = false
	require.NoError(t, repo.Update(context.Background(), registered.User))

	_, err = svc.Refresh(context.Background(), registered.RefreshToken)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))

	repo.remove(registered.User.ID)

	_, err = svc.Refresh(context.Background(), registered.RefreshToken)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestLogoutIsNoOp(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	assert.NoError(t, svc.Logout(context.Background(), "whatever"))
}
