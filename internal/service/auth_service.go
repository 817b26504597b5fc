package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/clinicsys/clinic-services/internal/auth"
	"github.com/clinicsys/clinic-services/internal/config"
	"github.com/clinicsys/clinic-services/internal/domain"
	"github.com/clinicsys/clinic-services/internal/events"
	"github.com/clinicsys/clinic-services/internal/repository"
	"github.com/clinicsys/clinic-services/internal/token"
	apperrors "github.com/clinicsys/clinic-services/pkg/util"
)

// RegisterInput carries the registration payload.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PhoneNumber string
	Role        string
}

// AuthResult bundles the issued token pair with the authenticated identity.
// ExpiresIn is the access token lifetime.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// AuthService orchestrates register, login and refresh. Every internal
// failure kind (bad password, expired token, missing user, deactivated
// account) collapses to a single Unauthorized at this boundary; the precise
// reason only reaches the log.
type AuthService struct {
	users      repository.UserRepository
	verifier   *auth.CredentialVerifier
	codec      *token.Codec
	issuer     *token.Issuer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	accessTTL  time.Duration
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Codec      *token.Codec
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		verifier:   auth.NewCredentialVerifier(deps.UserRepo),
		codec:      deps.Codec,
		issuer:     token.NewIssuer(deps.Codec, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL()),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.BcryptCost,
		accessTTL:  cfg.AccessTokenTTL(),
	}
}

// Register creates a new identity and issues its first token pair. The
// account starts active and unverified.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		Role:         domain.ParseRole(input.Role),
		Active:       true,
		Verified:     false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserRegistered,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload: events.UserRegisteredPayload{
			Email:     user.Email,
			FirstName: user.FirstName,
			Role:      string(user.Role),
		},
	})

	return s.issuePair(user)
}

// Login verifies credentials and rotates a fresh token pair. Bad password,
// unknown email and deactivated account are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Info("login rejected", zap.String("email", email))
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserLoggedIn,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload:   events.UserLoggedInPayload{Email: user.Email},
	})

	return s.issuePair(user)
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token stays valid until it expires; concurrent refreshes each succeed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		s.logger.Info("refresh rejected", zap.Error(err))
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	if claims.Kind != token.KindRefresh {
		s.logger.Info("refresh rejected: not a refresh token", zap.String("sub", claims.Subject))
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("refresh rejected: unknown subject", zap.String("sub", claims.Subject))
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}
	if !user.Active {
		s.logger.Info("refresh rejected: inactive account", zap.String("sub", claims.Subject))
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	return s.issuePair(user)
}

// Logout is a stateless no-op: tokens stay valid until expiry.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

func (s *AuthService) issuePair(user *domain.User) (*AuthResult, error) {
	accessToken, _, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.issuer.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.accessTTL,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
