package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/clinicsys/clinic-services/internal/domain"
	"github.com/clinicsys/clinic-services/internal/repository"
)

// ErrInvalidCredentials is the single failure returned by Verify. Unknown
// email, wrong password and deactivated account are indistinguishable so
// callers cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialVerifier checks presented credentials against the identity store.
type CredentialVerifier struct {
	users repository.UserRepository
}

// NewCredentialVerifier constructs a verifier.
func NewCredentialVerifier(users repository.UserRepository) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

// Verify returns the matching active user or ErrInvalidCredentials. The
// bcrypt comparison is constant-time; storage errors other than a missing
// row propagate unchanged.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
