package token

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clinicsys/clinic-services/internal/domain"
)

// Issuer mints access and refresh tokens for a verified identity. Issuing
// is a pure function of the identity, the clock and the configured
// lifetimes; nothing is persisted.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer builds an issuer with the two lifetime horizons.
func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}
	return &Issuer{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccessToken signs a short-lived access token for the user.
func (i *Issuer) IssueAccessToken(user *domain.User) (string, time.Time, error) {
	return i.issue(user, KindAccess, i.accessTTL)
}

// IssueRefreshToken signs a longer-lived refresh token for the user.
func (i *Issuer) IssueRefreshToken(user *domain.User) (string, time.Time, error) {
	return i.issue(user, KindRefresh, i.refreshTTL)
}

func (i *Issuer) issue(user *domain.User, kind Kind, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Role: string(user.Role),
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := i.codec.Encode(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
