package token

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes access tokens from refresh tokens. The claim is
// explicit so a short-lived access token can never stand in for a refresh
// token or the other way around.
type Kind string

const (
	KindAccess  Kind = "ACCESS"
	KindRefresh Kind = "REFRESH"
)

// Decode failure taxonomy. A token signed with a foreign key and a token
// with a garbled signature both surface as ErrInvalidSignature; callers can
// not distinguish the two cases.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// Claims is the signed JWT payload. Role is a bare role name, not a
// framework authority string. Authorities exists only so tokens minted by
// peer systems using the ROLE_ prefix convention still normalize; this
// codec never emits it.
type Claims struct {
	Role        string   `json:"role,omitempty"`
	Authorities []string `json:"authorities,omitempty"`
	Kind        Kind     `json:"kind,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies compact HS256 tokens with a single shared
// symmetric key. Safe for unrestricted concurrent use.
type Codec struct {
	secret []byte
}

// NewCodec builds a codec around the shared signing secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Encode serializes and signs the claims.
func (c *Codec) Encode(claims *Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Decode verifies the signature and expiry and returns the claims. Failures
// map onto ErrMalformed, ErrInvalidSignature and ErrExpired.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrInvalidSignature
	}
}
