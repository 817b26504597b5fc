package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/clinicsys/clinic-services/internal/observability"
	"github.com/clinicsys/clinic-services/internal/token"
)

const authContextKey = "auth_context"

// Context is the per-request resolved caller. Role is empty when the token
// carried no usable role claim; the caller is then authenticated but
// roleless.
type Context struct {
	SubjectID string
	Role      string
}

// AuthenticatorConfig composes the filter per service. Every service shares
// the same extraction and validation pipeline and differs only in which
// paths bypass it.
type AuthenticatorConfig struct {
	// CookieName is checked before the Authorization header.
	CookieName string
	// ExcludedPrefixes bypass the filter entirely (prefix match).
	ExcludedPrefixes []string
	// ExcludedPaths bypass the filter entirely (exact match).
	ExcludedPaths []string
}

// BaseExclusions returns the exclusion set every service starts from:
// health probes, the error page and /public/. Services append their own
// public prefixes via extraPrefixes.
func BaseExclusions(extraPrefixes ...string) (prefixes, paths []string) {
	prefixes = append([]string{"/health", "/public/"}, extraPrefixes...)
	return prefixes, []string{"/error"}
}

// RequestAuthenticator validates inbound tokens and installs the request
// auth context. It never rejects a request: a missing or undecodable token
// degrades to anonymous and the authorization guards decide what anonymous
// is allowed to do.
type RequestAuthenticator struct {
	codec   *token.Codec
	cfg     AuthenticatorConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRequestAuthenticator wires the filter for one service.
func NewRequestAuthenticator(codec *token.Codec, cfg AuthenticatorConfig, logger *zap.Logger, metrics *observability.Metrics) *RequestAuthenticator {
	if cfg.CookieName == "" {
		cfg.CookieName = "jwt_token"
	}
	return &RequestAuthenticator{codec: codec, cfg: cfg, logger: logger, metrics: metrics}
}

// Handle runs once per request, before business handlers.
func (a *RequestAuthenticator) Handle(c *fiber.Ctx) error {
	if a.excluded(c.Path()) {
		return c.Next()
	}

	tokenStr := a.extractToken(c)
	if tokenStr == "" {
		return c.Next()
	}

	claims, err := a.codec.Decode(tokenStr)
	if err != nil {
		a.metrics.RecordTokenValidation(validationOutcome(err))
		a.logger.Warn("token validation failed", zap.Error(err))
		return c.Next()
	}

	// Refresh tokens are only good for the refresh endpoint; at the request
	// edge they count as no token at all.
	if claims.Kind == token.KindRefresh {
		a.metrics.RecordTokenValidation("wrong_kind")
		a.logger.Warn("refresh token presented as access token", zap.String("sub", claims.Subject))
		return c.Next()
	}

	a.metrics.RecordTokenValidation("ok")

	if c.Locals(authContextKey) == nil {
		c.Locals(authContextKey, &Context{
			SubjectID: claims.Subject,
			Role:      NormalizeRole(claims),
		})
	}
	return c.Next()
}

// extractToken checks the cookie first, then the Authorization header.
func (a *RequestAuthenticator) extractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(a.cfg.CookieName); cookie != "" {
		return cookie
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func (a *RequestAuthenticator) excluded(path string) bool {
	for _, p := range a.cfg.ExcludedPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range a.cfg.ExcludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// NormalizeRole recovers a bare role name from the claims: an explicit role
// claim wins; otherwise the first ROLE_-prefixed authorities entry is
// stripped to its bare name; otherwise empty.
func NormalizeRole(claims *token.Claims) string {
	if claims.Role != "" {
		return claims.Role
	}
	for _, authority := range claims.Authorities {
		if strings.HasPrefix(authority, "ROLE_") {
			return strings.TrimPrefix(authority, "ROLE_")
		}
	}
	return ""
}

func validationOutcome(err error) string {
	switch err {
	case token.ErrExpired:
		return "expired"
	case token.ErrMalformed:
		return "malformed"
	default:
		return "invalid_signature"
	}
}

// ContextFrom retrieves the installed auth context, if any.
func ContextFrom(c *fiber.Ctx) (*Context, bool) {
	val := c.Locals(authContextKey)
	if val == nil {
		return nil, false
	}
	authCtx, ok := val.(*Context)
	return authCtx, ok
}
