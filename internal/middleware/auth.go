package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SessionCookieName is the cookie the identity provider's frontend SDK stores the session token in
const SessionCookieName = "__session"

// ErrMissingToken is returned when a request carries neither a bearer token nor a session cookie
var ErrMissingToken = errors.New("missing token")

// CustomClaims contains the session claims the provider adds to its JWTs
type CustomClaims struct {
	SessionID       string `json:"sid"`
	AuthorizedParty string `json:"azp"`
	OrgID           string `json:"org_id,omitempty"`

	allowedParties []string
}

// Validate implements validator.CustomClaims.
// When authorized parties are configured the azp claim must be one of them.
func (c *CustomClaims) Validate(ctx context.Context) error {
	if len(c.allowedParties) == 0 || c.AuthorizedParty == "" {
		return nil
	}
	for _, p := range c.allowedParties {
		if p == c.AuthorizedParty {
			return nil
		}
	}
	return fmt.Errorf("unauthorized party %q", c.AuthorizedParty)
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// PrincipalIDKey is the context key for the authenticated user ID (subject)
	PrincipalIDKey contextKey = "principal_id"
)

// TokenValidator validates a raw JWT. *validator.Validator satisfies it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// AuthMiddleware resolves the request principal from a session JWT
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates an AuthMiddleware that validates RS256 tokens against the issuer's JWKS
func NewAuthMiddleware(issuer, audience string, authorizedParties []string) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse(strings.TrimSuffix(issuer, "/") + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		strings.TrimSuffix(issuer, "/"),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{allowedParties: authorizedParties}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return NewAuthMiddlewareWithValidator(jwtValidator), nil
}

// NewAuthMiddlewareWithValidator creates an AuthMiddleware around an existing validator
func NewAuthMiddlewareWithValidator(v TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: v}
}

// ResolvePrincipal validates token and returns its subject
func (m *AuthMiddleware) ResolvePrincipal(ctx context.Context, token string) (string, error) {
	claims, err := m.validate(ctx, token)
	if err != nil {
		return "", err
	}
	return claims.RegisteredClaims.Subject, nil
}

func (m *AuthMiddleware) validate(ctx context.Context, token string) (*validator.ValidatedClaims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := m.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok || validatedClaims.RegisteredClaims.Subject == "" {
		return nil, errors.New("invalid claims")
	}
	return validatedClaims, nil
}

// Authenticate returns an Echo middleware that decorates the request context with the
// principal when a valid token is present. It never rejects; Protect does.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return next(c)
			}

			claims, err := m.validate(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Request().URL.Path).Msg("Token validation failed")
				return next(c)
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, PrincipalIDKey, claims.RegisteredClaims.Subject)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// Protect rejects requests without a principal with 401 {"message":"Unauthorized"}
func Protect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetPrincipalID(c) == "" {
				return unauthorizedError(c)
			}
			return next(c)
		}
	}
}

// extractToken reads the bearer token, falling back to the session cookie
func extractToken(c echo.Context) string {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// GetPrincipalID extracts the authenticated user ID from the context
func GetPrincipalID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(PrincipalIDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims extracts the custom claims from the context
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom
	}
	return nil
}
