package middleware

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims carries the profile fields Auth0 adds to its access tokens.
type CustomClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Validate satisfies validator.CustomClaims. Profile fields need no checks.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

type contextKey string

// Context keys under which the middleware stores the authenticated identity.
const (
	ClaimsKey      contextKey = "claims"
	Auth0IDKey     contextKey = "auth0_id"
	WorkspaceIDKey contextKey = "workspace_id"
)

// WorkspaceProvider resolves the workspace that belongs to an Auth0 subject.
type WorkspaceProvider interface {
	GetWorkspaceByAuth0ID(auth0ID string) (workspaceID int32, err error)
}

// AuthMiddleware validates Auth0 bearer tokens and attaches the caller's
// identity and workspace to the request context.
type AuthMiddleware struct {
	jwt        *validator.Validator
	workspaces WorkspaceProvider
}

func NewAuthMiddleware(domain, audience string, workspaces WorkspaceProvider) (*AuthMiddleware, error) {
	jwt, err := newJWTValidator(domain, audience)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{jwt: jwt, workspaces: workspaces}, nil
}

// newJWTValidator builds an RS256 validator backed by the tenant's cached
// JWKS endpoint.
func newJWTValidator(domain, audience string) (*validator.Validator, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	keys := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	return validator.New(
		keys.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// Authenticate rejects requests without a valid bearer token. On success the
// claims, Auth0 subject and workspace ID are stored on the request context.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return unauthorizedError(c, "missing or malformed authorization header")
			}

			raw, err := m.jwt.ValidateToken(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}
			claims, ok := raw.(*validator.ValidatedClaims)
			if !ok {
				return unauthorizedError(c, "invalid claims")
			}

			auth0ID := claims.RegisteredClaims.Subject

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, Auth0IDKey, auth0ID)

			// Resolve the caller's workspace here so handlers never trust a
			// client-supplied workspace ID.
			if m.workspaces != nil {
				workspaceID, err := m.workspaces.GetWorkspaceByAuth0ID(auth0ID)
				if err != nil {
					log.Debug().Err(err).Str("auth0_id", auth0ID).Msg("Workspace lookup failed")
					return unauthorizedError(c, "workspace not found")
				}
				ctx = context.WithValue(ctx, WorkspaceIDKey, workspaceID)
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetAuth0ID returns the Auth0 subject stored by Authenticate, or "".
func GetAuth0ID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(Auth0IDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims returns the validated claims stored by Authenticate, or nil.
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims returns the Auth0 profile claims, or nil when absent.
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

// GetWorkspaceID returns the workspace resolved for the caller, or 0.
func GetWorkspaceID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(WorkspaceIDKey).(int32); ok {
		return id
	}
	return 0
}
