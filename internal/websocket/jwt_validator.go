package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

var (
	// ErrInvalidToken is returned when JWT validation fails.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWorkspaceNotFound is returned when the token is valid but no
	// workspace exists for its subject.
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

// WorkspaceLookup resolves an Auth0 subject to its workspace.
type WorkspaceLookup interface {
	GetWorkspaceByAuth0ID(auth0ID string) (workspaceID int32, err error)
}

// CustomClaims satisfies the validator's claims hook. The WebSocket path
// only needs the token subject, so no custom claims are extracted.
type CustomClaims struct{}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// Auth0JWTValidator authenticates WebSocket upgrade requests. Browsers
// cannot set an Authorization header on a WebSocket handshake, so the token
// arrives as a query parameter and is validated here instead of in the
// regular auth middleware.
type Auth0JWTValidator struct {
	validator       *validator.Validator
	workspaceLookup WorkspaceLookup
}

// NewAuth0JWTValidator creates a new Auth0JWTValidator
func NewAuth0JWTValidator(domain, audience string, workspaceLookup WorkspaceLookup) (*Auth0JWTValidator, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, fmt.Errorf("parse issuer URL: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &Auth0JWTValidator{
		validator:       jwtValidator,
		workspaceLookup: workspaceLookup,
	}, nil
}

// ValidateToken checks the token signature and claims, then resolves the
// subject's workspace ID.
func (v *Auth0JWTValidator) ValidateToken(token string) (int32, error) {
	claims, err := v.validator.ValidateToken(context.Background(), token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	workspaceID, err := v.workspaceLookup.GetWorkspaceByAuth0ID(validated.RegisteredClaims.Subject)
	if err != nil {
		return 0, ErrWorkspaceNotFound
	}
	return workspaceID, nil
}
