package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User    *domain.User
	Session *domain.Session
}

// SessionAuthenticator resolves a session token to its user.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, *domain.Session, error)
}

// TokenSource names where session tokens are read from.
type TokenSource struct {
	CookieName string
	HeaderName string
}

// AuthMiddleware validates session tokens and loads principals.
type AuthMiddleware struct {
	sessions SessionAuthenticator
	source   TokenSource
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions SessionAuthenticator, source TokenSource) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, source: source}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := m.TokenFromRequest(c)
	if token == "" {
		return errorutil.ErrUnauthorized
	}

	user, session, err := m.sessions.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(principalKey, &Principal{User: user, Session: session})
	return c.Next()
}

// TokenFromRequest reads the session token. The header override wins over
// the cookie.
func (m *AuthMiddleware) TokenFromRequest(c *fiber.Ctx) string {
	if m.source.HeaderName != "" {
		if v := strings.TrimSpace(c.Get(m.source.HeaderName)); v != "" {
			return v
		}
	}
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if m.source.CookieName != "" {
		return c.Cookies(m.source.CookieName)
	}
	return ""
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil && principal.User != nil
}
