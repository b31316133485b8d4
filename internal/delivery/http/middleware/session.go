package middleware

import (
	"errors"
	"strings"

	"talant-web/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUsernameKey = "username"

	DefaultSessionCookie = "auth_token"
)

// SessionMiddleware checks the backend-issued session cookie. Browsers are
// redirected to the login page; API and WebSocket clients get 401.
type SessionMiddleware struct {
	jwt      jwt.Verifier
	cookie   string
	loginURL string
}

// NewSessionMiddleware returns a guard that lets everything through when
// verifier is nil.
func NewSessionMiddleware(verifier jwt.Verifier, cookie, loginURL string) *SessionMiddleware {
	cookie = strings.TrimSpace(cookie)
	if cookie == "" {
		cookie = DefaultSessionCookie
	}
	return &SessionMiddleware{jwt: verifier, cookie: cookie, loginURL: strings.TrimSpace(loginURL)}
}

func (m *SessionMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m == nil || m.jwt == nil {
			return c.Next()
		}

		token := c.Cookies(m.cookie)
		if strings.TrimSpace(token) == "" {
			return m.deny(c, "Unauthorized", nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return m.deny(c, "Token expired", err)
			}
			return m.deny(c, "Invalid token", err)
		}

		c.Locals(CtxUserIDKey, claims.UserIDString())
		c.Locals(CtxUsernameKey, claims.Username)
		return c.Next()
	}
}

func (m *SessionMiddleware) deny(c fiber.Ctx, msg string, cause error) error {
	if m.loginURL != "" && wantsPage(c) {
		return c.Redirect().Status(fiber.StatusSeeOther).To(m.loginURL)
	}
	return NewAppError(fiber.StatusUnauthorized, msg, nil, cause)
}

func wantsPage(c fiber.Ctx) bool {
	p := c.Path()
	return !strings.HasPrefix(p, "/api/") && !strings.HasPrefix(p, "/ws/")
}
