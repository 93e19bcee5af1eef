package middleware

import (
	"errors"
	"strings"
	"time"

	"daterbo-console/internal/config"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/core/services"
	"daterbo-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionLocal   = "session"
	sessionIDLocal = "sessionID"
)

// AuthMiddleware resolves the caller's session and rejects anonymous requests.
// A bearer header is honoured for API clients and lives only for the request;
// browsers are identified by the session cookie.
func AuthMiddleware(cfg *config.Config, sessions *services.SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		// 1. Bearer header
		if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, "Bearer ") {
			sess := sessions.Ephemeral()
			if _, err := sess.Adopt(ctx, strings.TrimPrefix(authHeader, "Bearer ")); err != nil {
				return unauthorized(c, err)
			}
			c.Locals(sessionLocal, sess)
			return c.Next()
		}

		// 2. Session cookie
		sid := c.Cookies(cfg.Session.CookieName)
		if sid == "" {
			return response.Unauthorized(c, "Silakan login terlebih dahulu")
		}

		sess := sessions.Open(sid)
		if _, err := sess.Load(ctx); err != nil {
			ClearSessionCookie(c, cfg)
			return unauthorized(c, err)
		}

		c.Locals(sessionLocal, sess)
		c.Locals(sessionIDLocal, sid)

		err := c.Next()

		// 3. The upstream may have refused the token mid-request
		if !sess.Authenticated() {
			ClearSessionCookie(c, cfg)
		}
		return err
	}
}

// CurrentSession returns the session resolved by AuthMiddleware
func CurrentSession(c *fiber.Ctx) *services.Session {
	sess, _ := c.Locals(sessionLocal).(*services.Session)
	return sess
}

// SetSessionCookie issues the browser session cookie
func SetSessionCookie(c *fiber.Ctx, cfg *config.Config, sid string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    sid,
		Path:     "/",
		Expires:  expires,
		Secure:   cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: cfg.Cookie.SameSite,
		Domain:   cfg.Cookie.Domain,
	})
}

// ClearSessionCookie expires the browser session cookie
func ClearSessionCookie(c *fiber.Ctx, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: cfg.Cookie.SameSite,
		Domain:   cfg.Cookie.Domain,
	})
}

func unauthorized(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrMalformedToken):
		return response.Unauthorized(c, "Token tidak valid")
	case errors.Is(err, domain.ErrNoSession):
		return response.Unauthorized(c, "Sesi berakhir, silakan login kembali")
	default:
		return response.InternalServerError(c, "Gagal memuat sesi")
	}
}
