package handlers

import (
	"strings"

	"daterbo-console/internal/adapters/http/middleware"
	"daterbo-console/internal/config"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/core/services"
	"daterbo-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	sessions    *services.SessionManager
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, sessions *services.SessionManager, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		cfg:         cfg,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterAdminRequest represents the admin self-registration body
type RegisterAdminRequest struct {
	Name     string `json:"namaadmin"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles staff login
// @Summary Login
// @Description Exchange credentials for an upstream token and start a console session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	sid := uuid.NewString()
	sess := h.sessions.Open(sid)

	principal, err := h.authService.Login(c.UserContext(), sess, services.LoginInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err, "Login gagal")
	}

	middleware.SetSessionCookie(c, h.cfg, sid, principal.ExpiresAt)

	return response.Success(c, "Login berhasil", fiber.Map{
		"token": principal.Token,
		"user":  principal.Identity,
	})
}

// Logout handles logout
// @Summary Logout
// @Description Discard the stored token and expire the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if err := h.authService.Logout(c.UserContext(), sess); err != nil {
		return respondError(c, err, "Logout gagal")
	}

	middleware.ClearSessionCookie(c, h.cfg)

	return response.Success(c, "Logout berhasil", nil)
}

// Me returns the identity of the current session
// @Summary Current identity
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p := middleware.CurrentSession(c).Principal()
	if p == nil {
		return response.Unauthorized(c, "Sesi berakhir, silakan login kembali")
	}

	return response.Success(c, "OK", fiber.Map{
		"user":       p.Identity,
		"expires_at": p.ExpiresAt,
	})
}

// RegisterAdmin handles administrator self-registration
// @Summary Register administrator
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterAdminRequest true "Administrator"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) RegisterAdmin(c *fiber.Ctx) error {
	var req RegisterAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	admin := domain.Admin{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
	}
	if err := h.authService.RegisterAdmin(c.UserContext(), admin); err != nil {
		return respondError(c, err, "Registrasi admin gagal")
	}

	return response.Created(c, "Registrasi berhasil", nil)
}
