package services

import (
	"context"
	"strings"

	"daterbo-console/internal/core/domain"

	"go.uber.org/zap"
)

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService handles login, logout and admin self-registration
type AuthService struct {
	api    Upstream
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(api Upstream, logger *zap.Logger) *AuthService {
	return &AuthService{api: api, logger: logger}
}

// Login exchanges credentials for a token and installs it in sess
func (s *AuthService) Login(ctx context.Context, sess *Session, input LoginInput) (*Principal, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, domain.MissingField("email")
	}
	if input.Password == "" {
		return nil, domain.MissingField("password")
	}

	token, err := s.api.Login(ctx, email, input.Password)
	if err != nil {
		s.logger.Info("login failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	return sess.Adopt(ctx, token)
}

// Logout clears the session
func (s *AuthService) Logout(ctx context.Context, sess *Session) error {
	if id := sess.Identity(); id != nil {
		s.logger.Info("logout", zap.String("email", id.Email))
	}
	return sess.Clear(ctx)
}

// RegisterAdmin creates an administrator account
func (s *AuthService) RegisterAdmin(ctx context.Context, admin domain.Admin) error {
	if err := ValidateReference(&admin, true); err != nil {
		return err
	}
	admin.Email = strings.TrimSpace(admin.Email)
	if err := s.api.RegisterAdmin(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("admin registered", zap.String("email", admin.Email))
	return nil
}
