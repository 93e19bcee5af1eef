package upstream

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"daterbo-console/internal/core/domain"

	"github.com/go-resty/resty/v2"
)

// LoginFailedMessage is shown when the upstream gives no reason
const LoginFailedMessage = "Login sebagai user gagal"

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	resp, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/users/login",
		path:   "/users/login",
		prepare: func(r *resty.Request) {
			r.SetBody(map[string]string{"email": email, "password": password})
		},
		out: &out,
	})
	if err != nil {
		// bad credentials come back as 401; that is a failed login, not a lost session
		if errors.Is(err, domain.ErrUnauthorized) {
			msg := upstreamMessage(resp.Body())
			if msg == "" {
				msg = LoginFailedMessage
			}
			return "", &domain.RejectedError{StatusCode: resp.StatusCode(), Message: msg}
		}
		var rejected *domain.RejectedError
		if errors.As(err, &rejected) && rejected.Message == "" {
			rejected.Message = LoginFailedMessage
		}
		return "", err
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", &domain.RejectedError{StatusCode: http.StatusBadGateway, Message: LoginFailedMessage}
	}
	return out.Token, nil
}

// RegisterAdmin creates an administrator account; no session is required
func (c *Client) RegisterAdmin(ctx context.Context, admin domain.Admin) error {
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/admin/register",
		path:   "/admin/register",
		prepare: func(r *resty.Request) {
			r.SetBody(admin)
		},
	})
	return err
}
