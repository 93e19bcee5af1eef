// Package upstream talks to the borrower-record REST API.
// Every call carries the caller's bearer token; nothing is retried.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"daterbo-console/internal/config"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/pkg/metrics"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// maxMessageLen bounds upstream bodies echoed back as error messages
const maxMessageLen = 300

// Client is the upstream API client
type Client struct {
	http    *resty.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewClient creates an upstream client for cfg.BaseURL
func NewClient(cfg config.UpstreamConfig, m *metrics.Metrics, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		metrics: m,
		logger:  logger,
	}
}

// call describes one upstream request.
// route is the low-cardinality path template used for logs and metrics.
type call struct {
	method  string
	route   string
	path    string
	token   string
	prepare func(*resty.Request)
	out     any
}

func (c *Client) do(ctx context.Context, cl call) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if cl.token != "" {
		req.SetAuthToken(cl.token)
	}
	if cl.prepare != nil {
		cl.prepare(req)
	}

	start := time.Now()
	resp, err := req.Execute(cl.method, cl.path)
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.metrics.ObserveUpstream(cl.method, cl.route, 0, elapsed)
		c.logger.Warn("upstream call failed",
			zap.String("method", cl.method),
			zap.String("route", cl.route),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrTransport, cl.method, cl.route, err)
	}

	status := resp.StatusCode()
	c.metrics.ObserveUpstream(cl.method, cl.route, status, elapsed)
	c.logger.Debug("upstream call",
		zap.String("method", cl.method),
		zap.String("route", cl.route),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		c.logger.Warn("upstream refused session",
			zap.String("method", cl.method),
			zap.String("route", cl.route),
			zap.Int("status", status),
		)
		return resp, fmt.Errorf("%s %s: %w", cl.method, cl.route, domain.ErrUnauthorized)
	case resp.IsError():
		rejected := &domain.RejectedError{StatusCode: status, Message: upstreamMessage(resp.Body())}
		c.logger.Warn("upstream rejected request",
			zap.String("method", cl.method),
			zap.String("route", cl.route),
			zap.Int("status", status),
			zap.String("message", rejected.Message),
		)
		return resp, rejected
	}

	if cl.out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), cl.out); err != nil {
			c.logger.Error("failed to decode upstream response",
				zap.String("route", cl.route),
				zap.Error(err),
			)
			return resp, fmt.Errorf("decode %s response: %w", cl.route, err)
		}
	}
	return resp, nil
}

// upstreamMessage extracts a human message from an error body:
// the "message" or "error" field of a JSON object, else the trimmed text.
func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "<") {
		return ""
	}
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen]
	}
	return text
}

// IsUnauthorized reports whether err ends the session
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
