// Package logistics is the HTTP adapter for the logistics provider's API.
//
// The Client authenticates with a bearer token obtained from the login
// endpoint and kept in a TokenStore, logging in again once when a call is
// rejected with 401. Every response is normalized through one envelope
// parser and every failure is classified into an *errs.ProviderError:
// retryable (timeouts, 429, 5xx) or permanent (4xx, business rejections).
// Retryable failures are retried with exponential backoff except on
// CreateShipment, which is never retried.
package logistics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shipping/internal/pkg/errs"

	"golang.org/x/sync/singleflight"
)

const maxResponseBytes = 4 << 20

// Config configures the provider client.
type Config struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
	TokenTTL time.Duration
	Retry    RetryPolicy
	// Location is the zone of the provider's naive timestamps. Nil means UTC.
	Location *time.Location
}

// Client implements ports.LogisticsGateway over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     TokenStore
	logins     singleflight.Group
	logger     *slog.Logger
}

// NewClient fills zero config values with defaults.
func NewClient(cfg Config, tokens TokenStore, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		logger:     logger.With("component", "logistics_client"),
	}
}

// call describes one provider request.
type call struct {
	operation  string
	method     string
	path       string
	query      url.Values
	body       any
	idempotent bool
	noRetry    bool
}

// do runs c with authentication and, unless disabled, retries. out receives
// the envelope's payload.
func (cl *Client) do(ctx context.Context, c call, out any) error {
	attempt := func() error {
		return cl.authorized(ctx, c, out)
	}
	if c.noRetry {
		return attempt()
	}
	return cl.cfg.Retry.run(ctx, c.operation, cl.logger, attempt)
}

func (cl *Client) authorized(ctx context.Context, c call, out any) error {
	token, err := cl.token(ctx)
	if err != nil {
		return err
	}

	err = cl.send(ctx, c, token, out)
	if !errs.HasCode(err, errs.ProviderCodeUnauthorized) {
		return err
	}

	cl.logger.InfoContext(ctx, "Provider token rejected, logging in again", "operation", c.operation)
	if err := cl.tokens.Invalidate(ctx); err != nil {
		cl.logger.WarnContext(ctx, "Failed to invalidate provider token", "error", err)
	}
	token, err = cl.login(ctx)
	if err != nil {
		return err
	}
	return cl.send(ctx, c, token, out)
}

func (cl *Client) token(ctx context.Context) (string, error) {
	token, err := cl.tokens.Token(ctx)
	if err != nil {
		cl.logger.WarnContext(ctx, "Token store read failed, logging in", "error", err)
	}
	if token != "" {
		return token, nil
	}
	return cl.login(ctx)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// login shares one request between concurrent callers. The request does not
// inherit a caller's cancellation; each caller stops waiting on its own ctx.
func (cl *Client) login(ctx context.Context) (string, error) {
	ch := cl.logins.DoChan("login", func() (any, error) {
		flightCtx := context.WithoutCancel(ctx)
		var resp loginResponse
		err := cl.send(flightCtx, call{
			operation:  "login",
			method:     http.MethodPost,
			path:       "/auth/login",
			body:       loginRequest{Email: cl.cfg.Email, Password: cl.cfg.Password},
			idempotent: true,
		}, "", &resp)
		if err != nil {
			return "", err
		}
		if resp.Token == "" {
			return "", errs.NewPermanentProviderError("login", errs.ProviderCodeUnauthorized, "provider returned no token")
		}
		if err := cl.tokens.SetToken(flightCtx, resp.Token, cl.cfg.TokenTTL); err != nil {
			cl.logger.WarnContext(flightCtx, "Failed to store provider token", "error", err)
		}
		return resp.Token, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (cl *Client) send(ctx context.Context, c call, token string, out any) error {
	target := cl.cfg.BaseURL + c.path
	if len(c.query) > 0 {
		target += "?" + c.query.Encode()
	}

	var body io.Reader
	if c.body != nil {
		data, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", c.operation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, target, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := cl.httpClient.Do(req)
	if err != nil {
		return classifyTransport(ctx, c.operation, err, c.idempotent)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransport(ctx, c.operation, err, c.idempotent)
	}

	if resp.StatusCode == http.StatusNotFound {
		return errs.NewObjectNotFoundError(c.operation, c.path)
	}

	env := parseEnvelope(resp.StatusCode, data)
	if !env.ok {
		pe := classifyResponse(c.operation, env, c.idempotent)
		cl.logger.DebugContext(ctx, "Provider call failed",
			"operation", c.operation,
			"status", env.statusCode,
			"code", pe.Code,
			"message", pe.Message,
		)
		return pe
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.data, out); err != nil {
		pe := errs.NewPermanentProviderError(c.operation, errs.ProviderCodeRejected, "malformed provider response")
		pe.Cause = err
		pe.StatusCode = resp.StatusCode
		return pe
	}
	return nil
}
