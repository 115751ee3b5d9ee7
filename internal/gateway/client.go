// Package gateway is the REST client for the remote transaction and auth API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/kvstore"
	applog "fintrack/internal/log"
)

// DefaultTimeout applies when the configured timeout is zero.
const DefaultTimeout = 10 * time.Second

// Client talks JSON over HTTP to the remote API. It reads the bearer token
// from the key-value store on every request and clears the stored session
// when the server answers 401.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	store   kvstore.Store
	logger  *applog.Logger
}

var (
	_ TransactionGateway = (*Client)(nil)
	_ AuthGateway        = (*Client)(nil)
)

// NewClient builds a client for baseURL.
func NewClient(baseURL string, timeout time.Duration, store kvstore.Store, logger *applog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		store:   store,
		logger:  logger.WithComponent(applog.ComponentGateway),
	}, nil
}

// List implements TransactionGateway.
func (c *Client) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	var out listResponse
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/transactions", nil, &out, ""); err != nil {
		return nil, err
	}
	return out.Resp, nil
}

// Get implements TransactionGateway.
func (c *Client) Get(ctx context.Context, id string) (core.Transaction, error) {
	var out transactionResponse
	if err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(id), nil, &out, ""); err != nil {
		return core.Transaction{}, err
	}
	return out.Transaction, nil
}

// Create implements TransactionGateway.
func (c *Client) Create(ctx context.Context, userID string, in core.CreateTransactionInput) (core.Transaction, error) {
	var out transactionResponse
	if err := c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(userID)+"/transactions", in, &out, ""); err != nil {
		return core.Transaction{}, err
	}
	return out.Transaction, nil
}

// Update implements TransactionGateway.
func (c *Client) Update(ctx context.Context, id string, in core.UpdateTransactionInput) (core.Transaction, error) {
	var out transactionResponse
	if err := c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), in, &out, ""); err != nil {
		return core.Transaction{}, err
	}
	return out.Transaction, nil
}

// Delete implements TransactionGateway.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil, "")
}

// Login implements AuthGateway.
func (c *Client) Login(ctx context.Context, creds core.Credentials) (core.AuthResponse, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", creds, &out, ""); err != nil {
		return core.AuthResponse{}, err
	}
	return out.Resp, nil
}

// Logout implements AuthGateway.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil, "")
}

// Validate implements AuthGateway.
func (c *Client) Validate(ctx context.Context, token string) (core.User, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodGet, "/auth/validate", nil, &out, token); err != nil {
		return core.User{}, err
	}
	return out.User, nil
}

// Me implements AuthGateway.
func (c *Client) Me(ctx context.Context) (core.User, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out, ""); err != nil {
		return core.User{}, err
	}
	return out.User, nil
}

// do performs one request. A non-empty token overrides the stored one.
func (c *Client) do(ctx context.Context, method, path string, body, out any, token string) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token == "" && c.store != nil {
		if stored, ok, err := c.store.Get(ctx, kvstore.KeyAuthToken); err == nil && ok {
			token = stored
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.ErrorContext(ctx, "Network error",
			applog.FieldMethod, method,
			applog.FieldPath, path,
			applog.FieldError, err)
		return ErrNetwork
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Gateway call completed",
		applog.FieldMethod, method,
		applog.FieldPath, path,
		applog.FieldStatusCode, resp.StatusCode,
		applog.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(ctx, req, resp)
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) statusError(ctx context.Context, req *http.Request, resp *http.Response) error {
	var body errorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	serr := &StatusError{Status: resp.StatusCode, Message: body.Message}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.clearSession(ctx)
		c.logger.WarnContext(ctx, "Unauthorized, stored session cleared", applog.FieldPath, req.URL.Path)
	case http.StatusForbidden:
		c.logger.ErrorContext(ctx, "Forbidden", applog.FieldPath, req.URL.Path, "message", body.Message)
	case http.StatusNotFound:
		c.logger.ErrorContext(ctx, "Not found", applog.FieldPath, req.URL.Path)
	default:
		c.logger.ErrorContext(ctx, "HTTP error",
			applog.FieldPath, req.URL.Path,
			applog.FieldStatusCode, resp.StatusCode,
			"message", body.Message)
	}
	return serr
}

func (c *Client) clearSession(ctx context.Context) {
	if c.store == nil {
		return
	}
	for _, key := range []string{kvstore.KeyAuthToken, kvstore.KeyAuthUser} {
		if err := c.store.Remove(ctx, key); err != nil {
			c.logger.WarnContext(ctx, "Failed to clear session key", "key", key, applog.FieldError, err)
		}
	}
}
