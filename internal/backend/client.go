// Package backend is the typed REST client for the storefront backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_prasad/internal/session"
	"github.com/fjod/go_prasad/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodySize = 4 << 20

type Options struct {
	BaseURL             string
	Timeout             time.Duration
	BreakerFailures     uint32
	BreakerOpenDuration time.Duration
	HTTPClient          *http.Client
	Logger              *slog.Logger
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*reply]
	log     *slog.Logger
}

type reply struct {
	status int
	body   []byte
}

// envelope is the part every backend reply may carry.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		breaker: circuitbreaker.New[*reply](circuitbreaker.Settings{
			Name:                "storefront-backend",
			ConsecutiveFailures: opts.BreakerFailures,
			OpenTimeout:         opts.BreakerOpenDuration,
			IsSuccessful:        countsAsSuccess,
		}, log),
		log: log,
	}
}

// countsAsSuccess keeps replies the backend deliberately sent (4xx, auth
// rejections) from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrUnauthenticated) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError
}

// do performs one call. A nil session marks a public endpoint; otherwise the
// token is resolved first and no request is made without one.
func (c *Client) do(ctx context.Context, op, method, path string, sess session.Session, body, out any) error {
	var token string
	if sess != nil {
		t, err := sess.Token(ctx)
		if err != nil {
			return err
		}
		token = t
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		payload = b
	}

	rep, err := c.breaker.Execute(func() (*reply, error) {
		return c.roundTrip(ctx, method, path, token, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &TransportError{Op: op, Err: err}
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) || errors.Is(err, ErrUnauthenticated) {
			return err
		}
		return &TransportError{Op: op, Err: err}
	}

	var env envelope
	if len(rep.body) > 0 {
		if err := json.Unmarshal(rep.body, &env); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	if env.Success != nil && !*env.Success {
		return &APIError{Status: rep.status, Message: env.text()}
	}

	if out != nil && len(rep.body) > 0 {
		if err := json.Unmarshal(rep.body, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, payload []byte) (*reply, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := requestIDFrom(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, ErrUnauthenticated)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		_ = json.Unmarshal(data, &env)
		c.log.WarnContext(ctx, "backend call failed", "method", method, "path", path, "status", resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode, Message: env.text()}
	}

	return &reply{status: resp.StatusCode, body: data}, nil
}

type requestIDKey struct{}

// WithRequestID makes backend calls made with ctx carry the X-Request-ID header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
