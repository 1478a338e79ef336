package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

// BreakerConfig controls the per-upstream circuit breaker.
type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxFailures: 5, OpenTimeout: 30 * time.Second}
}

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client

	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func NewClient(name string, baseURL string, httpClient *http.Client, bc BreakerConfig) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	if bc.MaxFailures == 0 {
		bc.MaxFailures = DefaultBreakerConfig().MaxFailures
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     bc.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= bc.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation says nothing about upstream health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "upstream", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{Name: name, BaseURL: u, HTTP: httpClient, breaker: cb}
}

// upstreamStatusError marks a 5xx response as a breaker failure while still
// handing the response back to the caller.
type upstreamStatusError struct{ code int }

func (e *upstreamStatusError) Error() string { return fmt.Sprintf("upstream status %d", e.code) }

func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, headers http.Header) (*http.Response, error) {
	u := c.BaseURL.ResolveReference(&url.URL{Path: path, RawQuery: rawQuery})

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for k, vv := range headers {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, &upstreamStatusError{code: resp.StatusCode}
		}
		return resp, nil
	})

	var statusErr *upstreamStatusError
	if errors.As(err, &statusErr) {
		return resp, nil
	}
	return resp, err
}

// call describes one JSON round trip. Fallback is the RequestError message
// used when a non-2xx body carries neither "error" nor "message"; empty means
// "<name> request failed".
type call struct {
	Op       string
	Method   string
	Path     string
	Fallback string
}

// doJSON sends in (if non-nil) as a JSON body and decodes a 2xx response into
// out. Non-2xx responses and transport failures become *RequestError.
func (c *Client) doJSON(ctx context.Context, cl call, in, out any) error {
	op := cl.Op
	var body io.Reader
	headers := http.Header{"Accept": []string{"application/json"}}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(b)
		headers.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(ctx, cl.Method, cl.Path, "", body, headers)
	if err != nil {
		return transportError(op, c.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fallback := cl.Fallback
		if fallback == "" {
			fallback = c.Name + " request failed"
		}
		return &RequestError{Op: op, Status: resp.StatusCode, Message: upstreamMessage(raw, fallback)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: "malformed response from " + c.Name, Err: err}
	}
	return nil
}

func transportError(op, upstream string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &RequestError{Op: op, Status: http.StatusServiceUnavailable, Message: upstream + " temporarily unavailable", Err: err}
	}
	return &RequestError{Op: op, Message: upstream + " unreachable", Err: err}
}

func upstreamMessage(raw []byte, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fallback
}
