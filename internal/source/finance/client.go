package finance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/nhle/fintrack/internal/source"
)

// ClientOptions tunes transport behavior. Zero values select defaults.
type ClientOptions struct {
	Timeout            time.Duration
	MaxRetries         int
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
	Logger             logrus.FieldLogger
}

// Client is a thin HTTP client for the finance backend REST API.
// It handles Bearer token authentication, JSON marshaling, automatic
// retry with exponential backoff on HTTP 429, and a circuit breaker
// that fails fast while the backend is unreachable.
type Client struct {
	baseURL    string
	tokenMu    sync.RWMutex
	token      string
	httpClient *http.Client
	maxRetries int
	breaker    *gobreaker.CircuitBreaker
	log        logrus.FieldLogger
}

// NewClient creates a new finance API client. The baseURL should be the
// versioned API root (e.g., https://api.example.com/api/v1). An empty
// token sends requests without an Authorization header.
func NewClient(baseURL, token string, opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BreakerMaxFailures <= 0 {
		opts.BreakerMaxFailures = 3
	}
	if opts.BreakerOpenTimeout <= 0 {
		opts.BreakerOpenTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxRetries: opts.MaxRetries,
		log:        opts.Logger,
	}

	maxFailures := uint32(opts.BreakerMaxFailures)
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "finance-api",
		MaxRequests: 1,
		Timeout:     opts.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: isHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return c
}

// SetToken replaces the Bearer token used by subsequent requests.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

func (c *Client) currentToken() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token
}

// isHealthy reports whether err says nothing bad about backend health.
// Client-side rejections (4xx, auth, cancellation) do not trip the
// breaker; transport failures and 5xx responses do.
func isHealthy(err error) bool {
	if err == nil || source.IsAuthError(err) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *source.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < 500
	}
	return false
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	result interface{},
) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Put(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs an HTTP DELETE request and unmarshals the JSON response.
func (c *Client) Delete(
	ctx context.Context,
	path string,
	result interface{},
) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

// do runs a request through the circuit breaker.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, body, result)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %s: %w", method, path, source.ErrCircuitOpen)
	}
	return err
}

// roundTrip is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and JSON (de)serialization.
func (c *Client) roundTrip(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		if token := c.currentToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = &source.StatusError{
				StatusCode: resp.StatusCode,
				Method:     method,
				Path:       path,
				Detail:     "rate limited",
			}
			c.log.WithFields(logrus.Fields{
				"path":    path,
				"attempt": attempt + 1,
				"wait":    waitDuration,
			}).Debug("rate limited, backing off")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return &source.AuthError{
				BaseURL: c.baseURL,
				Message: "authentication failed (401): check your API token",
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var apiErr ErrorResponse
			detail := strings.TrimSpace(string(respBody))
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Text() != "" {
				detail = apiErr.Text()
			}
			return &source.StatusError{
				StatusCode: resp.StatusCode,
				Method:     method,
				Path:       path,
				Detail:     detail,
			}
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w",
				method, path, err,
			)
		}

		return nil
	}

	return fmt.Errorf(
		"max retries (%d) exceeded: %w", c.maxRetries, lastErr,
	)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
