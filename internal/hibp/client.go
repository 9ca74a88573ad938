// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hibp provides the HTTP client for the Have I Been Pwned breach API.
package hibp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the HIBP client.
type ClientConfig struct {
	// BaseURL is the API base URL (default: https://haveibeenpwned.com/api/v3)
	BaseURL string

	// UserAgent sent with every request. HIBP rejects requests without one.
	UserAgent string

	// Timeout for the lookup request (default: 30s)
	Timeout time.Duration

	// Limiter optionally throttles requests client-side to stay within the
	// per-key rate limit. Nil means no throttling.
	Limiter *rate.Limiter
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "https://haveibeenpwned.com/api/v3",
		UserAgent: "breachadvisor (Go)",
		Timeout:   30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the HIBP breach API.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new HIBP client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new HIBP client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://haveibeenpwned.com/api/v3"
	}
	if config.UserAgent == "" {
		config.UserAgent = "breachadvisor (Go)"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// =============================================================================
// LOOKUP
// =============================================================================

// Lookup queries the breach API for the given account and returns every known
// breach, preserving the order of the response. An empty slice with a nil
// error means the account appears in no known breach (the API's 404 case).
//
// Input validation failures return ErrKindInvalidInput without issuing any
// network request.
func (c *Client) Lookup(ctx context.Context, account, apiKey string) ([]Breach, error) {
	if account == "" {
		return nil, &LookupError{Kind: ErrKindInvalidInput, Message: "account cannot be empty"}
	}
	if apiKey == "" {
		return nil, &LookupError{Kind: ErrKindInvalidInput, Message: "API key is missing"}
	}

	if c.config.Limiter != nil {
		if err := c.config.Limiter.Wait(ctx); err != nil {
			return nil, &LookupError{Kind: ErrKindTimeout, Message: "rate limiter wait aborted", Cause: err}
		}
	}

	endpoint := c.config.BaseURL + "/breachedaccount/" + url.PathEscape(account) + "?truncateResponse=false"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &LookupError{Kind: ErrKindConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("hibp-api-key", apiKey)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("format", "json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, translateTransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var breaches []Breach
		if err := json.NewDecoder(resp.Body).Decode(&breaches); err != nil {
			return nil, &LookupError{Kind: ErrKindMalformedResponse, Message: "failed to decode breach response", Cause: err}
		}
		return breaches, nil

	case http.StatusNotFound:
		// Not an error: the account appears in no known breach.
		return []Breach{}, nil

	case http.StatusBadRequest:
		return nil, &LookupError{
			Kind:    ErrKindBadRequest,
			Message: "bad request: invalid account format? (" + readBody(resp.Body) + ")",
			Status:  resp.StatusCode,
		}

	case http.StatusUnauthorized:
		return nil, &LookupError{
			Kind:    ErrKindUnauthorized,
			Message: "unauthorized: invalid API key?",
			Status:  resp.StatusCode,
		}

	case http.StatusForbidden:
		return nil, &LookupError{
			Kind:    ErrKindForbidden,
			Message: "forbidden: check User-Agent header?",
			Status:  resp.StatusCode,
		}

	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &LookupError{
			Kind:       ErrKindRateLimited,
			Message:    "rate limited, retry after " + retryAfter.String(),
			Status:     resp.StatusCode,
			RetryAfter: retryAfter,
		}

	case http.StatusServiceUnavailable:
		return nil, &LookupError{
			Kind:    ErrKindServiceUnavailable,
			Message: "service unavailable: HIBP may be down or in maintenance",
			Status:  resp.StatusCode,
		}

	default:
		body := readBody(resp.Body)
		return nil, &LookupError{
			Kind:    ErrKindAPIError,
			Message: "HIBP API error: " + strconv.Itoa(resp.StatusCode) + " - " + body,
			Status:  resp.StatusCode,
			Body:    body,
		}
	}
}

// =============================================================================
// ERROR TRANSLATION
// =============================================================================

// translateTransportError maps a transport-level failure onto the client's
// error taxonomy so callers never see a raw *url.Error.
func translateTransportError(err error) *LookupError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &LookupError{Kind: ErrKindTimeout, Message: "request to HIBP API timed out", Cause: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &LookupError{Kind: ErrKindTimeout, Message: "request to HIBP API timed out", Cause: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &LookupError{Kind: ErrKindConnection, Message: "could not connect to HIBP API", Cause: err}
	}

	return &LookupError{Kind: ErrKindNetwork, Message: "unexpected network error", Cause: err}
}

// parseRetryAfter parses the Retry-After header in seconds.
// Absent or unparseable values default to 1 second.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return time.Second
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return time.Second
	}
	return time.Duration(secs) * time.Second
}

// readBody reads a bounded amount of the response body for error messages.
func readBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return string(data)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRateLimited checks if an error is a rate-limit error.
func IsRateLimited(err error) bool {
	return kindOf(err) == ErrKindRateLimited
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsInvalidInput checks if an error is an input validation error.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

func kindOf(err error) ErrorKind {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Kind
	}
	return ErrKindUnknown
}
