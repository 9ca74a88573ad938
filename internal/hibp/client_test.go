// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hibp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const breachesJSON = `[
	{"Title":"ExampleCo","Domain":"example.com","BreachDate":"2021-04-01","PwnCount":1000,"DataClasses":["Emails","Passwords"],"Description":"<p>Example breach.</p>"},
	{"Title":"OtherCo","Domain":"other.example","BreachDate":"2019-11-20","PwnCount":5,"DataClasses":["Usernames"],"Description":"<p>Other breach.</p>"}
]`

func newTestClient(baseURL string) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL:   baseURL,
		UserAgent: "breachadvisor test",
		Timeout:   5 * time.Second,
	})
}

func lookupKind(t *testing.T, err error) ErrorKind {
	t.Helper()
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("error is %T, want *LookupError", err)
	}
	return lookupErr.Kind
}

// =============================================================================
// PRECONDITION TESTS
// =============================================================================

func TestLookup_InvalidInput(t *testing.T) {
	// The server must never be reached for precondition failures.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("client issued a network request for invalid input")
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	tests := []struct {
		name    string
		account string
		apiKey  string
	}{
		{"empty account", "", "key"},
		{"missing key", "user@example.com", ""},
		{"both empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.Lookup(context.Background(), tc.account, tc.apiKey)
			if kind := lookupKind(t, err); kind != ErrKindInvalidInput {
				t.Errorf("Kind = %v, want invalid input", kind)
			}
		})
	}
}

// =============================================================================
// SUCCESS PATHS
// =============================================================================

func TestLookup_ParsesBreaches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/breachedaccount/user@example.com" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("truncateResponse") != "false" {
			t.Error("truncateResponse=false query missing")
		}
		if r.Header.Get("hibp-api-key") != "key" {
			t.Error("hibp-api-key header missing")
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("User-Agent header missing")
		}
		if r.Header.Get("format") != "json" {
			t.Error("format header missing")
		}
		w.Write([]byte(breachesJSON))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	breaches, err := client.Lookup(context.Background(), "user@example.com", "key")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if len(breaches) != 2 {
		t.Fatalf("len(breaches) = %d, want 2", len(breaches))
	}

	first := breaches[0]
	if first.Title != "ExampleCo" || first.Domain != "example.com" {
		t.Errorf("first breach = %+v", first)
	}
	if first.PwnCount != 1000 {
		t.Errorf("PwnCount = %d, want 1000", first.PwnCount)
	}
	if first.DataClassList() != "Emails, Passwords" {
		t.Errorf("DataClassList() = %q", first.DataClassList())
	}
	if breaches[1].Title != "OtherCo" || breaches[1].DataClassList() != "Usernames" {
		t.Errorf("second breach = %+v", breaches[1])
	}
}

func TestLookup_NotFoundMeansNoBreaches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	breaches, err := client.Lookup(context.Background(), "clean@example.com", "key")
	if err != nil {
		t.Fatalf("Lookup() error = %v, want nil for 404", err)
	}
	if breaches == nil || len(breaches) != 0 {
		t.Errorf("breaches = %v, want empty non-nil slice", breaches)
	}
}

func TestLookup_EmptyArrayIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	breaches, err := client.Lookup(context.Background(), "user@example.com", "key")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(breaches) != 0 {
		t.Errorf("len(breaches) = %d, want 0", len(breaches))
	}
}

// =============================================================================
// ERROR STATUS MAPPING
// =============================================================================

func TestLookup_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorKind
	}{
		{"bad request", http.StatusBadRequest, ErrKindBadRequest},
		{"unauthorized", http.StatusUnauthorized, ErrKindUnauthorized},
		{"forbidden", http.StatusForbidden, ErrKindForbidden},
		{"service unavailable", http.StatusServiceUnavailable, ErrKindServiceUnavailable},
		{"teapot", http.StatusTeapot, ErrKindAPIError},
		{"server error", http.StatusInternalServerError, ErrKindAPIError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			_, err := client.Lookup(context.Background(), "user@example.com", "key")
			if kind := lookupKind(t, err); kind != tc.want {
				t.Errorf("Kind = %v, want %v", kind, tc.want)
			}
		})
	}
}

func TestLookup_RateLimited(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter string
		want       time.Duration
	}{
		{"header present", "7", 7 * time.Second},
		{"header absent", "", time.Second},
		{"header garbage", "soon", time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.retryAfter != "" {
					w.Header().Set("Retry-After", tc.retryAfter)
				}
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			_, err := client.Lookup(context.Background(), "user@example.com", "key")
			var lookupErr *LookupError
			if !errors.As(err, &lookupErr) {
				t.Fatalf("error is %T, want *LookupError", err)
			}
			if lookupErr.Kind != ErrKindRateLimited {
				t.Errorf("Kind = %v, want rate limited", lookupErr.Kind)
			}
			if lookupErr.RetryAfter != tc.want {
				t.Errorf("RetryAfter = %v, want %v", lookupErr.RetryAfter, tc.want)
			}
			if !IsRateLimited(err) {
				t.Error("IsRateLimited() = false")
			}
		})
	}
}

func TestLookup_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Lookup(context.Background(), "user@example.com", "key")
	if kind := lookupKind(t, err); kind != ErrKindMalformedResponse {
		t.Errorf("Kind = %v, want malformed response", kind)
	}
}

// =============================================================================
// TRANSPORT FAILURES
// =============================================================================

func TestLookup_ConnectionRefused(t *testing.T) {
	// Start and immediately stop a server to get a dead address.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := newTestClient(addr)

	_, err := client.Lookup(context.Background(), "user@example.com", "key")
	if kind := lookupKind(t, err); kind != ErrKindConnection {
		t.Errorf("Kind = %v, want connection failed", kind)
	}
}

func TestLookup_Timeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewClientWithConfig(&ClientConfig{
		BaseURL:   server.URL,
		UserAgent: "breachadvisor test",
		Timeout:   50 * time.Millisecond,
	})

	_, err := client.Lookup(context.Background(), "user@example.com", "key")
	if kind := lookupKind(t, err); kind != ErrKindTimeout {
		t.Errorf("Kind = %v, want timeout", kind)
	}
	if !IsTimeout(err) {
		t.Error("IsTimeout() = false")
	}
}
