// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hibp provides the HTTP client for the Have I Been Pwned breach API.
package hibp

import (
	"strings"
	"time"
)

// =============================================================================
// BREACH RECORD
// =============================================================================

// Breach represents one breach entry returned by the lookup service.
// Field names mirror the HIBP v3 response schema.
type Breach struct {
	Title       string   `json:"Title"`
	Domain      string   `json:"Domain"`
	BreachDate  string   `json:"BreachDate"`
	PwnCount    int      `json:"PwnCount"`
	DataClasses []string `json:"DataClasses"`
	// Description is an HTML fragment as returned by the service.
	Description string `json:"Description"`
}

// DataClassList returns the compromised data categories joined for display.
func (b *Breach) DataClassList() string {
	return strings.Join(b.DataClasses, ", ")
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes lookup errors for handling.
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindInvalidInput
	ErrKindMalformedResponse
	ErrKindBadRequest
	ErrKindUnauthorized
	ErrKindForbidden
	ErrKindRateLimited
	ErrKindServiceUnavailable
	ErrKindAPIError
	ErrKindTimeout
	ErrKindConnection
	ErrKindNetwork
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindInvalidInput:
		return "invalid input"
	case ErrKindMalformedResponse:
		return "malformed response"
	case ErrKindBadRequest:
		return "bad request"
	case ErrKindUnauthorized:
		return "unauthorized"
	case ErrKindForbidden:
		return "forbidden"
	case ErrKindRateLimited:
		return "rate limited"
	case ErrKindServiceUnavailable:
		return "service unavailable"
	case ErrKindAPIError:
		return "api error"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindConnection:
		return "connection failed"
	case ErrKindNetwork:
		return "network error"
	default:
		return "unknown"
	}
}

// LookupError represents a failure from the breach lookup client.
// Every failure path in the client is translated into one of these;
// raw transport or parse errors never escape the client boundary.
type LookupError struct {
	Kind    ErrorKind
	Message string

	// Status and Body are set for kinds derived from an HTTP response.
	Status int
	Body   string

	// RetryAfter is set for ErrKindRateLimited.
	RetryAfter time.Duration

	Cause error
}

func (e *LookupError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *LookupError) Unwrap() error {
	return e.Cause
}
