// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client and streaming worker for a local
// Ollama inference server.
package ollama

import "time"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// GenerateRequest is the request body for the generate endpoint.
// Stream is always true in this application; the relay only speaks the
// newline-delimited streaming form of the protocol.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerateChunk is one newline-delimited JSON object from the stream.
// Only the fields the relay needs are decoded; everything else is ignored.
type GenerateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// ModelInfo contains information about an installed model.
type ModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// serverError is the error body Ollama returns on non-200 responses.
type serverError struct {
	Error string `json:"error"`
}

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventType tags a streaming event.
type EventType int

const (
	// EventTextDelta carries one token of response text (possibly empty).
	EventTextDelta EventType = iota
	// EventDone signals natural completion of the stream.
	EventDone
	// EventFailed signals a transport or protocol failure. Emitted at most
	// once per started worker.
	EventFailed
	// EventCancelled signals a cooperative stop requested via Worker.Stop.
	EventCancelled
)

// String returns a short name for the event type.
func (t EventType) String() string {
	switch t {
	case EventTextDelta:
		return "text_delta"
	case EventDone:
		return "done"
	case EventFailed:
		return "failed"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Event is one entry in the ordered stream a Worker produces.
// Exactly one terminal event (Done, Failed or Cancelled) is delivered per
// started worker, after which the event channel is closed.
type Event struct {
	Type EventType

	// Text is set for EventTextDelta.
	Text string

	// Err is set for EventFailed.
	Err error
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type != EventTextDelta
}
