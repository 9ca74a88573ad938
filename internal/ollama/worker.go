// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client and streaming worker for a local
// Ollama inference server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"
)

// =============================================================================
// STREAM WORKER
// =============================================================================

// Worker runs one streaming generate request on its own goroutine and
// delivers an ordered sequence of events to the consumer.
//
// Guarantees:
//   - events arrive in emission order, never duplicated
//   - exactly one terminal event (Done, Failed or Cancelled) per started
//     worker, after which the event channel is closed
//   - the caller's goroutine is never blocked by network I/O
//
// A Worker is single-use: construct, Start, consume Events until the channel
// closes. Stop requests a cooperative cancel; the worker checks the stop
// signal at every chunk boundary and aborts a blocking read by cancelling the
// request context.
type Worker struct {
	client *Client
	req    GenerateRequest

	events chan Event
	done   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	stopOnce   sync.Once
	stopc      chan struct{}
	detachOnce sync.Once
	detachc    chan struct{}

	startOnce sync.Once
}

// NewWorker creates a worker for one generate request.
func NewWorker(client *Client, model, prompt string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		client: client,
		req: GenerateRequest{
			Model:  model,
			Prompt: prompt,
			Stream: true,
		},
		events:  make(chan Event),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		stopc:   make(chan struct{}),
		detachc: make(chan struct{}),
	}
}

// Events returns the ordered event stream. The channel is closed after the
// terminal event has been delivered (or after detach).
func (w *Worker) Events() <-chan Event {
	return w.events
}

// Start launches the background goroutine. Calling Start more than once has
// no effect.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		go w.run()
	})
}

// Stop requests a cooperative cancel. Safe to call multiple times and from
// any goroutine. The worker still delivers a Cancelled terminal event so the
// consumer can clean up.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopc)
		w.cancel()
	})
}

// Detach abandons the worker: pending event deliveries are dropped instead
// of blocking the worker goroutine. Used when the owning session shuts down
// and the worker did not terminate within its grace period.
func (w *Worker) Detach() {
	w.detachOnce.Do(func() {
		close(w.detachc)
	})
}

// Wait blocks until the worker goroutine has fully stopped, or the timeout
// elapses. Returns true if the worker stopped in time.
func (w *Worker) Wait(timeout time.Duration) bool {
	select {
	case <-w.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// stopped reports whether a cooperative stop has been requested.
func (w *Worker) stopped() bool {
	select {
	case <-w.stopc:
		return true
	default:
		return false
	}
}

// =============================================================================
// WORKER LOOP
// =============================================================================

func (w *Worker) run() {
	defer close(w.done)
	defer close(w.events)
	defer w.cancel()

	body, err := json.Marshal(w.req)
	if err != nil {
		w.emit(Event{Type: EventFailed, Err: &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}})
		return
	}

	req, err := http.NewRequestWithContext(w.ctx, http.MethodPost, w.client.GenerateURL(), bytes.NewReader(body))
	if err != nil {
		w.emit(Event{Type: EventFailed, Err: &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}})
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.streamClient.Do(req)
	if err != nil {
		if w.stopped() {
			w.emit(Event{Type: EventCancelled})
			return
		}
		w.emit(Event{Type: EventFailed, Err: translateStreamError(err, w.client.GenerateURL())})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		w.emit(Event{Type: EventFailed, Err: decodeServerError(resp)})
		return
	}

	reader := NewStreamReader(resp.Body)
	for {
		if w.stopped() {
			w.emit(Event{Type: EventCancelled})
			return
		}

		chunk, err := reader.Next()
		if err != nil {
			if w.stopped() {
				w.emit(Event{Type: EventCancelled})
				return
			}
			if err == io.EOF {
				// Stream ended without an explicit done flag; treat as
				// natural completion.
				w.emit(Event{Type: EventDone})
				return
			}
			w.emit(Event{Type: EventFailed, Err: translateStreamError(err, w.client.GenerateURL())})
			return
		}

		if !w.emit(Event{Type: EventTextDelta, Text: chunk.Response}) {
			if w.stopped() {
				w.emit(Event{Type: EventCancelled})
			}
			return
		}

		if chunk.Done {
			w.emit(Event{Type: EventDone})
			return
		}
	}
}

// emit delivers an event to the consumer. Returns false if delivery was
// abandoned because a stop or detach arrived first.
func (w *Worker) emit(ev Event) bool {
	if ev.Terminal() {
		// Terminal events ignore the stop signal: a stopped worker still
		// owes its consumer exactly one terminal event. Only detach drops it.
		select {
		case w.events <- ev:
			return true
		case <-w.detachc:
			return false
		}
	}

	select {
	case w.events <- ev:
		return true
	case <-w.stopc:
		return false
	case <-w.detachc:
		return false
	}
}

// =============================================================================
// ERROR TRANSLATION
// =============================================================================

// translateStreamError maps a transport failure during open or read onto the
// client error taxonomy.
func translateStreamError(err error, endpoint string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ClientError{Type: ErrTypeTimeout, Message: "the request to Ollama timed out", Cause: err}
	case errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeConnection, Message: "the request to Ollama was interrupted", Cause: err}
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: "the request to Ollama timed out", Cause: err}
	}

	return &ClientError{
		Type:    ErrTypeNotRunning,
		Message: "could not connect to Ollama at " + endpoint + ". Is Ollama running?",
		Cause:   err,
	}
}

// decodeServerError extracts the error message from a non-200 response.
func decodeServerError(resp *http.Response) error {
	var srvErr serverError
	if err := json.NewDecoder(resp.Body).Decode(&srvErr); err == nil && srvErr.Error != "" {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: srvErr.Error}
	}
	return &ClientError{Type: ErrTypeInvalidResponse, Message: "generate request failed: " + resp.Status}
}
