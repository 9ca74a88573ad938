// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package advisor orchestrates advisor turns: prompt construction,
// single-flight worker lifecycle, and transcript updates.
package advisor

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/morganforge/breachadvisor/internal/bridge"
	"github.com/morganforge/breachadvisor/internal/hibp"
	"github.com/morganforge/breachadvisor/internal/ollama"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy is returned when a turn is already in flight. Concurrent turns
	// are rejected, never queued.
	ErrBusy = errors.New("an advisor turn is already in flight")

	// ErrNotReady is returned when the transcript surface has not signaled
	// readiness yet.
	ErrNotReady = errors.New("the transcript surface is still initializing")

	// ErrNoBreachContext is returned when advice is requested without breach
	// data to reason about.
	ErrNoBreachContext = errors.New("no breach data available to ask for advice")
)

// shutdownGrace bounds how long Shutdown waits for the in-flight worker to
// stop before detaching from it.
const shutdownGrace = 3 * time.Second

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// TranscriptSink receives transcript entries and incremental updates.
// Implemented by the UI layer.
type TranscriptSink interface {
	// CreateMessage adds a new advisor entry and returns its id.
	CreateMessage(initialText string) string
	// UpdateMessage replaces the full text of an existing entry.
	UpdateMessage(id, fullText string)
}

// Notifier surfaces errors out of band, away from the transcript.
type Notifier interface {
	Notify(title, message string)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds the advisor's inference settings. Passed explicitly at
// construction; the controller never reads global state.
type Config struct {
	// Endpoint is the full generate endpoint URL.
	Endpoint string
	// Model is the model identifier to request.
	Model string
}

// =============================================================================
// CONTROLLER
// =============================================================================

// turn is the bookkeeping for one in-flight advisor interaction.
type turn struct {
	worker    *ollama.Worker
	messageID string
	// text is only touched by the consume goroutine, which reads worker
	// events strictly in order.
	text strings.Builder
}

// Controller runs advisor turns against the inference server.
//
// Single-flight: at most one worker is active at any time. StartTurn fails
// with ErrBusy while one is in flight. The single-flight lock is released
// when the turn's terminal event is processed.
type Controller struct {
	cfg      Config
	client   *ollama.Client
	sink     TranscriptSink
	notifier Notifier

	// queue gates sink operations on surface readiness; calls issued before
	// readiness are buffered and flushed in order.
	queue *bridge.Queue

	mu      sync.Mutex
	current *turn
}

// NewController creates a controller with the given inference settings and
// collaborators.
func NewController(cfg Config, sink TranscriptSink, notifier Notifier) *Controller {
	return &Controller{
		cfg: cfg,
		client: ollama.NewClientWithConfig(&ollama.ClientConfig{
			GenerateURL: cfg.Endpoint,
		}),
		sink:     sink,
		notifier: notifier,
		queue:    bridge.NewQueue(),
	}
}

// SetReady marks the transcript surface ready and flushes any buffered sink
// operations in order.
func (c *Controller) SetReady() {
	c.queue.SetReady()
}

// Busy reports whether a turn is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Model returns the configured model identifier.
func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Model
}

// SetModel changes the model used for subsequent turns. The in-flight turn,
// if any, keeps the model it started with.
func (c *Controller) SetModel(name string) {
	c.mu.Lock()
	c.cfg.Model = name
	c.mu.Unlock()
}

// Client exposes the underlying inference client (model listing, health).
func (c *Controller) Client() *ollama.Client {
	return c.client
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// StartTurn begins one advisor interaction with the given user-authored
// prompt body. The fixed plain-text system instruction is prepended before
// sending. Fails fast with ErrNotReady before the surface is ready and
// ErrBusy while another turn is in flight; neither alters in-flight state.
func (c *Controller) StartTurn(promptBody string) error {
	if !c.queue.Ready() {
		return ErrNotReady
	}

	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		return ErrBusy
	}

	t := &turn{
		worker: ollama.NewWorker(c.client, c.cfg.Model, composePrompt(promptBody)),
	}
	c.current = t
	c.mu.Unlock()

	// Surface is ready, so this runs synchronously and the id is available
	// before the first delta can arrive.
	t.messageID = c.sink.CreateMessage("Thinking...")

	t.worker.Start()
	go c.consume(t)

	return nil
}

// AdviseOnBreaches starts a turn asking for mitigation advice on the given
// lookup result. Fails with ErrNoBreachContext when there is nothing to
// advise on.
func (c *Controller) AdviseOnBreaches(account string, breaches []hibp.Breach) error {
	if len(breaches) == 0 {
		return ErrNoBreachContext
	}
	return c.StartTurn(advicePrompt(BreachContext(account, breaches)))
}

// Stop requests a cooperative cancel of the in-flight turn, if any.
func (c *Controller) Stop() {
	c.mu.Lock()
	t := c.current
	c.mu.Unlock()

	if t != nil {
		t.worker.Stop()
	}
}

// Shutdown stops the in-flight worker and waits up to the grace period for
// it to terminate. If it does not stop in time, the controller detaches so
// late-arriving events cannot mutate state after the session is gone.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	t := c.current
	c.current = nil
	c.mu.Unlock()

	if t == nil {
		return
	}

	t.worker.Stop()
	if !t.worker.Wait(shutdownGrace) {
		t.worker.Detach()
	}
}

// =============================================================================
// EVENT CONSUMPTION
// =============================================================================

// consume is the single consumption loop for one turn. Events arrive in
// emission order on the worker's channel; the loop ends when the channel
// closes after the terminal event.
func (c *Controller) consume(t *turn) {
	for ev := range t.worker.Events() {
		if !c.owns(t) {
			// Session moved on (shutdown or failure cleanup); drop the event.
			continue
		}

		switch ev.Type {
		case ollama.EventTextDelta:
			t.text.WriteString(ev.Text)
			full := t.text.String()
			c.queue.Do(func() {
				c.sink.UpdateMessage(t.messageID, full)
			})

		case ollama.EventDone, ollama.EventCancelled:
			c.release(t)

		case ollama.EventFailed:
			c.fail(t, ev.Err)
		}
	}
}

// owns reports whether t is still the controller's current turn.
func (c *Controller) owns(t *turn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current == t
}

// release ends the turn and re-enables StartTurn.
func (c *Controller) release(t *turn) {
	c.mu.Lock()
	if c.current == t {
		c.current = nil
	}
	c.mu.Unlock()
}

// fail surfaces the failure to the transcript and the out-of-band error
// channel, releases the single-flight lock immediately, and stops the
// worker in case it is still winding down.
func (c *Controller) fail(t *turn, reason error) {
	c.release(t)

	msg := "unknown inference failure"
	if reason != nil {
		msg = reason.Error()
	}

	c.queue.Do(func() {
		c.sink.UpdateMessage(t.messageID, "Error: "+msg)
	})
	if c.notifier != nil {
		c.notifier.Notify("AI Error", msg)
	}

	t.worker.Stop()
}
