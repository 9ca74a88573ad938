// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the advisor chat view for the TUI.
package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// =============================================================================
// PROGRAM BRIDGE
// =============================================================================

// Bridge delivers transcript updates and notifications from worker
// goroutines into the Bubble Tea event loop. It implements the advisor's
// TranscriptSink and Notifier interfaces.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewBridge creates an unattached bridge. Messages posted before Attach are
// dropped; the advisor gates its sink calls on readiness, which the view
// signals only after the program is running.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach connects the bridge to a running program.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.send = p.Send
	b.mu.Unlock()
}

// attachFunc is the test seam for Attach.
func (b *Bridge) attachFunc(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *Bridge) post(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// CreateMessage implements advisor.TranscriptSink. The id is generated here
// so it can be returned synchronously while the entry itself is added on
// the event loop.
func (b *Bridge) CreateMessage(initialText string) string {
	id := uuid.NewString()
	b.post(entryCreatedMsg{ID: id, Text: initialText, At: time.Now()})
	return id
}

// UpdateMessage implements advisor.TranscriptSink.
func (b *Bridge) UpdateMessage(id, fullText string) {
	b.post(entryUpdatedMsg{ID: id, Text: fullText})
}

// Notify implements advisor.Notifier.
func (b *Bridge) Notify(title, message string) {
	b.post(notifyMsg{Title: title, Message: message})
}
