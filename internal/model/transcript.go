// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for advisor transcripts.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a transcript entry.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdvisor Role = "advisor"
	RoleSystem  Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAdvisor:
		return "Advisor"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// ENTRY TYPE
// =============================================================================

// Entry is a single transcript entry. Advisor entries are created with
// placeholder text and have their content replaced as the stream progresses.
type Entry struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Streaming marks an advisor entry whose content is still arriving.
	// Not persisted.
	Streaming bool `json:"-"`
}

// NewEntry creates an entry with a generated id.
func NewEntry(role Role, content string) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAdvisorEntry creates a streaming advisor entry with initial text.
func NewAdvisorEntry(initialText string) *Entry {
	e := NewEntry(RoleAdvisor, initialText)
	e.Streaming = true
	return e
}

// Preview returns the entry content truncated to maxRunes characters, with
// newlines collapsed for single-line display.
func (e *Entry) Preview(maxRunes int) string {
	content := strings.ReplaceAll(e.Content, "\n", " ")
	content = strings.ReplaceAll(content, "\r", "")
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is an ordered sequence of entries from one advisor session.
type Transcript struct {
	ID        string    `json:"id"`
	Account   string    `json:"account,omitempty"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Entries []*Entry `json:"entries"`
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	now := time.Now()
	return &Transcript{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds an entry and bumps the updated timestamp.
func (t *Transcript) Append(e *Entry) {
	t.Entries = append(t.Entries, e)
	t.UpdatedAt = time.Now()
}

// Entry returns the entry with the given id, or nil.
func (t *Transcript) Entry(id string) *Entry {
	for _, e := range t.Entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// SetContent replaces the full content of the entry with the given id.
// Returns false when no such entry exists.
func (t *Transcript) SetContent(id, content string) bool {
	e := t.Entry(id)
	if e == nil {
		return false
	}
	e.Content = content
	t.UpdatedAt = time.Now()
	return true
}

// FinishEntry marks a streaming entry as complete.
func (t *Transcript) FinishEntry(id string) {
	if e := t.Entry(id); e != nil {
		e.Streaming = false
	}
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.Entries)
}

// FirstUserEntry returns the first user-authored entry, or nil.
func (t *Transcript) FirstUserEntry() *Entry {
	for _, e := range t.Entries {
		if e.Role == RoleUser {
			return e
		}
	}
	return nil
}
