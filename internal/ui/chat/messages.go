// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/morganforge/breachadvisor/internal/hibp"
	"github.com/morganforge/breachadvisor/internal/ollama"
)

// =============================================================================
// EVENT LOOP MESSAGES
// =============================================================================

// entryCreatedMsg adds a new streaming advisor entry to the transcript.
type entryCreatedMsg struct {
	ID   string
	Text string
	At   time.Time
}

// entryUpdatedMsg replaces the full text of an existing entry.
type entryUpdatedMsg struct {
	ID   string
	Text string
}

// notifyMsg surfaces an out-of-band notification in the status line.
type notifyMsg struct {
	Title   string
	Message string
}

// lookupDoneMsg carries the result of a breach lookup.
type lookupDoneMsg struct {
	Account  string
	Breaches []hibp.Breach
}

// lookupFailedMsg carries a failed breach lookup.
type lookupFailedMsg struct {
	Account string
	Err     error
}

// modelsDoneMsg carries the installed model list.
type modelsDoneMsg struct {
	Models []ollama.ModelInfo
}

// modelsFailedMsg carries a failed model listing.
type modelsFailedMsg struct {
	Err error
}

// savedMsg reports a transcript save.
type savedMsg struct {
	ID  string
	Err error
}

// pollMsg drives the idle poll while a turn is streaming. The advisor
// releases its single-flight lock on the terminal event; the view watches
// for that to flip back to ready.
type pollMsg struct{}
