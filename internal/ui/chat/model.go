// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/breachadvisor/internal/advisor"
	"github.com/morganforge/breachadvisor/internal/config"
	"github.com/morganforge/breachadvisor/internal/hibp"
	"github.com/morganforge/breachadvisor/internal/model"
	"github.com/morganforge/breachadvisor/internal/secrets"
	"github.com/morganforge/breachadvisor/internal/storage"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateChecking               // Breach lookup in flight
	StateStreaming              // Receiving a streaming answer
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the advisor chat view.
type Model struct {
	state State

	// Dimensions
	width  int
	height int
	sized  bool

	// Transcript
	transcript *model.Transcript
	store      *storage.TranscriptStore

	// Collaborators
	controller *advisor.Controller
	hibpClient *hibp.Client
	creds      secrets.CredentialStore
	cfg        *config.Config

	// Last completed lookup, used by /advise.
	lastAccount  string
	lastBreaches []hibp.Breach

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Status line
	statusMsg string
}

// New creates the chat model. The controller must have been constructed with
// a Bridge that will be attached to the running program.
func New(cfg *config.Config, ctrl *advisor.Controller, hibpClient *hibp.Client, creds secrets.CredentialStore, store *storage.TranscriptStore) Model {
	input := textinput.New()
	input.Placeholder = "Ask for advice, or /check <email> to look up breaches"
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	transcript := model.NewTranscript()
	transcript.Model = cfg.Ollama.Model

	return Model{
		state:      StateReady,
		transcript: transcript,
		store:      store,
		controller: ctrl,
		hibpClient: hibpClient,
		creds:      creds,
		cfg:        cfg,
		input:      input,
		spinner:    sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Transcript exposes the transcript, for saving on exit.
func (m Model) Transcript() *model.Transcript {
	return m.transcript
}

// busy reports whether input should be rejected.
func (m Model) busy() bool {
	return m.state != StateReady
}
