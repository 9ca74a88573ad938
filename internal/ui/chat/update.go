// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/breachadvisor/internal/advisor"
	"github.com/morganforge/breachadvisor/internal/hibp"
	"github.com/morganforge/breachadvisor/internal/model"
)

// pollInterval is how often the view checks whether the in-flight turn has
// released the advisor.
const pollInterval = 100 * time.Millisecond

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case entryCreatedMsg:
		entry := &model.Entry{
			ID:        msg.ID,
			Role:      model.RoleAdvisor,
			Content:   msg.Text,
			Timestamp: msg.At,
			Streaming: true,
		}
		m.transcript.Append(entry)
		m.refreshViewport()
		return m, nil

	case entryUpdatedMsg:
		m.transcript.SetContent(msg.ID, msg.Text)
		m.refreshViewport()
		return m, nil

	case notifyMsg:
		m.statusMsg = msg.Title + ": " + msg.Message
		return m, nil

	case pollMsg:
		if m.controller.Busy() {
			return m, m.pollIdle()
		}
		m.finishStreaming()
		return m, nil

	case lookupDoneMsg:
		return m.handleLookupDone(msg)

	case lookupFailedMsg:
		m.state = StateReady
		m.appendSystem("Breach check failed for " + msg.Account + ": " + msg.Err.Error())
		return m, nil

	case modelsDoneMsg:
		names := make([]string, len(msg.Models))
		for i, mi := range msg.Models {
			names[i] = mi.Name
		}
		if len(names) == 0 {
			m.appendSystem("No models installed.")
		} else {
			m.appendSystem("Installed models: " + strings.Join(names, ", "))
		}
		return m, nil

	case modelsFailedMsg:
		m.appendSystem("Could not list models: " + msg.Err.Error())
		return m, nil

	case savedMsg:
		if msg.Err != nil {
			m.statusMsg = "Save failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "Saved transcript " + msg.ID
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY AND RESIZE HANDLING
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	vpHeight := msg.Height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.sized {
		m.viewport = newViewport(msg.Width, vpHeight)
		m.sized = true
		// First layout: the surface can accept transcript updates now.
		m.controller.SetReady()
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}
	m.input.Width = msg.Width - 4
	m.refreshViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.state == StateStreaming {
			m.controller.Stop()
			m.statusMsg = "Stopping..."
		}
		return m, nil

	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}

	if m.busy() {
		m.statusMsg = "Still working on the previous request."
		return m, nil
	}

	if err := m.controller.StartTurn(text); err != nil {
		m.statusMsg = startErrText(err)
		return m, nil
	}

	m.transcript.Append(model.NewEntry(model.RoleUser, text))
	m.input.Reset()
	m.state = StateStreaming
	m.statusMsg = ""
	m.refreshViewport()
	return m, m.pollIdle()
}

func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/check":
		if len(args) != 1 {
			m.statusMsg = "Usage: /check <email>"
			return m, nil
		}
		if m.busy() {
			m.statusMsg = "Still working on the previous request."
			return m, nil
		}
		account := args[0]
		m.input.Reset()
		m.state = StateChecking
		m.statusMsg = ""
		m.appendSystem("Checking " + account + " against HIBP...")
		return m, m.lookupCmd(account)

	case "/advise":
		if m.busy() {
			m.statusMsg = "Still working on the previous request."
			return m, nil
		}
		if err := m.controller.AdviseOnBreaches(m.lastAccount, m.lastBreaches); err != nil {
			m.statusMsg = startErrText(err)
			return m, nil
		}
		m.input.Reset()
		m.state = StateStreaming
		m.statusMsg = ""
		return m, m.pollIdle()

	case "/models":
		m.input.Reset()
		return m, m.modelsCmd()

	case "/model":
		if len(args) != 1 {
			m.statusMsg = "Usage: /model <name>"
			return m, nil
		}
		m.controller.SetModel(args[0])
		m.input.Reset()
		m.transcript.Model = args[0]
		m.appendSystem("Model set to " + args[0] + ".")
		return m, nil

	case "/save":
		m.input.Reset()
		return m, m.saveCmd()

	case "/clear":
		m.input.Reset()
		m.transcript = model.NewTranscript()
		m.lastAccount = ""
		m.lastBreaches = nil
		m.refreshViewport()
		return m, nil

	case "/help":
		m.input.Reset()
		m.appendSystem(helpText)
		return m, nil

	case "/quit":
		return m, tea.Quit

	default:
		m.statusMsg = "Unknown command " + cmd + " (try /help)"
		return m, nil
	}
}

const helpText = `Commands:
  /check <email>  Look up the account in HIBP breach data
  /advise         Ask the advisor about the last breach check
  /models         List installed inference models
  /model <name>   Switch the advisor model
  /save           Save this transcript
  /clear          Start a fresh transcript
  /quit           Exit
Anything else is sent to the advisor as a question. Esc stops a running answer.`

// startErrText maps advisor start errors to status line text.
func startErrText(err error) string {
	switch {
	case errors.Is(err, advisor.ErrBusy):
		return "The advisor is still answering; wait or press Esc."
	case errors.Is(err, advisor.ErrNotReady):
		return "Still starting up, try again in a moment."
	case errors.Is(err, advisor.ErrNoBreachContext):
		return "No breach results yet; run /check <email> first."
	default:
		return err.Error()
	}
}

// =============================================================================
// ASYNC COMMANDS
// =============================================================================

func (m Model) lookupCmd(account string) tea.Cmd {
	client := m.hibpClient
	creds := m.creds
	return func() tea.Msg {
		key, err := creds.HIBPKey()
		if err != nil {
			return lookupFailedMsg{Account: account, Err: err}
		}
		breaches, err := client.Lookup(context.Background(), account, key)
		if err != nil {
			return lookupFailedMsg{Account: account, Err: err}
		}
		return lookupDoneMsg{Account: account, Breaches: breaches}
	}
}

func (m Model) modelsCmd() tea.Cmd {
	client := m.controller.Client()
	return func() tea.Msg {
		models, err := client.ListModels(context.Background())
		if err != nil {
			return modelsFailedMsg{Err: err}
		}
		return modelsDoneMsg{Models: models}
	}
}

func (m Model) saveCmd() tea.Cmd {
	store := m.store
	tr := m.transcript
	return func() tea.Msg {
		if store == nil {
			return savedMsg{Err: errors.New("transcript storage unavailable")}
		}
		id, err := store.Save(tr)
		return savedMsg{ID: id, Err: err}
	}
}

func (m Model) pollIdle() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

func (m *Model) handleLookupDone(msg lookupDoneMsg) (tea.Model, tea.Cmd) {
	m.state = StateReady
	m.lastAccount = msg.Account
	m.lastBreaches = msg.Breaches
	m.transcript.Account = msg.Account
	m.appendSystem(advisor.FormatLookupSummary(msg.Account, msg.Breaches))
	if len(msg.Breaches) > 0 {
		m.appendSystem("Run /advise to get mitigation advice.")
	}
	return *m, nil
}

// finishStreaming flips the view back to ready and closes out the last
// streaming entry.
func (m *Model) finishStreaming() {
	m.state = StateReady
	for i := len(m.transcript.Entries) - 1; i >= 0; i-- {
		e := m.transcript.Entries[i]
		if e.Streaming {
			m.transcript.FinishEntry(e.ID)
			break
		}
	}
	m.refreshViewport()
}

func (m *Model) appendSystem(text string) {
	m.transcript.Append(model.NewEntry(model.RoleSystem, text))
	m.refreshViewport()
}

// lastLookup exposes the most recent breach result, for tests.
func (m Model) lastLookup() (string, []hibp.Breach) {
	return m.lastAccount, m.lastBreaches
}
