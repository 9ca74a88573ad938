// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/breachadvisor/internal/advisor"
	"github.com/morganforge/breachadvisor/internal/config"
	"github.com/morganforge/breachadvisor/internal/hibp"
	"github.com/morganforge/breachadvisor/internal/model"
	"github.com/morganforge/breachadvisor/internal/secrets"
)

// =============================================================================
// BRIDGE TESTS
// =============================================================================

func TestBridge_CreateMessage(t *testing.T) {
	b := NewBridge()
	var got []tea.Msg
	b.attachFunc(func(msg tea.Msg) { got = append(got, msg) })

	id1 := b.CreateMessage("Thinking...")
	id2 := b.CreateMessage("Thinking...")

	if id1 == "" || id1 == id2 {
		t.Errorf("ids not unique: %q, %q", id1, id2)
	}
	if len(got) != 2 {
		t.Fatalf("posted %d messages, want 2", len(got))
	}
	created, ok := got[0].(entryCreatedMsg)
	if !ok {
		t.Fatalf("got %T, want entryCreatedMsg", got[0])
	}
	if created.ID != id1 || created.Text != "Thinking..." {
		t.Errorf("entryCreatedMsg = %+v", created)
	}
}

func TestBridge_UpdateAndNotify(t *testing.T) {
	b := NewBridge()
	var got []tea.Msg
	b.attachFunc(func(msg tea.Msg) { got = append(got, msg) })

	b.UpdateMessage("id-1", "partial text")
	b.Notify("AI Error", "boom")

	if len(got) != 2 {
		t.Fatalf("posted %d messages, want 2", len(got))
	}
	if upd := got[0].(entryUpdatedMsg); upd.ID != "id-1" || upd.Text != "partial text" {
		t.Errorf("entryUpdatedMsg = %+v", upd)
	}
	if n := got[1].(notifyMsg); n.Title != "AI Error" || n.Message != "boom" {
		t.Errorf("notifyMsg = %+v", n)
	}
}

func TestBridge_UnattachedDoesNotPanic(t *testing.T) {
	b := NewBridge()
	b.UpdateMessage("id", "text")
	b.Notify("t", "m")
	if id := b.CreateMessage("x"); id == "" {
		t.Error("CreateMessage returned empty id while unattached")
	}
}

// =============================================================================
// MODEL TESTS
// =============================================================================

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.Default()
	bridge := NewBridge()
	ctrl := advisor.NewController(advisor.Config{Endpoint: cfg.Ollama.Endpoint, Model: cfg.Ollama.Model}, bridge, bridge)
	client := hibp.NewClient()
	m := New(cfg, ctrl, client, &secrets.StaticStore{Key: "test"}, nil)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return sized.(Model)
}

func TestUpdate_EntryLifecycle(t *testing.T) {
	m := newTestModel(t)

	at := time.Now()
	updated, _ := m.Update(entryCreatedMsg{ID: "e1", Text: "Thinking...", At: at})
	m = updated.(Model)

	if m.Transcript().Len() != 1 {
		t.Fatalf("transcript has %d entries", m.Transcript().Len())
	}
	e := m.Transcript().Entry("e1")
	if e == nil || !e.Streaming || e.Role != model.RoleAdvisor {
		t.Fatalf("entry = %+v", e)
	}

	updated, _ = m.Update(entryUpdatedMsg{ID: "e1", Text: "Rotate your passwords."})
	m = updated.(Model)
	if got := m.Transcript().Entry("e1").Content; got != "Rotate your passwords." {
		t.Errorf("content = %q", got)
	}
}

func TestUpdate_NotifySetsStatus(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(notifyMsg{Title: "AI Error", Message: "model missing"})
	m = updated.(Model)
	if !strings.Contains(m.statusMsg, "model missing") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
}

func TestUpdate_LookupDone(t *testing.T) {
	m := newTestModel(t)

	breaches := []hibp.Breach{{Title: "ExampleCo", Domain: "example.com", BreachDate: "2021-04-01"}}
	updated, _ := m.Update(lookupDoneMsg{Account: "user@example.com", Breaches: breaches})
	m = updated.(Model)

	if m.state != StateReady {
		t.Errorf("state = %v", m.state)
	}
	account, got := m.lastLookup()
	if account != "user@example.com" || len(got) != 1 {
		t.Errorf("lastLookup = %q, %d breaches", account, len(got))
	}

	view := m.renderTranscript()
	if !strings.Contains(view, "ExampleCo") {
		t.Error("transcript does not mention the breach")
	}
	if !strings.Contains(view, "/advise") {
		t.Error("transcript does not suggest /advise")
	}
}

func TestUpdate_LookupFailed(t *testing.T) {
	m := newTestModel(t)
	m.state = StateChecking

	updated, _ := m.Update(lookupFailedMsg{Account: "x@example.com", Err: secrets.ErrNoAPIKey})
	m = updated.(Model)

	if m.state != StateReady {
		t.Errorf("state = %v after failure", m.state)
	}
	if !strings.Contains(m.renderTranscript(), "Breach check failed") {
		t.Error("failure not shown in transcript")
	}
}

// =============================================================================
// COMMAND TESTS
// =============================================================================

func TestCommand_Help(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.runCommand("/help")
	m = updated.(Model)
	if !strings.Contains(m.renderTranscript(), "/check <email>") {
		t.Error("help text not appended")
	}
}

func TestCommand_CheckUsage(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.runCommand("/check")
	m = updated.(Model)
	if !strings.Contains(m.statusMsg, "Usage") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
	if m.state != StateReady {
		t.Errorf("state changed on usage error")
	}
}

func TestCommand_AdviseWithoutLookup(t *testing.T) {
	m := newTestModel(t)
	m.controller.SetReady()

	updated, _ := m.runCommand("/advise")
	m = updated.(Model)
	if !strings.Contains(m.statusMsg, "/check") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
}

func TestCommand_Unknown(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.runCommand("/bogus")
	m = updated.(Model)
	if !strings.Contains(m.statusMsg, "Unknown command") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
}

func TestCommand_Clear(t *testing.T) {
	m := newTestModel(t)
	m.transcript.Append(model.NewEntry(model.RoleUser, "old"))
	m.lastAccount = "user@example.com"
	m.lastBreaches = []hibp.Breach{{Title: "X"}}

	updated, _ := m.runCommand("/clear")
	m = updated.(Model)
	if m.Transcript().Len() != 0 {
		t.Error("transcript not cleared")
	}
	if account, breaches := m.lastLookup(); account != "" || breaches != nil {
		t.Error("lookup context not cleared")
	}
}

func TestStartErrText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{advisor.ErrBusy, "still answering"},
		{advisor.ErrNotReady, "starting up"},
		{advisor.ErrNoBreachContext, "/check"},
	}
	for _, tc := range tests {
		if got := startErrText(tc.err); !strings.Contains(got, tc.want) {
			t.Errorf("startErrText(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
}
