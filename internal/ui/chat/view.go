// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/breachadvisor/internal/model"
	"github.com/morganforge/breachadvisor/internal/util"
)

// chromeHeight is the rows taken by the title, status line, and input.
const chromeHeight = 4

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	advisorLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("42"))

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.SetContent("")
	return vp
}

// =============================================================================
// RENDERING
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.sized {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("breachadvisor") + "  " + m.headerInfo())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(inputPromptStyle.Render("> ") + m.input.View())
	return b.String()
}

func (m Model) headerInfo() string {
	return systemStyle.Render("model: " + m.controller.Model())
}

func (m Model) statusLine() string {
	switch m.state {
	case StateChecking:
		return statusStyle.Render(m.spinner.View() + " checking breach data...")
	case StateStreaming:
		return statusStyle.Render(m.spinner.View() + " advisor is answering (Esc to stop)")
	}
	if m.statusMsg != "" {
		return statusStyle.Render(util.TruncateWidth(m.statusMsg, m.width))
	}
	return ""
}

// refreshViewport re-renders the transcript into the viewport and keeps it
// pinned to the bottom.
func (m *Model) refreshViewport() {
	if !m.sized {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	width := m.width - 2
	if width < 10 {
		width = 10
	}
	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, e := range m.transcript.Entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.Role {
		case model.RoleUser:
			b.WriteString(userLabelStyle.Render(e.Role.DisplayName()+":") + "\n")
			b.WriteString(body.Render(e.Content) + "\n")
		case model.RoleAdvisor:
			label := e.Role.DisplayName() + ":"
			if e.Streaming {
				label += " " + m.spinner.View()
			}
			b.WriteString(advisorLabelStyle.Render(label) + "\n")
			b.WriteString(body.Render(e.Content) + "\n")
		default:
			b.WriteString(systemStyle.Render(body.Render(e.Content)) + "\n")
		}
	}
	return b.String()
}
