// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"
)

// =============================================================================
// PARSING TESTS
// =============================================================================

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"no args defaults to tui", nil, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"check", []string{"check", "user@example.com"}, CmdCheck},
		{"ask", []string{"ask", "what", "now"}, CmdAsk},
		{"models", []string{"models"}, CmdModels},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"transcripts", []string{"transcripts"}, CmdTranscripts},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"unknown falls back to help", []string{"frobnicate"}, CmdHelp},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := parseArgs(tc.argv)
			if got != tc.want {
				t.Errorf("parseArgs(%v) = %v, want %v", tc.argv, got, tc.want)
			}
		})
	}
}

func TestParse_CheckArgs(t *testing.T) {
	_, args := parseArgs([]string{"check", "--advise", "user@example.com"})
	if args.Account != "user@example.com" {
		t.Errorf("Account = %q", args.Account)
	}
	if !args.Advise {
		t.Error("Advise flag not set")
	}

	_, args = parseArgs([]string{"check", "user@example.com"})
	if args.Advise {
		t.Error("Advise set without flag")
	}
}

func TestParse_AskJoinsQuery(t *testing.T) {
	_, args := parseArgs([]string{"ask", "was", "I", "breached?"})
	if args.Query != "was I breached?" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	cmd, args := parseArgs([]string{"-m", "llama3.2", "--endpoint", "http://x:1/api/generate", "ask", "q"})
	if cmd != CmdAsk {
		t.Errorf("cmd = %v", cmd)
	}
	if args.Model != "llama3.2" {
		t.Errorf("Model = %q", args.Model)
	}
	if args.Endpoint != "http://x:1/api/generate" {
		t.Errorf("Endpoint = %q", args.Endpoint)
	}

	// Flags after the command are picked up too.
	_, args = parseArgs([]string{"ask", "-q", "question"})
	if !args.Quiet {
		t.Error("Quiet not set")
	}
}

func TestParse_TranscriptSubcommand(t *testing.T) {
	_, args := parseArgs([]string{"transcripts", "show", "abc123"})
	if args.Subcommand != "show" {
		t.Errorf("Subcommand = %q", args.Subcommand)
	}
	if len(args.Raw) != 1 || args.Raw[0] != "abc123" {
		t.Errorf("Raw = %v", args.Raw)
	}
}

// =============================================================================
// STDOUT SINK TESTS
// =============================================================================

func TestStdoutSink_PrintsSuffixes(t *testing.T) {
	var b strings.Builder
	s := newStdoutSink()
	s.out = func(text string) { b.WriteString(text) }

	id := s.CreateMessage("Thinking...")
	s.UpdateMessage(id, "Rotate ")
	s.UpdateMessage(id, "Rotate your ")
	s.UpdateMessage(id, "Rotate your passwords.")

	if got := b.String(); got != "Rotate your passwords." {
		t.Errorf("printed %q", got)
	}
}

func TestStdoutSink_ErrorReplacesStream(t *testing.T) {
	var b strings.Builder
	s := newStdoutSink()
	s.out = func(text string) { b.WriteString(text) }

	s.UpdateMessage("stdout", "partial answer that got quite long")
	s.UpdateMessage("stdout", "Error: model exploded")

	if got := b.String(); !strings.Contains(got, "Error: model exploded") {
		t.Errorf("printed %q", got)
	}
}
