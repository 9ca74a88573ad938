// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for breachadvisor.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdCheck
	CmdAsk
	CmdModels
	CmdStatus
	CmdTranscripts
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Model    string
	Endpoint string
	Quiet    bool

	// Command-specific
	Account string // check: account to look up
	Advise  bool   // check: stream advice after the lookup
	Query   string // ask: question text

	Subcommand string
	Raw        []string
}

const usageText = `breachadvisor - breach lookup with a local AI security advisor

Checks accounts against the Have I Been Pwned breach database and asks a
locally running Ollama model for plain-text mitigation advice.

Usage:
  breachadvisor                      Start the TUI (default)
  breachadvisor check <email>        Look up an account's breaches
  breachadvisor check --advise <email>
                                     Look up and stream advice
  breachadvisor ask "question"       Ask the advisor a single question
  breachadvisor models               List installed inference models
  breachadvisor status               Check the inference server
  breachadvisor transcripts [list|show|delete|clear]
                                     Manage saved transcripts
  breachadvisor version              Show version
  breachadvisor help                 Show this help

Flags:
  -m, --model NAME       Use a specific model (overrides config)
  --endpoint URL         Generate endpoint URL (overrides config)
  -q, --quiet            Minimal output

Environment:
  HIBP_API_KEY                   HIBP API key (required for check)
  BREACHADVISOR_OLLAMA_ENDPOINT  Generate endpoint override
  BREACHADVISOR_OLLAMA_MODEL     Model override

Configuration lives in ~/.breachadvisor/config.toml.`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

func parseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "check":
		for _, a := range remaining {
			switch {
			case a == "--advise" || a == "-a":
				args.Advise = true
			case !strings.HasPrefix(a, "-") && args.Account == "":
				args.Account = a
			}
		}
		return CmdCheck, args

	case "ask":
		args.Query = strings.Join(remaining, " ")
		return CmdAsk, args

	case "models":
		return CmdModels, args

	case "status", "s":
		return CmdStatus, args

	case "transcripts", "transcript", "sessions":
		if len(remaining) > 0 {
			args.Subcommand = remaining[0]
			args.Raw = remaining[1:]
		}
		return CmdTranscripts, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// parseGlobalFlags extracts global flags, returning the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch a {
		case "-m", "--model":
			if i+1 < len(argv) {
				i++
				args.Model = argv[i]
			}
		case "--endpoint":
			if i+1 < len(argv) {
				i++
				args.Endpoint = argv[i]
			}
		case "-q", "--quiet":
			args.Quiet = true
		default:
			remaining = append(remaining, a)
		}
	}

	return remaining, args
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("breachadvisor %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Println(usageText)
}
