// breachadvisor - breach lookup with a local AI security advisor.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/morganforge/breachadvisor/internal/advisor"
	"github.com/morganforge/breachadvisor/internal/cli"
	"github.com/morganforge/breachadvisor/internal/config"
	"github.com/morganforge/breachadvisor/internal/hibp"
	"github.com/morganforge/breachadvisor/internal/secrets"
	"github.com/morganforge/breachadvisor/internal/storage"
	"github.com/morganforge/breachadvisor/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdCheck:
		exitOnError(cli.HandleCheck(args))
	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(args))
	case cli.CmdModels:
		exitOnError(cli.HandleModels(args))
	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args))
	case cli.CmdTranscripts:
		exitOnError(cli.HandleTranscripts(args))
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the advisor, breach client, and storage into the chat view
// and runs the program.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		exitOnError(err)
	}
	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}
	if args.Endpoint != "" {
		cfg.Ollama.Endpoint = args.Endpoint
	}
	exitOnError(cfg.Validate())

	hibpCfg := &hibp.ClientConfig{UserAgent: cfg.HIBP.UserAgent}
	if rpm := cfg.HIBP.RequestsPerMinute; rpm > 0 {
		hibpCfg.Limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
	}
	hibpClient := hibp.NewClientWithConfig(hibpCfg)

	// Transcript storage is best-effort; the TUI runs without it.
	store, err := storage.NewTranscriptStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: transcript storage unavailable: %v\n", err)
		store = nil
	}

	bridge := chat.NewBridge()
	ctrl := advisor.NewController(advisor.Config{
		Endpoint: cfg.Ollama.Endpoint,
		Model:    cfg.Ollama.Model,
	}, bridge, bridge)

	m := chat.New(cfg, ctrl, hibpClient, secrets.NewEnvStore(), store)
	p := tea.NewProgram(m, tea.WithAltScreen())
	bridge.Attach(p)

	// Live config edits only take effect on restart; surface a hint so the
	// user knows why nothing changed.
	if path, err := config.ConfigPath(); err == nil {
		if w, err := config.NewWatcher(path, func(*config.Config) {
			bridge.Notify("Config", "config.toml changed; restart to apply")
		}); err == nil {
			defer w.Close()
		}
	}

	_, runErr := p.Run()

	// Bounded shutdown: stop the in-flight worker, wait briefly, detach.
	ctrl.Shutdown()

	exitOnError(runErr)
}
