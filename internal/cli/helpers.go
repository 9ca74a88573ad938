// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/morganforge/breachadvisor/internal/advisor"
	"github.com/morganforge/breachadvisor/internal/config"
	"github.com/morganforge/breachadvisor/internal/hibp"
)

// loadConfig loads the configuration and applies flag overrides.
func loadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}
	if args.Endpoint != "" {
		cfg.Ollama.Endpoint = args.Endpoint
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newHIBPClient builds a breach lookup client from config.
func newHIBPClient(cfg *config.Config) *hibp.Client {
	clientCfg := &hibp.ClientConfig{UserAgent: cfg.HIBP.UserAgent}
	if rpm := cfg.HIBP.RequestsPerMinute; rpm > 0 {
		clientCfg.Limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
	}
	return hibp.NewClientWithConfig(clientCfg)
}

// =============================================================================
// STDOUT TRANSCRIPT SINK
// =============================================================================

// stdoutSink streams advisor output to a writer as it arrives. Updates carry
// the full accumulated text; only the new suffix is printed.
type stdoutSink struct {
	mu      sync.Mutex
	out     func(string)
	printed int
}

func newStdoutSink() *stdoutSink {
	return &stdoutSink{out: func(s string) { fmt.Print(s) }}
}

// CreateMessage implements advisor.TranscriptSink.
func (s *stdoutSink) CreateMessage(initialText string) string {
	// The "Thinking..." placeholder is a transcript artifact; a streaming
	// terminal just waits for the first token.
	return "stdout"
}

// UpdateMessage implements advisor.TranscriptSink.
func (s *stdoutSink) UpdateMessage(id, fullText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(fullText) > s.printed {
		s.out(fullText[s.printed:])
		s.printed = len(fullText)
	} else if len(fullText) < s.printed {
		// Error text replaced the stream; print it on its own line.
		s.out("\n" + fullText)
		s.printed = len(fullText)
	}
}

// Notify implements advisor.Notifier.
func (s *stdoutSink) Notify(title, message string) {
	fmt.Fprintf(os.Stderr, "\n%s: %s\n", title, message)
}

// =============================================================================
// TURN EXECUTION
// =============================================================================

// runTurn waits for the controller's in-flight turn to finish, stopping it
// on SIGINT.
func runTurn(ctrl *advisor.Controller) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	for ctrl.Busy() {
		select {
		case <-sigc:
			ctrl.Stop()
		case <-time.After(50 * time.Millisecond):
		}
	}
	fmt.Println()
}

// newAdvisor builds a ready controller that streams to stdout.
func newAdvisor(cfg *config.Config) *advisor.Controller {
	sink := newStdoutSink()
	ctrl := advisor.NewController(advisor.Config{
		Endpoint: cfg.Ollama.Endpoint,
		Model:    cfg.Ollama.Model,
	}, sink, sink)
	ctrl.SetReady()
	return ctrl
}
