// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler.
//
// Command: ask [question]
//
// Sends one question to the local model and streams the plain-text answer
// to stdout. Ctrl+C stops the stream.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/morganforge/breachadvisor/internal/ollama"
)

// HandleAsk streams the answer to a single question.
func HandleAsk(args Args) error {
	if args.Query == "" {
		return errors.New("usage: breachadvisor ask \"question\"")
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctrl := newAdvisor(cfg)

	if err := ctrl.Client().CheckRunning(context.Background()); err != nil {
		if ollama.IsNotRunning(err) {
			return errors.New("the inference server is not running at " + cfg.Ollama.Endpoint)
		}
		return err
	}

	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "[%s]\n", cfg.Ollama.Model)
	}

	if err := ctrl.StartTurn(args.Query); err != nil {
		return err
	}
	runTurn(ctrl)
	ctrl.Shutdown()
	return nil
}
