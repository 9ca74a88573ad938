// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// check.go - Breach lookup command handler.
//
// Command: check <email> [--advise]
//
// Examples:
//   breachadvisor check user@example.com
//   breachadvisor check --advise user@example.com
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/morganforge/breachadvisor/internal/advisor"
	"github.com/morganforge/breachadvisor/internal/hibp"
	"github.com/morganforge/breachadvisor/internal/secrets"
)

// HandleCheck looks up an account against the breach database and prints a
// summary. With --advise, it then streams mitigation advice from the local
// model.
func HandleCheck(args Args) error {
	if args.Account == "" {
		return errors.New("usage: breachadvisor check <email>")
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	key, err := secrets.NewEnvStore().HIBPKey()
	if err != nil {
		return err
	}

	if !args.Quiet {
		fmt.Printf("Checking %s against HIBP...\n", args.Account)
	}

	client := newHIBPClient(cfg)
	breaches, err := client.Lookup(context.Background(), args.Account, key)
	if err != nil {
		return describeLookupError(err)
	}

	fmt.Println(advisor.FormatLookupSummary(args.Account, breaches))

	if args.Advise && len(breaches) > 0 {
		if !args.Quiet {
			fmt.Printf("Asking %s for advice...\n\n", cfg.Ollama.Model)
		}
		ctrl := newAdvisor(cfg)
		if err := ctrl.AdviseOnBreaches(args.Account, breaches); err != nil {
			return err
		}
		runTurn(ctrl)
		ctrl.Shutdown()
	}

	return nil
}

// describeLookupError turns lookup error kinds into actionable messages.
func describeLookupError(err error) error {
	var lerr *hibp.LookupError
	if !errors.As(err, &lerr) {
		return err
	}

	switch lerr.Kind {
	case hibp.ErrKindUnauthorized:
		return errors.New("the HIBP API key was rejected; check " + secrets.HIBPKeyEnv)
	case hibp.ErrKindRateLimited:
		return fmt.Errorf("rate limited by HIBP; retry in %s", lerr.RetryAfter)
	case hibp.ErrKindConnection, hibp.ErrKindNetwork:
		return errors.New("could not reach HIBP: " + lerr.Message)
	default:
		return err
	}
}
