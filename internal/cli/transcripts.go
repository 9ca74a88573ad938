// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// transcripts.go - Saved transcript management.
//
// Command: transcripts [list|show|delete|clear]
package cli

import (
	"errors"
	"fmt"

	"github.com/morganforge/breachadvisor/internal/storage"
)

// HandleTranscripts manages saved transcripts.
func HandleTranscripts(args Args) error {
	store, err := storage.NewTranscriptStore()
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "list":
		metas, err := store.List()
		if err != nil {
			return err
		}
		fmt.Print(storage.FormatTranscriptList(metas))
		return nil

	case "show":
		if len(args.Raw) != 1 {
			return errors.New("usage: breachadvisor transcripts show <id>")
		}
		tr, err := store.Load(args.Raw[0])
		if err != nil {
			return err
		}
		for _, e := range tr.Entries {
			fmt.Printf("%s (%s):\n%s\n\n", e.Role.DisplayName(), e.Timestamp.Format("2006-01-02 15:04"), e.Content)
		}
		return nil

	case "delete":
		if len(args.Raw) != 1 {
			return errors.New("usage: breachadvisor transcripts delete <id>")
		}
		return store.Delete(args.Raw[0])

	case "clear":
		return store.Clear()

	default:
		return fmt.Errorf("unknown transcripts subcommand: %s", args.Subcommand)
	}
}
