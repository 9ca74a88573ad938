// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Inference server status and model listing.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/morganforge/breachadvisor/internal/ollama"
)

// HandleStatus reports whether the inference server is reachable and
// whether the configured model is installed.
func HandleStatus(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{GenerateURL: cfg.Ollama.Endpoint})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fmt.Printf("Endpoint: %s\n", cfg.Ollama.Endpoint)
	if err := client.CheckRunning(ctx); err != nil {
		fmt.Println("Server:   not reachable")
		return nil
	}
	fmt.Println("Server:   running")

	models, err := client.ListModels(ctx)
	if err != nil {
		fmt.Printf("Models:   could not list (%v)\n", err)
		return nil
	}

	installed := false
	for _, m := range models {
		if m.Name == cfg.Ollama.Model {
			installed = true
			break
		}
	}
	fmt.Printf("Model:    %s", cfg.Ollama.Model)
	if installed {
		fmt.Println(" (installed)")
	} else {
		fmt.Println(" (NOT installed; run: ollama pull " + cfg.Ollama.Model + ")")
	}
	return nil
}

// HandleModels lists the models installed on the inference server.
func HandleModels(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{GenerateURL: cfg.Ollama.Endpoint})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Println("No models installed.")
		return nil
	}

	for _, m := range models {
		fmt.Println(m.Name)
	}
	return nil
}
