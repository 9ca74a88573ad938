// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package secrets resolves API credentials for breachadvisor.
//
// Credentials are never written to the config file. The only supported
// source is the process environment, which keeps keys out of anything the
// application persists.
package secrets

import (
	"errors"
	"os"
	"strings"
)

// HIBPKeyEnv is the environment variable holding the HIBP API key.
const HIBPKeyEnv = "HIBP_API_KEY"

// ErrNoAPIKey is returned when no credential is available.
var ErrNoAPIKey = errors.New("no HIBP API key set (export " + HIBPKeyEnv + ")")

// CredentialStore provides API credentials. Implementations must be safe
// for concurrent use.
type CredentialStore interface {
	// HIBPKey returns the HIBP API key, or ErrNoAPIKey.
	HIBPKey() (string, error)
}

// =============================================================================
// ENVIRONMENT STORE
// =============================================================================

// EnvStore reads credentials from the process environment.
type EnvStore struct{}

// NewEnvStore returns a CredentialStore backed by environment variables.
func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// HIBPKey implements CredentialStore.
func (s *EnvStore) HIBPKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(HIBPKeyEnv))
	if key == "" {
		return "", ErrNoAPIKey
	}
	return key, nil
}

// =============================================================================
// STATIC STORE
// =============================================================================

// StaticStore holds a fixed key. Used by tests and by callers that obtain
// the key some other way.
type StaticStore struct {
	Key string
}

// HIBPKey implements CredentialStore.
func (s *StaticStore) HIBPKey() (string, error) {
	if strings.TrimSpace(s.Key) == "" {
		return "", ErrNoAPIKey
	}
	return s.Key, nil
}
