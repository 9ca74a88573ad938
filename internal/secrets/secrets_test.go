// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package secrets

import (
	"errors"
	"testing"
)

func TestEnvStore(t *testing.T) {
	t.Run("key set", func(t *testing.T) {
		t.Setenv(HIBPKeyEnv, "test-key-123")
		key, err := NewEnvStore().HIBPKey()
		if err != nil {
			t.Fatalf("HIBPKey() error = %v", err)
		}
		if key != "test-key-123" {
			t.Errorf("key = %q", key)
		}
	})

	t.Run("key with whitespace", func(t *testing.T) {
		t.Setenv(HIBPKeyEnv, "  padded-key \n")
		key, err := NewEnvStore().HIBPKey()
		if err != nil {
			t.Fatalf("HIBPKey() error = %v", err)
		}
		if key != "padded-key" {
			t.Errorf("key = %q", key)
		}
	})

	t.Run("key missing", func(t *testing.T) {
		t.Setenv(HIBPKeyEnv, "")
		_, err := NewEnvStore().HIBPKey()
		if !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("HIBPKey() error = %v, want ErrNoAPIKey", err)
		}
	})
}

func TestStaticStore(t *testing.T) {
	key, err := (&StaticStore{Key: "abc"}).HIBPKey()
	if err != nil || key != "abc" {
		t.Errorf("HIBPKey() = %q, %v", key, err)
	}

	if _, err := (&StaticStore{}).HIBPKey(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("empty StaticStore error = %v, want ErrNoAPIKey", err)
	}
}
