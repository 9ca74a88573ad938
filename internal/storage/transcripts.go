// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides transcript persistence for breachadvisor.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/morganforge/breachadvisor/internal/model"
	"github.com/morganforge/breachadvisor/internal/util"
)

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore persists advisor transcripts as one JSON file per
// transcript. Transcripts carry account identifiers, so files are 0600 and
// the directory 0700.
type TranscriptStore struct {
	// BaseDir is the directory for stored transcripts.
	// Default: ~/.breachadvisor/transcripts/
	BaseDir string

	// MaxTranscripts limits stored transcripts (0 = unlimited). The oldest
	// are removed when the limit is exceeded.
	MaxTranscripts int
}

// TranscriptMeta contains metadata for listing transcripts.
type TranscriptMeta struct {
	ID         string `json:"id"`
	Account    string `json:"account,omitempty"`
	Model      string `json:"model,omitempty"`
	EntryCount int    `json:"entry_count"`
	Preview    string `json:"preview"`

	UpdatedAt string `json:"updated_at"`
	CreatedAt string `json:"created_at"`
}

// NewTranscriptStore creates a store under the user's home directory.
func NewTranscriptStore() (*TranscriptStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewTranscriptStoreWithDir(filepath.Join(homeDir, ".breachadvisor", "transcripts"))
}

// NewTranscriptStoreWithDir creates a store with a custom directory.
func NewTranscriptStoreWithDir(baseDir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, err
	}
	return &TranscriptStore{
		BaseDir:        baseDir,
		MaxTranscripts: 100,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a transcript and returns its id.
func (s *TranscriptStore) Save(tr *model.Transcript) (string, error) {
	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return "", err
	}

	if err := util.AtomicWriteFileWithDir(s.filePath(tr.ID), data, 0600, 0700); err != nil {
		return "", err
	}

	if s.MaxTranscripts > 0 {
		s.enforceLimit()
	}

	return tr.ID, nil
}

// enforceLimit removes the oldest transcripts if over the limit.
func (s *TranscriptStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxTranscripts {
		return
	}

	// List returns most recent first; trim from the tail.
	for _, meta := range metas[s.MaxTranscripts:] {
		s.Delete(meta.ID)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a transcript by id.
func (s *TranscriptStore) Load(id string) (*model.Transcript, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, err
	}

	var tr model.Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// LoadByIndex loads a transcript by its position in the list (0 = most
// recent).
func (s *TranscriptStore) LoadByIndex(index int) (*model.Transcript, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(metas) {
		return nil, ErrTranscriptNotFound
	}
	return s.Load(metas[index].ID)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns metadata for all saved transcripts, most recent first.
// Unreadable or corrupted files are skipped.
func (s *TranscriptStore) List() ([]TranscriptMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TranscriptMeta{}, nil
		}
		return nil, err
	}

	var metas []TranscriptMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		tr, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}

		preview := ""
		if first := tr.FirstUserEntry(); first != nil {
			preview = first.Preview(80)
		}

		metas = append(metas, TranscriptMeta{
			ID:         tr.ID,
			Account:    tr.Account,
			Model:      tr.Model,
			EntryCount: tr.Len(),
			Preview:    preview,
			CreatedAt:  tr.CreatedAt.Format("2006-01-02 15:04"),
			UpdatedAt:  tr.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt > metas[j].UpdatedAt
	})
	return metas, nil
}

// Search finds transcripts whose entries contain the query string
// (case-insensitive). An empty query returns everything.
func (s *TranscriptStore) Search(query string) ([]TranscriptMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}

	query = strings.ToLower(query)
	var results []TranscriptMeta
	for _, meta := range all {
		tr, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, e := range tr.Entries {
			if strings.Contains(strings.ToLower(e.Content), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a transcript by id.
func (s *TranscriptStore) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrTranscriptNotFound
		}
		return err
	}
	return nil
}

// Clear removes all saved transcripts.
func (s *TranscriptStore) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}
	return nil
}

// filePath returns the file path for a transcript id.
func (s *TranscriptStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrTranscriptNotFound is returned when a transcript doesn't exist.
// Use errors.Is(err, ErrTranscriptNotFound) to check for it.
var ErrTranscriptNotFound = &TranscriptError{Message: "transcript not found"}

// TranscriptError represents a transcript storage error.
type TranscriptError struct {
	Message string
}

func (e *TranscriptError) Error() string {
	return e.Message
}

// Is implements errors.Is support.
func (e *TranscriptError) Is(target error) bool {
	t, ok := target.(*TranscriptError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// LIST FORMATTING
// =============================================================================

// FormatTranscriptList formats transcript metadata as a plain-text table.
func FormatTranscriptList(metas []TranscriptMeta) string {
	if len(metas) == 0 {
		return "No transcripts found."
	}

	var sb strings.Builder
	sb.WriteString("Transcripts:\n")
	sb.WriteString("-----------------------------------------------------\n")
	sb.WriteString(pad("ID", 12) + " " + pad("Updated", 18) + " " + pad("Entries", 8) + " Preview\n")
	sb.WriteString("-----------------------------------------------------\n")

	for _, m := range metas {
		id := m.ID
		if len(id) > 12 {
			id = id[:12]
		}
		sb.WriteString(pad(id, 12) + " " +
			pad(m.UpdatedAt, 18) + " " +
			pad(strconv.Itoa(m.EntryCount), 8) + " " +
			util.TruncateWidth(m.Preview, 30) + "\n")
	}
	return sb.String()
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(runes))
}
