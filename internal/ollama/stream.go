// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client and streaming worker for a local
// Ollama inference server.
package ollama

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader handles line-by-line JSON parsing of a streaming generate
// response. One malformed line does not abort the stream; it is skipped and
// reading continues with the next line.
type StreamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	chunkCount  int
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
	}
}

// Next reads lines until it can return the next well-formed chunk.
// Returns io.EOF when the stream is exhausted.
func (s *StreamReader) Next() (*GenerateChunk, error) {
	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(line) == 0 {
				return nil, io.EOF
			}
			// Try to process the last unterminated line on EOF.
			if len(line) == 0 {
				return nil, err
			}
		}

		trimmed := strings.TrimSpace(string(line))
		if trimmed == "" {
			if err != nil {
				return nil, err
			}
			continue
		}

		var chunk GenerateChunk
		if jsonErr := json.Unmarshal([]byte(trimmed), &chunk); jsonErr != nil {
			// Skip malformed lines
			if err != nil {
				return nil, err
			}
			continue
		}

		s.accumulator.WriteString(chunk.Response)
		s.chunkCount++
		return &chunk, nil
	}
}

// Accumulated returns all response text seen so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// ChunkCount returns the number of well-formed chunks read.
func (s *StreamReader) ChunkCount() int {
	return s.chunkCount
}
