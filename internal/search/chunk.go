package search

import (
	"strings"
	"unicode/utf8"
)

const (
	// ChunkSize is the fixed window, in characters, content is split into
	// for indexing.
	ChunkSize = 1200

	// MaxChunksPerItem bounds indexing cost on pathologically large inputs.
	MaxChunksPerItem = 50

	// maxStoredChunkLength caps the text persisted per chunk row.
	maxStoredChunkLength = 3000
)

// ChunkText splits content into fixed-size, non-overlapping windows of
// runes. Windows never cut through a multi-byte character. Blank input
// produces no chunks. Concatenating the result reproduces the input.
func ChunkText(input string, size int) []string {
	if size <= 0 {
		size = ChunkSize
	}
	if strings.TrimSpace(input) == "" {
		return nil
	}

	chunks := make([]string, 0, (utf8.RuneCountInString(input)+size-1)/size)
	start := 0
	count := 0
	for i := range input {
		if count == size {
			chunks = append(chunks, input[start:i])
			start = i
			count = 0
		}
		count++
	}
	return append(chunks, input[start:])
}

// truncate bounds input to max runes without splitting a character.
func truncate(input string, max int) string {
	if max <= 0 {
		return input
	}
	count := 0
	for i := range input {
		if count == max {
			return input[:i]
		}
		count++
	}
	return input
}
