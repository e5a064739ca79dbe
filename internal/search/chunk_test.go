package search

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkTextWindows(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("a", 3000)
	chunks := ChunkText(input, ChunkSize)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1200 || len(chunks[1]) != 1200 || len(chunks[2]) != 600 {
		t.Fatalf("unexpected chunk sizes: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if strings.Join(chunks, "") != input {
		t.Fatalf("concatenated chunks do not reproduce the input")
	}
}

func TestChunkTextMultiByteWindows(t *testing.T) {
	t.Parallel()

	input := "a" + strings.Repeat("世", 1200)
	chunks := ChunkText(input, ChunkSize)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %d is not valid UTF-8", i)
		}
	}
	if got := utf8.RuneCountInString(chunks[0]); got != 1200 {
		t.Fatalf("expected 1200 characters in the first chunk, got %d", got)
	}
	if got := utf8.RuneCountInString(chunks[1]); got != 1 {
		t.Fatalf("expected 1 character in the second chunk, got %d", got)
	}
	if strings.Join(chunks, "") != input {
		t.Fatalf("concatenated chunks do not reproduce the input")
	}
}

func TestChunkTextBlankInput(t *testing.T) {
	t.Parallel()

	if chunks := ChunkText("   \n\t  ", ChunkSize); chunks != nil {
		t.Fatalf("expected nil for blank input, got %v", chunks)
	}
	if chunks := ChunkText("", ChunkSize); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
}

func TestChunkTextShortInput(t *testing.T) {
	t.Parallel()

	chunks := ChunkText("hello", ChunkSize)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Fatalf("expected single chunk with the full input, got %v", chunks)
	}
}

func TestTruncateKeepsCharactersIntact(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("語", 10)
	got := truncate(input, 4)

	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if got != strings.Repeat("語", 4) {
		t.Fatalf("expected 4 characters, got %q", got)
	}
	if truncate("short", 10) != "short" {
		t.Fatalf("input under the cap must pass through unchanged")
	}
}
