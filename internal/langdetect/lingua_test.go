package langdetect

import "testing"

func TestDetectISO6391ShortOrEmptyInput(t *testing.T) {
	t.Parallel()

	if got := DetectISO6391(""); got != "" {
		t.Fatalf("expected empty tag for empty input, got %q", got)
	}
	if got := DetectISO6391("   \n "); got != "" {
		t.Fatalf("expected empty tag for whitespace input, got %q", got)
	}
	if got := DetectISO6391("12345 !!"); got != "" {
		t.Fatalf("expected empty tag for non-letter input, got %q", got)
	}
	if got := DetectISO6391("ab cd"); got != "" {
		t.Fatalf("expected empty tag below minimum letter count, got %q", got)
	}
}

func TestDetectISO6391English(t *testing.T) {
	t.Parallel()

	text := "The quick brown fox jumps over the lazy dog while the rain keeps falling on the quiet town."
	if got := DetectISO6391(text); got != "en" {
		t.Fatalf("expected en, got %q", got)
	}
}
