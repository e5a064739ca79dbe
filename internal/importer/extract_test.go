package importer

import (
	"strings"
	"testing"
)

func TestCleanTextCollapsesWhitespaceAndPreservesParagraphs(t *testing.T) {
	t.Parallel()

	input := "  First   paragraph \n\n Second\tparagraph \r\n\r\nThird line "
	got := CleanText(input)
	want := "First paragraph\n\nSecond paragraph\n\nThird line"
	if got != want {
		t.Fatalf("CleanText mismatch\nwant: %q\ngot:  %q", want, got)
	}
}

func TestTruncateText(t *testing.T) {
	t.Parallel()

	got, truncated := TruncateText("abcdefghijklmnopqrstuvwxyz", 10)
	if !truncated {
		t.Fatalf("expected truncated=true")
	}
	if got != "abcdefghi…" {
		t.Fatalf("unexpected truncated text: %q", got)
	}

	full, wasTruncated := TruncateText("short", 10)
	if wasTruncated {
		t.Fatalf("expected truncated=false for short text")
	}
	if full != "short" {
		t.Fatalf("unexpected short text: %q", full)
	}
}

func TestExtractHTML(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Weekly planning notes</title></head>
<body>
<article>
<h1>Weekly planning notes</h1>
<p>The roadmap review moved to Thursday because half the team is traveling.</p>
<p>Carry over the migration task and split the rollout into two phases.</p>
</article>
</body>
</html>`

	text, err := ExtractHTML([]byte(html), nil)
	if err != nil {
		t.Fatalf("extract html: %v", err)
	}
	if !strings.Contains(text, "roadmap review moved to Thursday") {
		t.Fatalf("expected article text in extraction, got: %q", text)
	}
	if strings.Contains(text, "<p>") {
		t.Fatalf("expected markup stripped, got: %q", text)
	}
}

func TestExtractHTMLEmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := ExtractHTML([]byte("   "), nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestTitleFromFileName(t *testing.T) {
	t.Parallel()

	if got := titleFromFileName("notes/meeting-2026-08.md"); got != "meeting-2026-08" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := titleFromFileName(".env"); got != ".env" {
		t.Fatalf("unexpected title for dotfile: %q", got)
	}
}
