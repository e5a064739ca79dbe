package embedding

import (
	"math"
	"testing"
)

func TestVectorLiteralRoundTrip(t *testing.T) {
	t.Parallel()

	literal, err := VectorLiteral([]float64{0.25, -1, 3.5})
	if err != nil {
		t.Fatalf("unexpected literal error: %v", err)
	}
	if literal != "[0.25,-1,3.5]" {
		t.Fatalf("unexpected literal: %q", literal)
	}

	values, err := ParseVector(literal)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(values) != 3 || values[0] != 0.25 || values[1] != -1 || values[2] != 3.5 {
		t.Fatalf("unexpected parsed values: %v", values)
	}
}

func TestVectorLiteralRejectsNonFinite(t *testing.T) {
	t.Parallel()

	if _, err := VectorLiteral([]float64{1, math.NaN()}); err == nil {
		t.Fatalf("expected error for NaN component")
	}
	if _, err := VectorLiteral(nil); err == nil {
		t.Fatalf("expected error for empty vector")
	}
}

func TestParseVectorFailsLoudly(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"0.1,0.2",
		"[]",
		"[0.1,abc,0.3]",
		"[0.1,,0.3]",
	}
	for _, literal := range cases {
		if _, err := ParseVector(literal); err == nil {
			t.Fatalf("expected parse error for %q", literal)
		}
	}
}

func TestEmbedUnavailableWithoutEndpoint(t *testing.T) {
	t.Parallel()

	client := NewClient(Options{})
	if client.Available() {
		t.Fatalf("expected client without endpoint to be unavailable")
	}

	vector, err := client.Embed(t.Context(), "some text")
	if err != nil {
		t.Fatalf("unavailable client must not error: %v", err)
	}
	if vector != nil {
		t.Fatalf("unavailable client must return nil vector, got %v", vector)
	}
}
