package auth

import (
	"strings"
	"testing"
)

func TestGenerateAndVerifyAPIKey(t *testing.T) {
	t.Parallel()

	plaintext, prefix, hash, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate api key: %v", err)
	}
	if !strings.HasPrefix(plaintext, "bw_") {
		t.Fatalf("expected bw_ scheme, got %q", plaintext)
	}
	if len(prefix) != 8 {
		t.Fatalf("expected 8-char prefix, got %q", prefix)
	}
	if !strings.HasPrefix(plaintext, prefix) {
		t.Fatalf("prefix %q is not a prefix of the key", prefix)
	}
	if !VerifyAPIKey(plaintext, hash) {
		t.Fatalf("expected generated key to verify against its hash")
	}
	if VerifyAPIKey(plaintext+"x", hash) {
		t.Fatalf("did not expect a modified key to verify")
	}
}

func TestVerifyAPIKeyDegenerateInputs(t *testing.T) {
	t.Parallel()

	if VerifyAPIKey("", "some-hash") {
		t.Fatalf("empty key must not verify")
	}
	if VerifyAPIKey("bw_abc", "") {
		t.Fatalf("empty hash must not verify")
	}
}

func TestHashAPIKeyRejectsBlank(t *testing.T) {
	t.Parallel()

	if _, err := HashAPIKey("   "); err == nil {
		t.Fatalf("expected error for blank key")
	}
}
