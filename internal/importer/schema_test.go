package importer

import (
	"encoding/json"
	"testing"
)

func TestValidateBundleAcceptsMinimalPayload(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"bundle_version": "v1",
		"items": [
			{"type": "instruction", "title": "Always answer in French", "content": "Respond in French."}
		]
	}`)

	bundle, err := ValidateBundle(payload)
	if err != nil {
		t.Fatalf("validate bundle: %v", err)
	}
	if len(bundle.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(bundle.Items))
	}
	if bundle.Items[0].Type != "instruction" {
		t.Fatalf("unexpected item type %q", bundle.Items[0].Type)
	}
}

func TestValidateBundleRejectsBadPayloads(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
	}{
		{"empty", ``},
		{"not json", `{"bundle_version": "v1",`},
		{"wrong version", `{"bundle_version": "v2", "items": [{"type": "file", "title": "x"}]}`},
		{"no items", `{"bundle_version": "v1", "items": []}`},
		{"unknown type", `{"bundle_version": "v1", "items": [{"type": "widget", "title": "x"}]}`},
		{"missing title", `{"bundle_version": "v1", "items": [{"type": "file"}]}`},
		{"blank title", `{"bundle_version": "v1", "items": [{"type": "file", "title": "   "}]}`},
		{"bad created_at", `{"bundle_version": "v1", "items": [{"type": "file", "title": "x", "created_at": "yesterday"}]}`},
		{"trailing content", `{"bundle_version": "v1", "items": [{"type": "file", "title": "x"}]} extra`},
		{"unknown field", `{"bundle_version": "v1", "extra": true, "items": [{"type": "file", "title": "x"}]}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ValidateBundle(json.RawMessage(tc.payload)); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}
