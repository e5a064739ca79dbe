package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestContext(t *testing.T, authorization string) echo.Context {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest("GET", "/api/v1/items", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", ""},
		{"valid", "Bearer bw_abc123", "bw_abc123"},
		{"case insensitive scheme", "bearer bw_abc123", "bw_abc123"},
		{"padded token", "Bearer   bw_abc123  ", "bw_abc123"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"scheme only", "Bearer", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newTestContext(t, tc.header)
			if got := bearerToken(c); got != tc.want {
				t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestClassifiableTextCapsLength(t *testing.T) {
	t.Parallel()

	title := "Weekly sync"
	long := make([]byte, classifyContentChars*2)
	for i := range long {
		long[i] = 'a'
	}

	got := classifiableText(title, string(long))
	if len([]rune(got)) != classifyContentChars {
		t.Fatalf("expected %d runes, got %d", classifyContentChars, len([]rune(got)))
	}

	short := classifiableText(title, "notes")
	if short != "Weekly sync\nnotes" {
		t.Fatalf("unexpected joined text: %q", short)
	}
}
