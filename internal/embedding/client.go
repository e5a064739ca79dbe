package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultModel          = "text-embedding-3-small"
	DefaultDimensions     = 1536
	DefaultRequestTimeout = 45 * time.Second
	DefaultMaxInputLength = 8000
)

// Client calls an OpenAI-compatible /v1/embeddings endpoint. A zero-configured
// client reports unavailable instead of erroring so callers can degrade to
// lexical-only behavior.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	dimensions int
	httpClient *http.Client
}

type Options struct {
	Endpoint       string
	APIKey         string
	Model          string
	Dimensions     int
	RequestTimeout time.Duration
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func NewClient(opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	dimensions := opts.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Client{
		endpoint:   strings.TrimSpace(opts.Endpoint),
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Available reports whether an embedding provider is configured at all.
func (c *Client) Available() bool {
	return c != nil && c.endpoint != ""
}

// Dimensions returns the configured vector width.
func (c *Client) Dimensions() int {
	if c == nil {
		return DefaultDimensions
	}
	return c.dimensions
}

// Embed returns the embedding vector for text, or (nil, nil) when no provider
// is configured. Callers truncate input to the provider's accepted length.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if !c.Available() {
		return nil, nil
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{
		Model: c.model,
		Input: []string{trimmed},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding service status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding response missing vectors")
	}

	vector := parsed.Data[0].Embedding
	if len(vector) != c.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", c.dimensions, len(vector))
	}
	return vector, nil
}
