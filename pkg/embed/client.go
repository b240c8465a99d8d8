// Package embed is a client for OpenAI-compatible embedding APIs. Vectors are
// L2-normalized client-side so cosine similarity reduces to a dot product
// regardless of backend behaviour.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/minilawyer/minilawyer/pkg/fn"
)

// Options configures the client.
type Options struct {
	Timeout   time.Duration
	BatchSize int
	Retry     fn.RetryOpts
}

// DefaultOptions suit a hosted embedding API.
func DefaultOptions() Options {
	return Options{Timeout: 30 * time.Second, BatchSize: 32, Retry: fn.DefaultRetry}
}

// Client calls an OpenAI-compatible /embeddings endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	opts    Options
	http    *http.Client
}

// New creates a Client for the given base URL and embedding model.
func New(baseURL, apiKey, model string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = fn.DefaultRetry
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns one normalized vector per input text, in input order.
// Transient failures are retried with backoff before the error propagates.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for _, batch := range fn.Chunk(texts, c.opts.BatchSize) {
		result := fn.Retry(ctx, c.opts.Retry, func(ctx context.Context) fn.Result[[][]float32] {
			return fn.FromPair(c.embedBatch(ctx, batch))
		})
		vectors, err := result.Unwrap()
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embed: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embed: status %d: %s", resp.StatusCode, snippet)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d inputs", len(parsed.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embed: vector index %d out of range", d.Index)
		}
		vectors[d.Index] = Normalize(d.Embedding)
	}
	return vectors, nil
}

// Normalize converts a raw float64 vector to a unit-length float32 vector.
// A zero vector is returned unchanged.
func Normalize(vec []float64) []float32 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		if norm > 0 {
			out[i] = float32(v / norm)
		} else {
			out[i] = float32(v)
		}
	}
	return out
}
