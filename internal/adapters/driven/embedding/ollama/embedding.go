// Package ollama provides an embedding provider adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.EmbeddingProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // nomic-embed-text default
)

// Config holds configuration for the Ollama embedding provider.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int
}

// Provider generates embeddings using Ollama.
type Provider struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
}

// embedRequest is the Ollama API request format.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the Ollama API response format.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewProvider creates a new Ollama embedding provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &Provider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// GenerateEmbedding produces an embedding for a single chunk. Provider
// faults become failed results; only context cancellation is an error.
func (p *Provider) GenerateEmbedding(ctx context.Context, chunk *domain.TextChunk) (driven.EmbeddingResult, error) {
	start := time.Now()

	vector, err := p.embed(ctx, chunk.Content)
	if err != nil {
		if ctx.Err() != nil {
			return driven.EmbeddingResult{}, ctx.Err()
		}
		return driven.EmbeddingFailure(err.Error()), nil
	}

	return driven.EmbeddingSuccess(vector, p.model, time.Since(start)), nil
}

// GenerateBatchEmbeddings produces one result per chunk, in input
// order. Ollama has no native batch API, so chunks are embedded one at
// a time and per-item failures are carried as failed results.
func (p *Provider) GenerateBatchEmbeddings(ctx context.Context, chunks []*domain.TextChunk) ([]driven.EmbeddingResult, error) {
	results := make([]driven.EmbeddingResult, len(chunks))
	for i, chunk := range chunks {
		result, err := p.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

// embed calls the Ollama embeddings endpoint for a single text.
func (p *Provider) embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{
		Model:  p.model,
		Prompt: text,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/api/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// Convert float64 to float32
	vector := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}

// IsAvailable checks the /api/tags endpoint. This is a lightweight
// check that validates connectivity without running inference.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		logger.Debug("Ollama availability check failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ModelName returns the name of the embedding model being used.
func (p *Provider) ModelName() string {
	return p.model
}

// VectorDimensions returns the embedding vector size.
func (p *Provider) VectorDimensions() int {
	return p.dimensions
}
