// Package openai provides an embedding provider adapter using the
// OpenAI embeddings API.
package openai

import (
	"context"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.EmbeddingProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-3-small"
	DefaultDimensions = 1536
)

// Config holds configuration for the OpenAI embedding provider.
type Config struct {
	// APIKey is the OpenAI API key. Required.
	APIKey string

	// BaseURL overrides the API endpoint for compatible servers.
	BaseURL string

	// Model is the embedding model (default: text-embedding-3-small).
	Model string

	// Dimensions is the embedding vector size (default: 1536).
	Dimensions int
}

// Provider generates embeddings using the OpenAI API.
type Provider struct {
	client     *goopenai.Client
	model      string
	dimensions int
}

// NewProvider creates a new OpenAI embedding provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client:     goopenai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// GenerateEmbedding produces an embedding for a single chunk. API
// faults become failed results; only context cancellation is an error.
func (p *Provider) GenerateEmbedding(ctx context.Context, chunk *domain.TextChunk) (driven.EmbeddingResult, error) {
	results, err := p.GenerateBatchEmbeddings(ctx, []*domain.TextChunk{chunk})
	if err != nil {
		return driven.EmbeddingResult{}, err
	}
	return results[0], nil
}

// GenerateBatchEmbeddings embeds all chunks in a single API request.
// A request failure marks every result failed rather than erroring,
// so callers keep their per-item accounting.
func (p *Provider) GenerateBatchEmbeddings(ctx context.Context, chunks []*domain.TextChunk) ([]driven.EmbeddingResult, error) {
	start := time.Now()

	input := make([]string, len(chunks))
	for i, chunk := range chunks {
		input[i] = chunk.Content
	}

	resp, err := p.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: input,
		Model: goopenai.EmbeddingModel(p.model),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		results := make([]driven.EmbeddingResult, len(chunks))
		for i := range results {
			results[i] = driven.EmbeddingFailure(err.Error())
		}
		return results, nil
	}

	duration := time.Since(start)
	results := make([]driven.EmbeddingResult, len(chunks))
	for i := range chunks {
		if i < len(resp.Data) {
			results[i] = driven.EmbeddingSuccess(resp.Data[i].Embedding, p.model, duration)
		} else {
			results[i] = driven.EmbeddingFailure("no embedding returned for input")
		}
	}
	return results, nil
}

// IsAvailable checks the API with a minimal embedding request.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: []string{"ping"},
		Model: goopenai.EmbeddingModel(p.model),
	})
	if err != nil {
		logger.Debug("OpenAI availability check failed: %v", err)
		return false
	}
	return true
}

// ModelName returns the embedding model in use.
func (p *Provider) ModelName() string {
	return p.model
}

// VectorDimensions returns the embedding vector size.
func (p *Provider) VectorDimensions() int {
	return p.dimensions
}
