package embedding

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"termai/internal/config"
	"termai/internal/llmservice"
)

// NewEmbedder creates an embedder for the configured embedding model.
func NewEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	log.Debug().Interface("config", map[string]string{
		"provider":        llmConfig.Provider,
		"base_url":        llmConfig.BaseURL,
		"embedding_model": llmConfig.Model,
	}).Msg("Creating embedder")

	llm, err := llmservice.NewModel(llmConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding llm: %w", err)
	}
	client, ok := llm.(embeddings.EmbedderClient)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support embeddings", llmConfig.Provider)
	}
	return embeddings.NewEmbedder(client)
}

// ChromemFunc adapts an embedder to the function chromem-go calls for
// documents and queries without a precomputed embedding.
func ChromemFunc(embedder embeddings.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
}
