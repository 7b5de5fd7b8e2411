// Package llmservice is the client for the local text completion service.
package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"termai/internal/config"
)

// ErrGeneration marks a failed call to the completion service.
var ErrGeneration = errors.New("generation failed")

// Generator turns a prompt into generated text of at most maxLength tokens.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxLength int) (string, error)
}

// Client is a Generator backed by a langchaingo model. It is built once and
// shared by every pipeline of the process.
type Client struct {
	llm llms.Model
	cfg config.LLMConfig
}

// NewModel connects to the provider named in the config.
func NewModel(llmConfig *config.LLMConfig) (llms.Model, error) {
	switch llmConfig.Provider {
	case config.ProviderOllama, "":
		return ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
	case config.ProviderOpenAI:
		return openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
			openai.WithEmbeddingModel(llmConfig.Model),
		)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", llmConfig.Provider)
	}
}

// NewClient creates the model handle up front so that connection problems
// surface before the first prompt is sent.
func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	llm, err := NewModel(llmConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm: %w", err)
	}
	return NewClientWithModel(llm, *llmConfig), nil
}

func NewClientWithModel(llm llms.Model, llmConfig config.LLMConfig) *Client {
	return &Client{llm: llm, cfg: llmConfig}
}

// CallOptions returns the sampling options used for every request.
func (c *Client) CallOptions(maxLength int) []llms.CallOption {
	opts := []llms.CallOption{
		llms.WithMaxTokens(maxLength),
		llms.WithN(1),
		llms.WithTemperature(c.cfg.Temperature),
	}
	if c.cfg.TopP > 0 {
		opts = append(opts, llms.WithTopP(c.cfg.TopP))
	}
	if c.cfg.TopK > 0 {
		opts = append(opts, llms.WithTopK(c.cfg.TopK))
	}
	return opts
}

func (c *Client) Generate(ctx context.Context, prompt string, maxLength int) (string, error) {
	if maxLength <= 0 {
		return "", fmt.Errorf("%w: max length must be positive, got %d", ErrGeneration, maxLength)
	}

	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, c.CallOptions(maxLength)...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	log.Debug().
		Str("model", c.cfg.Model).
		Int("max_length", maxLength).
		Int("prompt_chars", len(prompt)).
		Int("output_chars", len(out)).
		Dur("took", time.Since(start)).
		Msg("Generated text")
	return out, nil
}
