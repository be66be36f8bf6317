// Package textgen generates short texts, such as repository descriptions,
// with the OpenAI chat completions API.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/inovacc/rael/internal/apperr"
)

const (
	// DefaultModel is used when no model is configured
	DefaultModel = "gpt-4o-mini"

	maxTokens      = 60
	requestTimeout = 45 * time.Second
)

// Generator turns a prompt into text. Failures are *apperr.GenerationError.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config configures the OpenAI client
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint, mostly for tests
	BaseURL string
}

// OpenAI is a Generator backed by chat completions.
type OpenAI struct {
	client openai.Client
	model  string
}

var _ Generator = (*OpenAI)(nil)

// New returns an OpenAI generator.
func New(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{client: openai.NewClient(opts...), model: model}, nil
}

// Generate implements Generator
func (g *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	requestCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(requestCtx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{OfString: openai.String(prompt)},
				},
			},
		},
		MaxTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return "", &apperr.GenerationError{Err: err}
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", &apperr.GenerationError{Err: errors.New("model returned no choices")}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &apperr.GenerationError{Err: errors.New("model returned empty text")}
	}

	return text, nil
}

// DescriptionPrompt is the prompt used to describe a repository named name
func DescriptionPrompt(name string) string {
	return fmt.Sprintf("Generate a brief and descriptive summary for a repository named %q.", name)
}
