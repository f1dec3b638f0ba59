package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/mwhitfield/skillforge/internal/ai"
	"github.com/mwhitfield/skillforge/internal/config"
	"github.com/mwhitfield/skillforge/pkg/models"
	openai "github.com/sashabaranov/go-openai"
)

// Provider implements models.AIProvider using OpenAI chat completions.
type Provider struct {
	client *openai.Client
	model  string
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{client: openai.NewClient(cfg.APIKey), model: cfg.Model}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", ai.ErrService)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyError maps transport and API failures onto the ai error taxonomy.
// This is the single source of truth the retry policy consults.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ai.ErrTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized,
			apiErr.HTTPStatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %v", ai.ErrAuth, err)
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ai.RateLimitError{}
		case apiErr.HTTPStatusCode == http.StatusBadRequest:
			return fmt.Errorf("%w: %v", ai.ErrInvalidRequest, err)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%w: %v", ai.ErrService, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ai.ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ai.ErrService, err)
}

var _ models.AIProvider = (*Provider)(nil)
