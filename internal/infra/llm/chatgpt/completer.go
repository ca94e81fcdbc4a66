package chatgpt

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/yanqian/adventure-ai/internal/domain/adventure"
	"github.com/yanqian/adventure-ai/pkg/metrics"
)

// Completer adapts the ChatGPT client to the adventure domain.
type Completer struct {
	client      chatCompletionClient
	model       string
	temperature float32
	tokens      *TokenEstimator
	logger      *slog.Logger
}

type chatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error)
}

// NewCompleter constructs the adapter.
func NewCompleter(client *Client, model string, temperature float32, logger *slog.Logger) *Completer {
	return newCompleter(client, model, temperature, NewTokenEstimator(model), logger)
}

func newCompleter(client chatCompletionClient, model string, temperature float32, tokens *TokenEstimator, logger *slog.Logger) *Completer {
	return &Completer{
		client:      client,
		model:       model,
		temperature: temperature,
		tokens:      tokens,
		logger:      logger.With("component", "llm.chatgpt"),
	}
}

// Complete sends the instruction as a single user message and returns the first choice.
func (c *Completer) Complete(ctx context.Context, instruction string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    []Message{{Role: "user", Content: instruction}},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chatgpt returned no choices")
	}

	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.IsZero() {
		usage.PromptTokens = c.tokens.Count(instruction)
		usage.CompletionTokens = c.tokens.Count(resp.Choices[0].Message.Content)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	usage.Observe(c.model)
	c.logger.Info("chat completion finished", "model", c.model, "finish_reason", resp.Choices[0].FinishReason,
		"prompt_tokens", usage.PromptTokens, "completion_tokens", usage.CompletionTokens)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ adventure.Completer = (*Completer)(nil)
