package adventure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/yanqian/adventure-ai/pkg/errors"
	"github.com/yanqian/adventure-ai/pkg/metrics"
)

// Service exposes adventure generation capabilities.
type Service interface {
	Generate(ctx context.Context, req Request) (Adventure, error)
}

// Completer is the LLM provider capability: one instruction in, raw text out.
type Completer interface {
	Complete(ctx context.Context, instruction string) (string, error)
}

type service struct {
	cfg       Config
	prompts   PromptBuilder
	completer Completer
	logger    *slog.Logger
}

// NewService is a wire provider for the adventure domain.
func NewService(cfg Config, completer Completer, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		prompts:   NewPromptBuilder(cfg.Persona),
		completer: completer,
		logger:    logger.With("component", "adventure.service"),
	}
}

// Generate validates the prompt, asks the provider for an adventure and parses
// the answer. Every returned error is an *apperrors.AppError.
func (s *service) Generate(ctx context.Context, req Request) (adv Adventure, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("adventure generation panicked", "panic", r)
			adv, err = Adventure{}, apperrors.Processing(fmt.Errorf("unexpected failure: %v", r))
		}
		if err != nil {
			if _, ok := apperrors.As(err); !ok {
				err = apperrors.Processing(err)
			}
		}
		metrics.ObserveGenerationResult(resultCode(err))
	}()

	if utf8.RuneCountInString(strings.TrimSpace(req.Prompt)) < MinPromptLength {
		return Adventure{}, apperrors.InvalidPrompt(fmt.Sprintf("prompt must contain at least %d characters", MinPromptLength))
	}
	s.logger.Info("generating adventure", "prompt", req.Prompt)

	instruction := s.prompts.Build(req.Prompt)

	raw, err := s.complete(ctx, instruction)
	if err != nil {
		s.logger.Error("llm provider unavailable", "error", err)
		return Adventure{}, apperrors.ProviderUnavailable(err)
	}
	s.logger.Debug("llm response received", "content", raw)

	adv, err = ParseAdventure(raw)
	if err != nil {
		s.logger.Error("llm response malformed", "error", err)
		return Adventure{}, apperrors.Processing(err)
	}

	s.logger.Info("adventure generated", "title", adv.Title)
	return adv, nil
}

func (s *service) complete(ctx context.Context, instruction string) (string, error) {
	policy := s.cfg.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		s.logger.Warn("llm provider call failed, retrying", "attempt", attempt, "delay", delay, "error", err)
	}

	var raw string
	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		attemptCtx := ctx
		if s.cfg.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, s.cfg.AttemptTimeout)
			defer cancel()
		}
		out, err := s.completer.Complete(attemptCtx, instruction)
		metrics.ObserveProviderAttempt(err == nil)
		if err != nil {
			return err
		}
		raw = out
		return nil
	})
	return raw, err
}

func resultCode(err error) string {
	if err == nil {
		return "OK"
	}
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Code
	}
	return apperrors.CodeInternal
}
