package quizgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mcq-bot/internal/config"
	"mcq-bot/internal/domain"

	"go.uber.org/zap"
)

// MaxSegmentChars caps the chunk text embedded in a prompt.
const MaxSegmentChars = 6000

const systemPrompt = `You are a university professor who writes multiple-choice questions for final examinations.
Always respond with valid JSON only, no additional text.
Keep questions and explanations simple and avoid HTML or Markdown formatting.`

// Generator turns one knowledge segment into raw model output.
// It makes at most two transport calls per segment.
type Generator struct {
	transport    domain.LLMTransport
	callTimeout  time.Duration
	retryBackoff time.Duration
	logger       *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewGenerator(transport domain.LLMTransport, cfg config.LLMConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		transport:    transport,
		callTimeout:  cfg.CallTimeout,
		retryBackoff: cfg.RetryBackoff,
		logger:       logger,
		sleep:        sleepCtx,
	}
}

// BuildPrompt renders the generation prompt. It is deterministic for equal inputs.
func BuildPrompt(segment string, minQ, maxQ int) domain.Prompt {
	if runes := []rune(segment); len(runes) > MaxSegmentChars {
		segment = string(runes[:MaxSegmentChars])
	}
	user := fmt.Sprintf(`Based on the following content, generate between %d and %d multiple-choice questions.
Choose the number of questions from the depth of the content and the number of distinct testable ideas.

Each question must:
- test understanding, not just memorization
- have exactly 4 options (A, B, C, D) with exactly one correct answer
- use option texts that are distinct from each other
- include an explanation that refers to the content
- cover a different aspect of the content than the other questions

Content:
%s

Return ONLY a JSON array in this exact format, with no additional text:
[
  {
    "question": "Question text",
    "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"],
    "correct_answer": "A",
    "explanation": "Why the answer is correct"
  }
]`, minQ, maxQ, segment)

	return domain.Prompt{System: systemPrompt, User: user}
}

// Generate requests questions for one segment. A retryable failure is
// retried once after the configured backoff, doubled for rate limits.
func (g *Generator) Generate(ctx context.Context, segment string, minQ, maxQ int) (string, error) {
	prompt := BuildPrompt(segment, minQ, maxQ)

	out, err := g.call(ctx, prompt)
	if err == nil {
		return out, nil
	}
	if !domain.IsRetryable(err) {
		return "", err
	}

	backoff := g.retryBackoff
	if domain.IsCode(err, domain.CodeRateLimited) {
		backoff *= 2
	}
	g.logger.Warn("LLM call failed, retrying once",
		zap.Error(err),
		zap.Duration("backoff", backoff))

	if sleepErr := g.sleep(ctx, backoff); sleepErr != nil {
		return "", err
	}

	out, err = g.call(ctx, prompt)
	if err != nil {
		g.logger.Error("LLM call failed after retry", zap.Error(err))
		return "", err
	}
	return out, nil
}

func (g *Generator) call(ctx context.Context, prompt domain.Prompt) (string, error) {
	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}
	out, err := g.transport.Call(ctx, prompt)
	if err != nil {
		return "", normalizeTransportError(err)
	}
	return out, nil
}

// normalizeTransportError maps untyped transport failures onto the typed codes.
func normalizeTransportError(err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTimeoutError(err)
	}
	return domain.NewTransportError(err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
