package quiz

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/llm"
	"github.com/bousai-navi/backend/internal/metrics"
	"github.com/bousai-navi/backend/pkg/jsonx"
	"github.com/bousai-navi/backend/pkg/logger"
	"github.com/bousai-navi/backend/pkg/retry"
)

const quizPrompt = `You are an expert in Japanese disaster prevention.
Your task is to generate a quiz with 5 multiple-choice questions about disaster preparedness, earthquake safety, or first aid in Japan.

# CRITICAL INSTRUCTIONS:
1.  Your response MUST be ONLY a JSON array of objects, with no other text or markdown.
2.  Each object in the array MUST contain exactly three keys: "question", "options", and "answer". DO NOT omit any keys.
3.  The "question" value must be a string.
4.  The "options" value must be an array of exactly 4 strings.
5.  The "answer" value must be a string containing the letter of the correct option ("A", "B", "C", or "D").

# Example of the required JSON object structure:
{
  "question": "地震発生時、屋内にいる場合、まず取るべき最も安全な行動はどれですか？",
  "options": [
    "A. すぐに外に飛び出す",
    "B. 丈夫な机の下など、安全な場所で身を守る",
    "C. 窓を開けて出口を確保する",
    "D. エレベーターで避難する"
  ],
  "answer": "B"
}`

// Generator produces quizzes from the generative service with a bounded
// retry envelope. Only the transient "temporarily unavailable" upstream
// signal triggers backoff; any other failure, or retry exhaustion, falls
// back to the built-in dataset. Generate therefore never fails.
type Generator struct {
	llm          llm.Completer
	maxRetries   int
	initialDelay time.Duration
	sleep        retry.SleepFunc
}

type GeneratorOptions struct {
	MaxRetries     int
	InitialDelayMS int
	Sleep          retry.SleepFunc
}

func NewGenerator(completer llm.Completer, opts GeneratorOptions) *Generator {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.InitialDelayMS <= 0 {
		opts.InitialDelayMS = 2000
	}

	return &Generator{
		llm:          completer,
		maxRetries:   opts.MaxRetries,
		initialDelay: time.Duration(opts.InitialDelayMS) * time.Millisecond,
		sleep:        opts.Sleep,
	}
}

// Generate returns a 5-question quiz. The error return exists only for
// context cancellation; upstream failures resolve to the fallback dataset.
func (g *Generator) Generate(ctx context.Context) ([]Question, error) {
	cfg := retry.Config{
		MaxAttempts:  g.maxRetries,
		InitialDelay: g.initialDelay,
		Multiplier:   2.0,
		// No jitter, no delay cap: the backoff schedule is exactly
		// initialDelay * 2^(attempt-1).
		Retryable: llm.IsUnavailable,
		Sleep:     g.sleep,
		Logger:    logger.GetLogger(),
	}

	questions, err := retry.DoWithResult(ctx, cfg, func() ([]Question, error) {
		return g.attempt(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Quiz generation failed, serving fallback dataset", zap.Error(err))
		metrics.QuizFallbacks.Inc()
		return Fallback(), nil
	}

	return questions, nil
}

func (g *Generator) attempt(ctx context.Context) ([]Question, error) {
	resp, err := g.llm.Complete(ctx, llm.CompletionRequest{
		UserPrompt: quizPrompt,
	})
	if err != nil {
		metrics.QuizAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	var questions []Question
	if err := jsonx.UnmarshalFirstArray(resp.Content, &questions); err != nil {
		metrics.QuizAttempts.WithLabelValues("parse_error").Inc()
		return nil, fmt.Errorf("quiz response not parseable: %w", err)
	}

	metrics.QuizAttempts.WithLabelValues("ok").Inc()
	logger.Info("Quiz generated", zap.Int("questions", len(questions)))

	return questions, nil
}
