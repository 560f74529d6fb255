package quiz

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bousai-navi/backend/internal/llm"
)

const validQuizJSON = `[
	{"question": "地震の際、最初にすべきことは？", "options": ["A. 外に出る", "B. 身を守る", "C. 窓を開ける", "D. 電話する"], "answer": "B"},
	{"question": "非常食の備蓄目安は？", "options": ["A. 1日分", "B. 3日分", "C. 7日分", "D. 30日分"], "answer": "B"},
	{"question": "避難時に持ち出すべきものは？", "options": ["A. 現金だけ", "B. 非常持ち出し袋", "C. 家具", "D. 何も持たない"], "answer": "B"},
	{"question": "台風接近時にすべきことは？", "options": ["A. 海を見に行く", "B. 屋外の物を固定する", "C. 窓を全開にする", "D. 車で出かける"], "answer": "B"},
	{"question": "災害用伝言ダイヤルの番号は？", "options": ["A. 110", "B. 119", "C. 171", "D. 104"], "answer": "C"}
]`

type scriptedCompleter struct {
	responses []func() (*llm.CompletionResponse, error)
	calls     int
}

func (s *scriptedCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx]()
}

func unavailable() (*llm.CompletionResponse, error) {
	return nil, fmt.Errorf("%w: upstream 503", llm.ErrUnavailable)
}

func success(content string) func() (*llm.CompletionResponse, error) {
	return func() (*llm.CompletionResponse, error) {
		return &llm.CompletionResponse{Content: content}, nil
	}
}

func recordingSleep(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestGenerateSuccessFirstAttempt(t *testing.T) {
	completer := &scriptedCompleter{responses: []func() (*llm.CompletionResponse, error){
		success(validQuizJSON),
	}}
	var delays []time.Duration

	gen := NewGenerator(completer, GeneratorOptions{Sleep: recordingSleep(&delays)})

	questions, err := gen.Generate(context.Background())

	require.NoError(t, err)
	require.Len(t, questions, 5)
	assert.Equal(t, "B", questions[0].Answer)
	assert.Equal(t, 1, completer.calls)
	assert.Empty(t, delays)
}

func TestGenerateRecoversAfterTransientOutage(t *testing.T) {
	completer := &scriptedCompleter{responses: []func() (*llm.CompletionResponse, error){
		unavailable,
		unavailable,
		success(validQuizJSON),
	}}
	var delays []time.Duration

	gen := NewGenerator(completer, GeneratorOptions{
		MaxRetries:     3,
		InitialDelayMS: 2000,
		Sleep:          recordingSleep(&delays),
	})

	questions, err := gen.Generate(context.Background())

	require.NoError(t, err)
	require.Len(t, questions, 5)
	assert.Equal(t, 3, completer.calls)
	// Backoff doubles from the initial delay with no jitter.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
}

func TestGenerateExhaustedRetriesServesFallback(t *testing.T) {
	completer := &scriptedCompleter{responses: []func() (*llm.CompletionResponse, error){
		unavailable,
	}}
	var delays []time.Duration

	gen := NewGenerator(completer, GeneratorOptions{
		MaxRetries:     3,
		InitialDelayMS: 2000,
		Sleep:          recordingSleep(&delays),
	})

	questions, err := gen.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Fallback(), questions)
	assert.Equal(t, 3, completer.calls)
	assert.Len(t, delays, 2)
}

func TestGenerateNonTransientErrorFallsBackImmediately(t *testing.T) {
	completer := &scriptedCompleter{responses: []func() (*llm.CompletionResponse, error){
		func() (*llm.CompletionResponse, error) {
			return nil, errors.New("invalid api key")
		},
	}}
	var delays []time.Duration

	gen := NewGenerator(completer, GeneratorOptions{Sleep: recordingSleep(&delays)})

	questions, err := gen.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Fallback(), questions)
	// Non-transient failures never retry.
	assert.Equal(t, 1, completer.calls)
	assert.Empty(t, delays)
}

func TestGenerateUnparseableResponseFallsBack(t *testing.T) {
	completer := &scriptedCompleter{responses: []func() (*llm.CompletionResponse, error){
		success("I'm sorry, I cannot produce a quiz right now."),
	}}
	var delays []time.Duration

	gen := NewGenerator(completer, GeneratorOptions{Sleep: recordingSleep(&delays)})

	questions, err := gen.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Fallback(), questions)
	assert.Equal(t, 1, completer.calls)
}

func TestGenerateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewGenerator(&scriptedCompleter{responses: []func() (*llm.CompletionResponse, error){
		unavailable,
	}}, GeneratorOptions{})

	_, err := gen.Generate(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallbackReturnsCopy(t *testing.T) {
	first := Fallback()
	first[0].Answer = "Z"

	second := Fallback()
	assert.NotEqual(t, "Z", second[0].Answer)
}
