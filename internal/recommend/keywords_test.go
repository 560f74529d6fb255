package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bousai-navi/backend/internal/llm"
	"github.com/bousai-navi/backend/internal/storage/models"
)

type fakeCompleter struct {
	content string
	err     error
	prompts []llm.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.prompts = append(f.prompts, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr bool
	}{
		{
			name: "bare array",
			text: `["防災セット 4人用", "非常食 7日分"]`,
			want: []string{"防災セット 4人用", "非常食 7日分"},
		},
		{
			name: "array wrapped in prose",
			text: `Here you go: ["防災セット", "非常食"] thanks`,
			want: []string{"防災セット", "非常食"},
		},
		{
			name:    "no array in text",
			text:    "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "empty array",
			text:    `[]`,
			wantErr: true,
		},
		{
			name:    "array of non-strings",
			text:    `[1, 2, 3]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKeywords(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAIOutput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractorBuildsPromptFromProfile(t *testing.T) {
	fake := &fakeCompleter{content: `["防災セット", "ペットフード"]`}
	extractor := NewExtractor(fake)

	keywords, err := extractor.Extract(context.Background(), models.HouseholdProfile{
		Adults: 2, Children: 1, Infants: 0, Elderly: 1, HasPet: true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"防災セット", "ペットフード"}, keywords)

	require.Len(t, fake.prompts, 1)
	prompt := fake.prompts[0].UserPrompt
	assert.Contains(t, prompt, "Adults: 2")
	assert.Contains(t, prompt, "Children: 1")
	assert.Contains(t, prompt, "Infants: 0")
	assert.Contains(t, prompt, "Elderly: 1")
	assert.Contains(t, prompt, "Has Pets: Yes")
	assert.NotEmpty(t, fake.prompts[0].SystemPrompt)
}

func TestExtractorNoPets(t *testing.T) {
	fake := &fakeCompleter{content: `["水"]`}
	extractor := NewExtractor(fake)

	_, err := extractor.Extract(context.Background(), models.HouseholdProfile{Adults: 1})

	require.NoError(t, err)
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0].UserPrompt, "Has Pets: No")
}

func TestExtractorPropagatesCompletionError(t *testing.T) {
	upstream := errors.New("upstream down")
	extractor := NewExtractor(&fakeCompleter{err: upstream})

	_, err := extractor.Extract(context.Background(), models.HouseholdProfile{Adults: 1})

	assert.ErrorIs(t, err, upstream)
}

func TestExtractorUnparseableOutput(t *testing.T) {
	extractor := NewExtractor(&fakeCompleter{content: "sorry, no list today"})

	_, err := extractor.Extract(context.Background(), models.HouseholdProfile{Adults: 1})

	assert.ErrorIs(t, err, ErrInvalidAIOutput)
}
