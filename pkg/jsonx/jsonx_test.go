package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstArray(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "bare array",
			text: `["a", "b"]`,
			want: `["a", "b"]`,
		},
		{
			name: "array wrapped in prose",
			text: `Here you go: ["防災セット", "非常食"] hope that helps`,
			want: `["防災セット", "非常食"]`,
		},
		{
			name: "array inside markdown fence",
			text: "```json\n[1, 2, 3]\n```",
			want: `[1, 2, 3]`,
		},
		{
			name: "nested arrays return the outer span",
			text: `[[1, 2], [3]] trailing`,
			want: `[[1, 2], [3]]`,
		},
		{
			name: "bracket inside string literal does not close the array",
			text: `["closing ] bracket", "ok"]`,
			want: `["closing ] bracket", "ok"]`,
		},
		{
			name: "escaped quote inside string literal",
			text: `["a \" quote ]", "b"]`,
			want: `["a \" quote ]", "b"]`,
		},
		{
			name:    "no array",
			text:    `{"not": "an array"}`,
			wantErr: true,
		},
		{
			name:    "unclosed array",
			text:    `["a", "b"`,
			wantErr: true,
		},
		{
			name:    "empty text",
			text:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FirstArray(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoArray)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalFirstArray(t *testing.T) {
	var keywords []string
	err := UnmarshalFirstArray(`The keywords are ["水", "懐中電灯"].`, &keywords)
	require.NoError(t, err)
	assert.Equal(t, []string{"水", "懐中電灯"}, keywords)
}

func TestUnmarshalFirstArrayInvalidJSON(t *testing.T) {
	var keywords []string
	err := UnmarshalFirstArray(`[not valid json]`, &keywords)
	assert.Error(t, err)
}
