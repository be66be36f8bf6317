package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/inovacc/rael/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short", input: "alpha", maxLen: 20, want: "alpha"},
		{name: "exact", input: strings.Repeat("a", 20), maxLen: 20, want: strings.Repeat("a", 20)},
		{name: "long", input: strings.Repeat("a", 25), maxLen: 20, want: strings.Repeat("a", 17) + "..."},
		{name: "multibyte", input: "ñandú-ñandú-ñandú-ñandú", maxLen: 10, want: "ñandú-ñ..."},
		{name: "tiny limit", input: "abcdef", maxLen: 2, want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateString(tt.input, tt.maxLen))
		})
	}
}

func TestRepositoryRow(t *testing.T) {
	tests := []struct {
		name   string
		record model.RepositoryRecord
		want   []string
	}{
		{
			name:   "public without description",
			record: model.RepositoryRecord{Name: "alpha", OwnerID: "u1"},
			want:   []string{"alpha", "No description", "No", "u1"},
		},
		{
			name:   "private with long description",
			record: model.RepositoryRecord{Name: "beta", Description: strings.Repeat("d", 40), IsPrivate: true, OwnerID: "u2"},
			want:   []string{"beta", strings.Repeat("d", 27) + "...", "Yes", "u2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repositoryRow(tt.record))
		})
	}
}

func TestRenderRepositoryTable(t *testing.T) {
	out := renderRepositoryTable([]model.RepositoryRecord{
		{Name: "alpha", Description: "First", OwnerID: "u1"},
		{Name: "beta", IsPrivate: true, OwnerID: "u2"},
	})

	for _, want := range []string{"Name", "Description", "Private", "Owner ID", "alpha", "First", "beta", "No description", "Yes"} {
		assert.Contains(t, out, want)
	}

	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "beta"))
}

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.want, promptConfirm(strings.NewReader(tt.input), &out, "Sure? [y/N]: "))
			assert.Equal(t, "Sure? [y/N]: ", out.String())
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, "json", true)
	require.NoError(t, err)
	logger.Debug("hello", "repo", "alpha")
	assert.Contains(t, buf.String(), `"repo":"alpha"`)

	buf.Reset()

	logger, err = newLogger(&buf, "text", false)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = newLogger(&buf, "xml", false)
	assert.Error(t, err)
}
