package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

func TestSplitDocuments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "two_documents",
			input: "first email\n---\nsecond email",
			want:  []string{"first email", "second email"},
		},
		{
			name:  "indented_delimiter",
			input: "one\n  ---  \ntwo",
			want:  []string{"one", "two"},
		},
		{
			name:  "surrounding_whitespace_trimmed",
			input: "  one  \n---\n\n  two\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "empty_segments_skipped",
			input: "one\n---\n\n---\ntwo\n---\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "no_delimiter",
			input: "just one document\nwith two lines",
			want:  []string{"just one document\nwith two lines"},
		},
		{
			name:  "dashes_inside_line_not_a_delimiter",
			input: "see items --- listed below\nmore text",
			want:  []string{"see items --- listed below\nmore text"},
		},
		{
			name:  "empty_input",
			input: "",
			want:  nil,
		},
		{
			name:  "only_delimiters",
			input: "\n---\n---\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := SplitDocuments(strings.NewReader(tt.input))
			require.NoError(t, err)

			var texts []string
			for i, doc := range docs {
				assert.Equal(t, i, doc.Index)
				texts = append(texts, doc.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.txt")
	content := "From Alice: order confirmed.\n---\nFrom Bob: meeting Friday.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	docs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, model.Document{Index: 0, Text: "From Alice: order confirmed."}, docs[0])
	assert.Equal(t, model.Document{Index: 1, Text: "From Bob: meeting Friday."}, docs[1])
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest: open")
}
