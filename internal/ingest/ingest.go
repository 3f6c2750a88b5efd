// Package ingest loads raw documents for extraction.
package ingest

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

// delimiter matches a literal --- line separating documents in a batch file.
var delimiter = regexp.MustCompile(`\n\s*---\s*\n`)

// SplitDocuments reads a batch of raw documents separated by --- delimiter
// lines, trims surrounding whitespace, skips empty segments, and assigns
// 0-based indices in file order.
func SplitDocuments(r io.Reader) ([]model.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read input")
	}

	var docs []model.Document
	for _, segment := range delimiter.Split(string(data), -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		docs = append(docs, model.Document{Index: len(docs), Text: segment})
	}
	return docs, nil
}

// LoadFile opens path and splits it into documents.
func LoadFile(path string) ([]model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()
	return SplitDocuments(f)
}
