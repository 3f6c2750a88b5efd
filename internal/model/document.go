// Package model holds the core domain types shared across the extraction
// engine: documents, entity type sets, per-document results, and run metrics.
package model

import "strings"

// Document is one unit of extraction work. Index is the document's position
// in its batch and is preserved through dispatch.
type Document struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Mode selects how the model response is obtained.
type Mode string

const (
	// ModeStream consumes the response as an incremental token stream.
	ModeStream Mode = "stream"
	// ModeWhole blocks until the backend returns the complete response.
	ModeWhole Mode = "whole"
)

// DefaultEntityTypes is the built-in extraction catalog.
var DefaultEntityTypes = []string{
	"Person",
	"Orders",
	"Organization",
	"Date",
	"Time",
	"Location",
	"Money",
	"Product",
}

// EntityTypeSet is an ordered selection of entity type labels. Order matters:
// it fixes prompt construction and therefore result determinism.
type EntityTypeSet []string

// Validate checks the set is non-empty, has no blank labels, and has no
// duplicates. Violations are invalid-input errors.
func (s EntityTypeSet) Validate() error {
	if len(s) == 0 {
		return NewInvalidInput("entity type set is empty")
	}
	seen := make(map[string]bool, len(s))
	for _, label := range s {
		if strings.TrimSpace(label) == "" {
			return NewInvalidInput("entity type set contains a blank label")
		}
		if seen[label] {
			return NewInvalidInput("duplicate entity type " + label)
		}
		seen[label] = true
	}
	return nil
}
