package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

// ParseEntities parses a model response into the entity map for the requested
// set. Shape rules: the response must be a JSON object; requested keys the
// model omitted are filled with empty lists; unrequested keys are dropped.
func ParseEntities(text string, set model.EntityTypeSet) (map[string][]string, error) {
	cleaned := cleanJSON(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrap(err, "extract: response is not a JSON object")
	}
	if raw == nil {
		// "null" decodes into a nil map without error.
		return nil, eris.New("extract: response is not a JSON object")
	}

	out := make(map[string][]string, len(set))
	for _, label := range set {
		val, ok := raw[label]
		if !ok {
			// The model is non-adversarial but may omit empty categories.
			out[label] = []string{}
			continue
		}
		mentions, err := coerceMentions(val)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: key %q", label)
		}
		out[label] = mentions
	}
	return out, nil
}

// coerceMentions normalizes one entity value into a string list. Arrays keep
// element order; a bare scalar becomes a single-element list; null becomes an
// empty list. Non-string scalars are rendered, since models occasionally emit
// bare numbers for amounts.
func coerceMentions(val any) ([]string, error) {
	switch v := val.(type) {
	case nil:
		return []string{}, nil
	case string:
		return []string{v}, nil
	case []any:
		mentions := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				mentions = append(mentions, s)
			case float64, bool:
				mentions = append(mentions, fmt.Sprintf("%v", s))
			default:
				return nil, eris.Errorf("unexpected element of type %T", item)
			}
		}
		return mentions, nil
	case float64, bool:
		return []string{fmt.Sprintf("%v", v)}, nil
	default:
		return nil, eris.Errorf("unexpected value of type %T", val)
	}
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
