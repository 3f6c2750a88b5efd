package extract

import (
	"fmt"
	"strings"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

// systemPromptTemplate constrains the model to a JSON object keyed by the
// requested entity types. The %s placeholder receives the example skeleton
// built from the selected labels.
const systemPromptTemplate = `You are an expert information extraction assistant.

You will receive an email text. Identify and extract entities of the requested types.
Output a valid JSON object whose keys are exactly the requested entity types and whose
values are arrays of the exact phrases found in the text (an empty array when none):

%s

Output only the JSON object. Be accurate, concise, and preserve the wording of the
original text.`

// BuildPrompt produces the system/user message pair for one document. It is
// deterministic: identical inputs yield byte-identical prompts. The document
// text may be empty; an empty entity type set is a precondition violation.
func BuildPrompt(doc model.Document, set model.EntityTypeSet) (system, user string, err error) {
	if err := set.Validate(); err != nil {
		return "", "", err
	}

	var skeleton strings.Builder
	skeleton.WriteString("{\n")
	for i, label := range set {
		skeleton.WriteString(fmt.Sprintf("  %q: [\"<exact phrase>\", ...]", label))
		if i < len(set)-1 {
			skeleton.WriteString(",")
		}
		skeleton.WriteString("\n")
	}
	skeleton.WriteString("}")

	system = fmt.Sprintf(systemPromptTemplate, skeleton.String())
	user = fmt.Sprintf("Extract the following entity types: %s.\n\nEMAIL:\n%s",
		strings.Join(set, ", "), doc.Text)
	return system, user, nil
}
