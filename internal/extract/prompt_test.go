package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

func TestBuildPrompt_Deterministic(t *testing.T) {
	doc := model.Document{Index: 0, Text: "Alice ordered 3 laptops on Friday."}
	set := model.EntityTypeSet{"Person", "Orders", "Date"}

	sys1, user1, err := BuildPrompt(doc, set)
	require.NoError(t, err)
	sys2, user2, err := BuildPrompt(doc, set)
	require.NoError(t, err)

	// Identical inputs must yield byte-identical prompts.
	assert.Equal(t, sys1, sys2)
	assert.Equal(t, user1, user2)
}

func TestBuildPrompt_ContainsLabelsAndText(t *testing.T) {
	doc := model.Document{Index: 2, Text: "Meeting at HQ on 2026-03-01."}
	set := model.EntityTypeSet{"Date", "Location"}

	system, user, err := BuildPrompt(doc, set)
	require.NoError(t, err)

	assert.Contains(t, system, `"Date"`)
	assert.Contains(t, system, `"Location"`)
	assert.Contains(t, user, "Date, Location")
	assert.Contains(t, user, doc.Text)
}

func TestBuildPrompt_OrderSensitive(t *testing.T) {
	doc := model.Document{Text: "x"}

	_, user1, err := BuildPrompt(doc, model.EntityTypeSet{"Person", "Date"})
	require.NoError(t, err)
	_, user2, err := BuildPrompt(doc, model.EntityTypeSet{"Date", "Person"})
	require.NoError(t, err)

	assert.NotEqual(t, user1, user2)
}

func TestBuildPrompt_EmptyDocumentAllowed(t *testing.T) {
	_, user, err := BuildPrompt(model.Document{}, model.EntityTypeSet{"Person"})
	require.NoError(t, err)
	assert.Contains(t, user, "EMAIL:")
}

func TestBuildPrompt_InvalidSet(t *testing.T) {
	tests := []struct {
		name string
		set  model.EntityTypeSet
	}{
		{"empty", nil},
		{"blank_label", model.EntityTypeSet{"Person", "  "}},
		{"duplicate", model.EntityTypeSet{"Person", "Person"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := BuildPrompt(model.Document{Text: "x"}, tt.set)
			require.Error(t, err)
			assert.True(t, model.IsInvalidInput(err))
		})
	}
}
