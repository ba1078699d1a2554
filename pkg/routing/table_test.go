package routing_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
intents:
  - intent: enquiry
    description: General enquiry
    dialogue: enquiryDialog
  - intent: feedback
    dialogue: feedbackDialog
dialogues:
  - id: enquiryDialog
    description: Collects name and topic
    next: feedbackDialog
  - id: feedbackDialog
`

func TestParse(t *testing.T) {
	table, err := routing.Parse([]byte(sample))
	require.NoError(t, err)

	d, err := table.Resolve("enquiry")
	require.NoError(t, err)
	assert.Equal(t, "enquiryDialog", d.ID)
	assert.Equal(t, "Collects name and topic", d.Description)

	assert.Equal(t, "feedbackDialog", table.Next("enquiryDialog"))
	assert.Equal(t, "", table.Next("feedbackDialog"))
	assert.Equal(t, "", table.Next("unknown"))

	_, err = table.Resolve("weather")
	assert.ErrorIs(t, err, domain.ErrUnknownIntent)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no dialogues", "intents: []\n", "Dialogues"},
		{"missing id", "dialogues:\n  - description: x\n", "ID"},
		{"missing intent dialogue", "intents:\n  - intent: a\ndialogues:\n  - id: d\n", "Dialogue"},
		{"unknown dialogue", "intents:\n  - intent: a\n    dialogue: nope\ndialogues:\n  - id: d\n", "unknown dialogue 'nope'"},
		{"unknown next", "dialogues:\n  - id: d\n    next: e\n", "unknown next 'e'"},
		{"cycle", "dialogues:\n  - id: a\n    next: b\n  - id: b\n    next: a\n", "next cycle"},
		{"duplicate", "dialogues:\n  - id: a\n  - id: a\n", "duplicate dialogue"},
		{"bad yaml", "dialogues: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := routing.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "routes.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sample), 0644))
	table, err := routing.Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, table.Dialogues, 2)

	jsonPath := filepath.Join(dir, "routes.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"dialogues":[{"id":"a"}],"intents":[{"intent":"x","dialogue":"a"}]}`), 0644))
	table, err = routing.Load(jsonPath)
	require.NoError(t, err)
	d, err := table.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, "a", d.ID)

	_, err = routing.Load(filepath.Join(dir, "routes.toml"))
	assert.Error(t, err)
}

func TestCheckRegistered(t *testing.T) {
	table, err := routing.Parse([]byte(sample))
	require.NoError(t, err)

	err = table.CheckRegistered(func(id string) bool { return id == "enquiryDialog" })
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "feedbackDialog")

	assert.NoError(t, table.CheckRegistered(func(string) bool { return true }))
}

func TestDefault(t *testing.T) {
	table := routing.Default("enquiryDialog")
	d, err := table.Resolve("enquiry")
	require.NoError(t, err)
	assert.Equal(t, "enquiryDialog", d.ID)
}
