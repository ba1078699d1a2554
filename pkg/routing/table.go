package routing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hackeddesign/claire/pkg/domain"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// IntentConfiguration binds an intent name to the dialogue that serves it.
type IntentConfiguration struct {
	Intent      string `yaml:"intent" json:"intent" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Dialogue    string `yaml:"dialogue" json:"dialogue" validate:"required"`
}

// DialogueConfiguration describes a dialogue and what runs after it ends.
type DialogueConfiguration struct {
	ID          string `yaml:"id" json:"id" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Next        string `yaml:"next,omitempty" json:"next,omitempty"`
}

// Table is a validated routing configuration.
type Table struct {
	Intents   []IntentConfiguration   `yaml:"intents" json:"intents" validate:"dive"`
	Dialogues []DialogueConfiguration `yaml:"dialogues" json:"dialogues" validate:"required,min=1,dive"`

	intents   map[string]IntentConfiguration
	dialogues map[string]DialogueConfiguration
}

// New builds and validates a table.
func New(intents []IntentConfiguration, dialogues []DialogueConfiguration) (*Table, error) {
	t := &Table{Intents: intents, Dialogues: dialogues}
	if err := t.index(); err != nil {
		return nil, err
	}
	return t, nil
}

// Default routes the "enquiry" intent to the enquiry dialogue.
func Default(dialogueID string) *Table {
	t, err := New(
		[]IntentConfiguration{{Intent: "enquiry", Description: "General enquiry", Dialogue: dialogueID}},
		[]DialogueConfiguration{{ID: dialogueID, Description: "Collects name and topic"}},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse decodes a YAML (or JSON, which is valid YAML) document.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse routing table: %w", err)
	}
	if err := t.index(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads a routing table file. The extension selects the decoder.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routing table: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var t Table
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse routing table: %w", err)
		}
		if err := t.index(); err != nil {
			return nil, err
		}
		return &t, nil
	case ".yaml", ".yml":
		return Parse(data)
	default:
		return nil, fmt.Errorf("unsupported routing table format: %s", filepath.Ext(path))
	}
}

// Resolve returns the dialogue serving intent.
func (t *Table) Resolve(intent string) (DialogueConfiguration, error) {
	ic, ok := t.intents[intent]
	if !ok {
		return DialogueConfiguration{}, fmt.Errorf("%w: %s", domain.ErrUnknownIntent, intent)
	}
	return t.dialogues[ic.Dialogue], nil
}

// Next returns the dialogue to begin after dialogueID ends, or "".
func (t *Table) Next(dialogueID string) string {
	return t.dialogues[dialogueID].Next
}

// Dialogue looks up a dialogue configuration.
func (t *Table) Dialogue(id string) (DialogueConfiguration, bool) {
	d, ok := t.dialogues[id]
	return d, ok
}

// CheckRegistered verifies that every dialogue in the table is runnable.
func (t *Table) CheckRegistered(has func(id string) bool) error {
	var missing []string
	for _, d := range t.Dialogues {
		if !has(d.ID) {
			missing = append(missing, d.ID)
		}
	}
	if len(missing) > 0 {
		return &domain.ConfigurationError{
			Component: "routing",
			Reason:    fmt.Sprintf("dialogues not registered: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

func (t *Table) index() error {
	if err := validate.Struct(t); err != nil {
		return &domain.ConfigurationError{Component: "routing", Reason: err.Error()}
	}

	t.dialogues = make(map[string]DialogueConfiguration, len(t.Dialogues))
	for _, d := range t.Dialogues {
		if _, dup := t.dialogues[d.ID]; dup {
			return &domain.ConfigurationError{Component: "routing", Reason: fmt.Sprintf("duplicate dialogue '%s'", d.ID)}
		}
		t.dialogues[d.ID] = d
	}

	t.intents = make(map[string]IntentConfiguration, len(t.Intents))
	for _, ic := range t.Intents {
		if _, dup := t.intents[ic.Intent]; dup {
			return &domain.ConfigurationError{Component: "routing", Reason: fmt.Sprintf("duplicate intent '%s'", ic.Intent)}
		}
		t.intents[ic.Intent] = ic
	}

	return t.checkLinks()
}

// checkLinks reports intents and next links that point to undeclared dialogues,
// and next chains that loop back on themselves.
func (t *Table) checkLinks() error {
	var problems []string

	for _, ic := range t.Intents {
		if _, ok := t.dialogues[ic.Dialogue]; !ok {
			problems = append(problems, fmt.Sprintf("intent '%s' references unknown dialogue '%s'", ic.Intent, ic.Dialogue))
		}
	}

	for _, d := range t.Dialogues {
		if d.Next == "" {
			continue
		}
		if _, ok := t.dialogues[d.Next]; !ok {
			problems = append(problems, fmt.Sprintf("dialogue '%s' has unknown next '%s'", d.ID, d.Next))
			continue
		}

		visited := map[string]bool{d.ID: true}
		for cur := d.Next; cur != ""; cur = t.dialogues[cur].Next {
			if visited[cur] {
				problems = append(problems, fmt.Sprintf("dialogue '%s' starts a next cycle", d.ID))
				break
			}
			visited[cur] = true
		}
	}

	if len(problems) > 0 {
		return &domain.ConfigurationError{
			Component: "routing",
			Reason:    fmt.Sprintf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- ")),
		}
	}
	return nil
}
