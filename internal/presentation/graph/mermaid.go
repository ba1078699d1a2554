package graph

import (
	"fmt"
	"strings"

	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/routing"
)

// Overlay marks a conversation's position on the routing graph.
type Overlay struct {
	// Stack lists the dialogs on the conversation stack, root first.
	Stack []string
}

// OverlayFor builds an overlay from a persisted state.
func OverlayFor(state *domain.State) *Overlay {
	o := &Overlay{}
	for _, f := range state.Stack {
		o.Stack = append(o.Stack, f.DialogID)
	}
	return o
}

// GenerateMermaid renders the routing table as a Mermaid flowchart:
// intents as ((circles)), dialogues as [rectangles], next links as dotted arrows.
// Dialogs on the overlay stack are styled, the innermost one as current.
func GenerateMermaid(table *routing.Table, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if table == nil {
		return sb.String()
	}

	for _, in := range table.Intents {
		id := "intent_" + sanitizeMermaidID(in.Intent)
		fmt.Fprintf(&sb, "    %s((\"%s\"))\n", id, escape(in.Intent))
		fmt.Fprintf(&sb, "    %s --> %s\n", id, sanitizeMermaidID(in.Dialogue))
	}

	for _, d := range table.Dialogues {
		safeID := sanitizeMermaidID(d.ID)
		label := escape(d.ID)
		if d.Description != "" {
			label = fmt.Sprintf("%s <br/> %s", label, escape(d.Description))
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", safeID, label)
		if d.Next != "" {
			fmt.Fprintf(&sb, "    %s -. next .-> %s\n", safeID, sanitizeMermaidID(d.Next))
		}
	}

	if overlay != nil && len(overlay.Stack) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef active fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		last := len(overlay.Stack) - 1
		for i, id := range overlay.Stack {
			safeID := sanitizeMermaidID(id)
			if i == last {
				fmt.Fprintf(&sb, "    class %s current;\n", safeID)
				continue
			}
			if !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s active;\n", safeID)
			}
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
