package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/wca/pkg/fsm"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// GenerateMermaid produces a Mermaid flowchart of the graph reachable from
// start, in BFS order. It applies semantic styling:
// - Start: ((Circle))
// - Sink (no transitions): [(Database)]
// - Default: [Rectangle]
// Edges are labelled with their predicate classes and the instruction audio.
// Transitions without a next state point at a shared "nil" node.
func GenerateMermaid(start *fsm.State, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	dangling := false
	for s := range fsm.BFS(start) {
		safeID := sanitizeMermaidID(s.Name)

		opener, closer := "[", "]"
		switch {
		case s == start:
			opener, closer = "((", "))"
		case len(s.Transitions) == 0:
			opener, closer = "[(", ")]"
		}

		label := escapeLabel(s.Name)
		if n := len(s.Processors); n > 0 {
			names := make([]string, n)
			for i, p := range s.Processors {
				names[i] = p.ClassName()
			}
			label = fmt.Sprintf("%s <br/> %s", label, escapeLabel(strings.Join(names, ", ")))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, t := range s.Transitions {
			target := "nil"
			if t.NextState != nil {
				target = sanitizeMermaidID(t.NextState.Name)
			} else {
				dangling = true
			}

			arrow := "-->"
			if cond := edgeLabel(t); cond != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", cond)
			}
			if t.NextState == nil {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, target)
		}
	}

	if dangling {
		sb.WriteString("    nil{{\"nil\"}}\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, name := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(name)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentState != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentState))
		}
	}

	return sb.String()
}

func edgeLabel(t *fsm.Transition) string {
	var parts []string
	if len(t.Predicates) > 0 {
		classes := make([]string, len(t.Predicates))
		for i, p := range t.Predicates {
			classes[i] = p.ClassName()
			if args := p.Args(); len(args) == 1 {
				for _, v := range args {
					classes[i] = fmt.Sprintf("%s(%v)", classes[i], v)
				}
			}
		}
		parts = append(parts, strings.Join(classes, " & "))
	}
	if audio := t.Instruction.Audio; audio != "" {
		parts = append(parts, "🔊 "+audio)
	}
	return escapeLabel(strings.Join(parts, " <br/> "))
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	if id == "nil" {
		return "state_nil"
	}
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
