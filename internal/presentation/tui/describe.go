package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/wca/internal/validator"
	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/fsm"
)

// DescribeMachine renders a markdown report of the machine: one section per
// reachable state in BFS order, followed by the validation issues.
func DescribeMachine(m *fsm.Machine, issues []validator.Issue) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", orDash(m.Name))
	if m.Start == nil {
		sb.WriteString("_No start state._\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Start state: **%s**\n\n", m.Start.Name)

	for s := range fsm.BFS(m.Start) {
		fmt.Fprintf(&sb, "## %s\n\n", orDash(s.Name))

		if len(s.Processors) > 0 {
			sb.WriteString("Processors:\n\n")
			for _, p := range s.Processors {
				fmt.Fprintf(&sb, "- `%s` %s%s\n", p.Name, orDash(p.ClassName()), formatArgs(p.Args()))
			}
			sb.WriteString("\n")
		}

		if len(s.Transitions) == 0 {
			sb.WriteString("_Sink state._\n\n")
			continue
		}

		sb.WriteString("| Transition | Predicates | Instruction | Next |\n")
		sb.WriteString("| --- | --- | --- | --- |\n")
		for _, t := range s.Transitions {
			preds := make([]string, len(t.Predicates))
			for i, p := range t.Predicates {
				preds[i] = orDash(p.ClassName()) + formatArgs(p.Args())
			}
			next := "_nil_"
			if t.NextState != nil {
				next = t.NextState.Name
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				t.Name, orDefault(strings.Join(preds, ", "), "always"), describeInstruction(t), next)
		}
		sb.WriteString("\n")
	}

	if len(issues) > 0 {
		sb.WriteString("## Issues\n\n")
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- %s\n", issue)
		}
	}

	return sb.String()
}

func describeInstruction(t *fsm.Transition) string {
	inst := t.Instruction
	var parts []string
	if inst.Audio != "" {
		parts = append(parts, fmt.Sprintf("say %q", inst.Audio))
	}
	if len(inst.Image) > 0 {
		parts = append(parts, fmt.Sprintf("image (%d bytes)", len(inst.Image)))
	}
	if len(inst.Video) > 0 {
		parts = append(parts, fmt.Sprintf("video (%d bytes)", len(inst.Video)))
	}
	return orDash(strings.Join(parts, ", "))
}

func formatArgs(args callable.Args) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, args[k])
	}
	return "(" + strings.Join(pairs, " ") + ")"
}

func orDash(s string) string { return orDefault(s, "-") }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
