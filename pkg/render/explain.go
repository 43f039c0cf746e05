package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/diister-dev/quick-permission/pkg/hierarchy"
)

// ExplainMarkdown generates a markdown report of the flattened
// hierarchy: one section per path with its rules, schemas, and
// synthesized default state.
func ExplainMarkdown(h *hierarchy.Hierarchy) string {
	var b strings.Builder
	b.WriteString("# Permission hierarchy\n\n")
	b.WriteString(fmt.Sprintf("%d checkable paths.\n\n", h.Len()))

	for _, p := range h.Paths() {
		e, _ := h.Lookup(p)
		b.WriteString(fmt.Sprintf("## `%s`\n\n", p))

		if len(e.Rules) > 0 {
			b.WriteString("Rules (all must grant):\n\n")
			for _, r := range e.Rules {
				b.WriteString(fmt.Sprintf("- `%s`\n", r.Name))
			}
			b.WriteString("\n")
		} else {
			b.WriteString("No rules — this path always abstains.\n\n")
		}

		if len(e.Schemas) > 0 {
			names := make([]string, len(e.Schemas))
			for i, s := range e.Schemas {
				names[i] = "`" + s.Name + "`"
			}
			b.WriteString("Schemas: " + strings.Join(names, ", ") + "\n\n")
		}

		defaults := h.DefaultState(p)
		if len(defaults) > 0 {
			b.WriteString(fmt.Sprintf("Default state: `%v`\n\n", defaults))
		}
	}
	return b.String()
}

// Explain renders the hierarchy report for the terminal via glamour.
func Explain(h *hierarchy.Hierarchy) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("init renderer: %w", err)
	}
	out, err := r.Render(ExplainMarkdown(h))
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out, nil
}
