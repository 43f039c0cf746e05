// Package render formats validation results and hierarchy listings for
// terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/diister-dev/quick-permission/pkg/hierarchy"
	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/validate"
)

var (
	grantedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("40"))
	rejectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	blockedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("201"))
	neutralStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	reasonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

// Result renders one validation result with its reasons.
func Result(key string, res *validate.Result) string {
	var b strings.Builder

	switch res.Outcome {
	case outcome.Granted:
		b.WriteString(grantedStyle.Render(fmt.Sprintf("✓ %s granted", key)))
	case outcome.Rejected:
		b.WriteString(rejectedStyle.Render(fmt.Sprintf("✗ %s rejected", key)))
	case outcome.Blocked:
		b.WriteString(blockedStyle.Render(fmt.Sprintf("⊘ %s blocked", key)))
	default:
		b.WriteString(neutralStyle.Render(fmt.Sprintf("○ %s not granted (no rule held an opinion)", key)))
	}
	b.WriteString("\n")

	for _, r := range res.Reasons {
		loc := r.PermissionKey
		if loc == "" {
			loc = key
		}
		b.WriteString(reasonStyle.Render(fmt.Sprintf("  [%s] %s at %s (source %d): %s",
			r.Type, r.Name, loc, r.StateIndex, r.Message)))
		b.WriteString("\n")
	}
	return b.String()
}

// PathsTable renders the flattened hierarchy as an aligned table of
// path, rules, and schemas. Columns are padded with runewidth so icons
// and wide characters in rule names do not break alignment.
func PathsTable(h *hierarchy.Hierarchy) string {
	type row struct {
		path, rules, schemas string
	}

	rows := make([]row, 0, h.Len())
	for _, p := range h.Paths() {
		e, _ := h.Lookup(p)
		rows = append(rows, row{
			path:    p,
			rules:   joinRuleNames(e),
			schemas: joinSchemaNames(e),
		})
	}

	pathW, ruleW := runewidth.StringWidth("PATH"), runewidth.StringWidth("RULES")
	for _, r := range rows {
		if w := runewidth.StringWidth(r.path); w > pathW {
			pathW = w
		}
		if w := runewidth.StringWidth(r.rules); w > ruleW {
			ruleW = w
		}
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(pad("PATH", pathW) + "  " + pad("RULES", ruleW) + "  SCHEMAS"))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(pad(r.path, pathW) + "  " + pad(r.rules, ruleW) + "  " + r.schemas)
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
}

func joinRuleNames(e hierarchy.Entry) string {
	if len(e.Rules) == 0 {
		return "-"
	}
	names := make([]string, len(e.Rules))
	for i, r := range e.Rules {
		names[i] = r.Name
	}
	return strings.Join(names, ", ")
}

func joinSchemaNames(e hierarchy.Entry) string {
	if len(e.Schemas) == 0 {
		return "-"
	}
	names := make([]string, len(e.Schemas))
	for i, s := range e.Schemas {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}
