// Package tui implements the interactive terminal browser for a
// permission hierarchy: navigate paths, edit a request payload, and see
// the evaluation result live.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diister-dev/quick-permission/pkg/hierarchy"
	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/validate"
)

// pathState tracks the last evaluation of one checkable path.
type pathState struct {
	Path    string
	Rules   []string
	Outcome outcome.Outcome
	Reasons []*validate.Reason
	Checked bool
}

// Model is the Bubble Tea model for quickperm tui.
type Model struct {
	h         *hierarchy.Hierarchy
	validator *validate.Validator
	sources   []validate.Source

	paths    []pathState
	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
	err    error
}

// NewModel creates a TUI model over a built hierarchy and its state sources.
func NewModel(h *hierarchy.Hierarchy, sources []validate.Source) Model {
	paths := make([]pathState, 0, h.Len())
	for _, p := range h.Paths() {
		e, _ := h.Lookup(p)
		rules := make([]string, len(e.Rules))
		for i, r := range e.Rules {
			rules[i] = r.Name
		}
		paths = append(paths, pathState{Path: p, Rules: rules, Outcome: outcome.Neutral})
	}

	input := textinput.New()
	input.Placeholder = `{"from": "...", "target": "..."}`
	input.SetValue("{}")
	input.CharLimit = 512
	input.Width = 60

	return Model{
		h:         h,
		validator: validate.New(h, validate.Config{}),
		sources:   sources,
		paths:     paths,
		input:     input,
	}
}

// resultMsg delivers one evaluation result back to the model.
type resultMsg struct {
	Index   int
	Outcome outcome.Outcome
	Reasons []*validate.Reason
	Err     error
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			switch msg.String() {
			case "enter", "esc":
				m.editing = false
				m.input.Blur()
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.paths)-1 {
				m.selected++
			}
		case "e", "i":
			m.editing = true
			m.input.Focus()
			return m, textinput.Blink
		case "enter":
			return m, m.checkSelected()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case resultMsg:
		m.err = msg.Err
		if msg.Err == nil && msg.Index < len(m.paths) {
			m.paths[msg.Index].Outcome = msg.Outcome
			m.paths[msg.Index].Reasons = msg.Reasons
			m.paths[msg.Index].Checked = true
		}
	}

	return m, nil
}

// checkSelected evaluates the selected path with the current request input.
func (m Model) checkSelected() tea.Cmd {
	if len(m.paths) == 0 {
		return nil
	}
	index := m.selected
	key := m.paths[index].Path
	raw := m.input.Value()

	return func() tea.Msg {
		request := map[string]any{}
		if strings.TrimSpace(raw) != "" {
			if err := json.Unmarshal([]byte(raw), &request); err != nil {
				return resultMsg{Index: index, Err: fmt.Errorf("request JSON: %w", err)}
			}
		}

		res, err := m.validator.Validate(context.Background(), m.sources, key, request)
		if err != nil {
			return resultMsg{Index: index, Err: err}
		}
		return resultMsg{Index: index, Outcome: res.Outcome, Reasons: res.Reasons}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	b.WriteString(headerStyle.Render(fmt.Sprintf("  quickperm: %d paths, %d sources", len(m.paths), len(m.sources))))
	b.WriteString("\n\n")

	if len(m.paths) == 0 {
		empty := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		b.WriteString(empty.Render("  no checkable paths — the hierarchy only declares groups"))
		b.WriteString("\n")
	}

	for i, p := range m.paths {
		line := fmt.Sprintf("  %s %s", outcomeIcon(p), p.Path)
		if len(p.Rules) > 0 {
			line += fmt.Sprintf("  [%s]", strings.Join(p.Rules, ", "))
		}

		if i == m.selected {
			selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
			b.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n  Request: ")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if m.err != nil {
		failStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
		b.WriteString("\n")
		b.WriteString(failStyle.Render(fmt.Sprintf("  ✗ %s", m.err)))
		b.WriteString("\n")
	} else if len(m.paths) > 0 {
		if sel := m.paths[m.selected]; sel.Checked {
			b.WriteString("\n")
			b.WriteString(renderOutcome(sel))
			for _, r := range sel.Reasons {
				b.WriteString(statusStyle.Render(fmt.Sprintf("    %s at %s: %s", r.Name, r.PermissionKey, r.Message)))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	if m.editing {
		b.WriteString(statusStyle.Render("  enter/esc: done editing"))
	} else {
		b.WriteString(statusStyle.Render("  enter: check  e: edit request  ↑/↓: navigate  q: quit"))
	}

	return b.String()
}

func renderOutcome(p pathState) string {
	switch p.Outcome {
	case outcome.Granted:
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("40"))
		return style.Render(fmt.Sprintf("  ✓ %s granted", p.Path)) + "\n"
	case outcome.Rejected:
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
		return style.Render(fmt.Sprintf("  ✗ %s rejected", p.Path)) + "\n"
	case outcome.Blocked:
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("201"))
		return style.Render(fmt.Sprintf("  ⊘ %s blocked", p.Path)) + "\n"
	default:
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		return style.Render(fmt.Sprintf("  ○ %s not granted", p.Path)) + "\n"
	}
}

func outcomeIcon(p pathState) string {
	if !p.Checked {
		return "·"
	}
	switch p.Outcome {
	case outcome.Granted:
		return "✓"
	case outcome.Rejected:
		return "✗"
	case outcome.Blocked:
		return "⊘"
	default:
		return "○"
	}
}
