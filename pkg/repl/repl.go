// Package repl implements the interactive shell for exploring a loaded
// hierarchy and trying requests against it.
package repl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/diister-dev/quick-permission/pkg/hierarchy"
	"github.com/diister-dev/quick-permission/pkg/render"
	"github.com/diister-dev/quick-permission/pkg/validate"
)

// REPL drives the interactive loop over one hierarchy and a fixed set
// of state sources.
type REPL struct {
	h         *hierarchy.Hierarchy
	validator *validate.Validator
	sources   []validate.Source
	names     []string
	output    io.Writer
}

// New creates a REPL for the given hierarchy and state sources. names
// labels the sources for display and may be nil.
func New(h *hierarchy.Hierarchy, sources []validate.Source, names []string) *REPL {
	return &REPL{
		h:         h,
		validator: validate.New(h, validate.Config{}),
		sources:   sources,
		names:     names,
		output:    os.Stdout,
	}
}

// SetOutput redirects the REPL's output, mainly for tests.
func (r *REPL) SetOutput(w io.Writer) {
	r.output = w
}

// Run starts the interactive loop and blocks until quit or EOF.
func (r *REPL) Run(ctx context.Context) error {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("validate"),
		readline.PcItem("paths"),
		readline.PcItem("defaults"),
		readline.PcItem("sources"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "quickperm> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(r.output, "quick-permission shell — %d paths, %d state sources\n", r.h.Len(), len(r.sources))
	fmt.Fprintf(r.output, "Type 'help' for commands.\n\n")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		if done := r.Execute(ctx, strings.TrimSpace(line)); done {
			return nil
		}
	}
}

// Execute runs one command line. Returns true when the loop should end.
func (r *REPL) Execute(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)

	switch fields[0] {
	case "quit", "exit":
		return true

	case "help":
		fmt.Fprint(r.output, helpText)

	case "paths":
		fmt.Fprint(r.output, render.PathsTable(r.h))

	case "defaults":
		if len(fields) != 2 {
			fmt.Fprintln(r.output, "usage: defaults <path>")
			return false
		}
		data, _ := json.Marshal(r.h.DefaultState(fields[1]))
		fmt.Fprintln(r.output, string(data))

	case "sources":
		for i, name := range r.sourceNames() {
			fmt.Fprintf(r.output, "%d: %s (%d paths)\n", i, name, len(r.sources[i]))
		}

	case "validate":
		r.runValidate(ctx, fields[1:])

	default:
		fmt.Fprintf(r.output, "unknown command %q — type 'help'\n", fields[0])
	}
	return false
}

func (r *REPL) runValidate(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(r.output, "usage: validate <key> [request-json]")
		return
	}
	key := args[0]

	request := map[string]any{}
	if len(args) > 1 {
		raw := strings.Join(args[1:], " ")
		if err := json.Unmarshal([]byte(raw), &request); err != nil {
			fmt.Fprintf(r.output, "invalid request JSON: %v\n", err)
			return
		}
	}

	res, err := r.validator.Validate(ctx, r.sources, key, request)
	if err != nil {
		fmt.Fprintf(r.output, "error: %v\n", err)
		return
	}
	fmt.Fprint(r.output, render.Result(key, res))
}

func (r *REPL) sourceNames() []string {
	names := make([]string, len(r.sources))
	for i := range r.sources {
		if i < len(r.names) && r.names[i] != "" {
			names[i] = r.names[i]
		} else {
			names[i] = fmt.Sprintf("source-%d", i)
		}
	}
	return names
}

const helpText = `Commands:
  validate <key> [request-json]   evaluate a request against the loaded sources
  paths                           list flattened permission paths
  defaults <path>                 show the synthesized default state for a path
  sources                         list loaded state sources
  help                            show this help
  quit                            leave the shell
`
