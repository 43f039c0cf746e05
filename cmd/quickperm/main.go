package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	qtui "github.com/diister-dev/quick-permission/pkg/ecosystem/tui"
	"github.com/diister-dev/quick-permission/pkg/hierarchy"
	"github.com/diister-dev/quick-permission/pkg/loader"
	"github.com/diister-dev/quick-permission/pkg/render"
	"github.com/diister-dev/quick-permission/pkg/repl"
	"github.com/diister-dev/quick-permission/pkg/trace"
	"github.com/diister-dev/quick-permission/pkg/validate"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quickperm",
	Short: "Hierarchical permission evaluation",
	Long:  "quickperm — evaluate permission requests against a hierarchy of rules and state sources.",
	// A denied request exits non-zero through RunE; that is a result,
	// not a usage mistake, so never echo the usage block after it.
	SilenceUsage: true,
}

var (
	flagHierarchy string
	flagStates    string
	flagRequest   string
	flagTrace     string
	flagJSON      bool
	flagPlain     bool
)

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [key]",
	Short: "Evaluate a permission request",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	key := args[0]

	h, sources, _, err := loadAll()
	if err != nil {
		return err
	}

	request := map[string]any{}
	if flagRequest != "" {
		if err := json.Unmarshal([]byte(flagRequest), &request); err != nil {
			return fmt.Errorf("parse --request: %w", err)
		}
	}

	cfg := validate.Config{}
	if flagTrace != "" {
		tw, err := trace.NewFileWriter(flagTrace, key)
		if err != nil {
			return err
		}
		cfg.Trace = tw
	}

	res, err := validate.New(h, cfg).Validate(cmd.Context(), sources, key, request)
	if err != nil {
		return err
	}

	if flagJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(render.Result(key, res))
	}

	if !res.Valid {
		return fmt.Errorf("permission %s: %s", key, res.Outcome)
	}
	return nil
}

// --- paths ---

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List the flattened checkable paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHierarchy()
		if err != nil {
			return err
		}
		if flagJSON {
			data, err := json.MarshalIndent(h.Paths(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		fmt.Print(render.PathsTable(h))
		return nil
	},
}

// --- defaults ---

var defaultsCmd = &cobra.Command{
	Use:   "defaults [path]",
	Short: "Show the synthesized default state for a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHierarchy()
		if err != nil {
			return err
		}
		if !h.Has(args[0]) {
			return fmt.Errorf("unknown path %q", args[0])
		}
		data, err := json.MarshalIndent(h.DefaultState(args[0]), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// --- explain ---

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Describe every path: rules, schemas, and default state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHierarchy()
		if err != nil {
			return err
		}
		if flagPlain {
			fmt.Print(render.ExplainMarkdown(h))
			return nil
		}
		out, err := render.Explain(h)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema [hierarchy|states]",
	Short: "Export the JSON Schema for hierarchy or states files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		switch args[0] {
		case "hierarchy":
			data, err = loader.GenerateHierarchyJSONSchema()
		case "states":
			data, err = loader.GenerateStatesJSONSchema()
		default:
			return fmt.Errorf("unknown schema type %q — use 'hierarchy' or 'states'", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// --- repl ---

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell over a hierarchy and state sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, sources, names, err := loadAll()
		if err != nil {
			return err
		}
		return repl.New(h, sources, names).Run(cmd.Context())
	},
}

// --- tui ---

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Terminal UI for browsing and checking paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, sources, _, err := loadAll()
		if err != nil {
			return err
		}
		p := tea.NewProgram(qtui.NewModel(h, sources), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quickperm %s (%s)\n", version, commit)
	},
}

func loadHierarchy() (*hierarchy.Hierarchy, error) {
	if flagHierarchy == "" {
		return nil, fmt.Errorf("--hierarchy is required")
	}
	return loader.LoadFile(flagHierarchy, loader.DefaultRegistry())
}

func loadAll() (*hierarchy.Hierarchy, []validate.Source, []string, error) {
	h, err := loadHierarchy()
	if err != nil {
		return nil, nil, nil, err
	}
	if flagStates == "" {
		return nil, nil, nil, fmt.Errorf("--states is required")
	}
	sources, names, err := loader.LoadStatesFile(flagStates)
	if err != nil {
		return nil, nil, nil, err
	}
	return h, sources, names, nil
}

func init() {
	for _, c := range []*cobra.Command{validateCmd, pathsCmd, defaultsCmd, explainCmd, replCmd, tuiCmd} {
		c.Flags().StringVarP(&flagHierarchy, "hierarchy", "H", "", "path to the hierarchy YAML file")
	}
	for _, c := range []*cobra.Command{validateCmd, replCmd, tuiCmd} {
		c.Flags().StringVarP(&flagStates, "states", "s", "", "path to the state sources YAML file")
	}
	validateCmd.Flags().StringVarP(&flagRequest, "request", "r", "", "request payload as a JSON object")
	validateCmd.Flags().StringVar(&flagTrace, "trace", "", "write a JSONL evaluation trace to this file")
	validateCmd.Flags().BoolVar(&flagJSON, "json", false, "emit the result as JSON")
	pathsCmd.Flags().BoolVar(&flagJSON, "json", false, "emit paths as JSON")
	explainCmd.Flags().BoolVar(&flagPlain, "plain", false, "emit raw markdown instead of rendered output")

	rootCmd.AddCommand(validateCmd, pathsCmd, defaultsCmd, explainCmd, schemaCmd, replCmd, tuiCmd, versionCmd)
}
