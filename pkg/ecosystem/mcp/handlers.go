package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/diister-dev/quick-permission/pkg/loader"
	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/validate"
)

// HandleValidate implements the permission/validate MCP tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	hierarchyPath, _ := args["hierarchy"].(string)
	statesPath, _ := args["states"].(string)
	key, _ := args["key"].(string)
	if hierarchyPath == "" || statesPath == "" || key == "" {
		return errorResult("hierarchy, states, and key arguments are required"), nil
	}

	h, err := loader.LoadFile(hierarchyPath, loader.DefaultRegistry())
	if err != nil {
		return errorResult(fmt.Sprintf("load hierarchy: %s", err)), nil
	}
	sources, names, err := loader.LoadStatesFile(statesPath)
	if err != nil {
		return errorResult(fmt.Sprintf("load states: %s", err)), nil
	}

	request := map[string]any{}
	if raw, _ := args["request"].(string); raw != "" {
		if err := json.Unmarshal([]byte(raw), &request); err != nil {
			return errorResult(fmt.Sprintf("parse request JSON: %s", err)), nil
		}
	}

	v := validate.New(h, validate.Config{})
	res, err := v.Validate(ctx, sources, key, request)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	response := map[string]any{
		"key":     key,
		"valid":   res.Valid,
		"outcome": string(res.Outcome),
		"sources": names,
	}
	if len(res.Reasons) > 0 {
		reasons := make([]map[string]any, len(res.Reasons))
		for i, r := range res.Reasons {
			reasons[i] = map[string]any{
				"type":       r.Type,
				"name":       r.Name,
				"message":    r.Message,
				"permission": r.PermissionKey,
				"source":     r.StateIndex,
			}
		}
		response["reasons"] = reasons
	}

	data, _ := json.MarshalIndent(response, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: res.Outcome == outcome.Blocked,
	}, nil
}

// HandlePaths implements the permission/paths MCP tool.
func HandlePaths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	hierarchyPath, _ := args["hierarchy"].(string)
	if hierarchyPath == "" {
		return errorResult("hierarchy argument is required"), nil
	}

	h, err := loader.LoadFile(hierarchyPath, loader.DefaultRegistry())
	if err != nil {
		return errorResult(fmt.Sprintf("load hierarchy: %s", err)), nil
	}

	paths := make([]map[string]any, 0, h.Len())
	for _, p := range h.Paths() {
		e, _ := h.Lookup(p)
		rules := make([]string, len(e.Rules))
		for i, r := range e.Rules {
			rules[i] = r.Name
		}
		entry := map[string]any{
			"path":  p,
			"rules": rules,
		}
		if d := h.DefaultState(p); len(d) > 0 {
			entry["default_state"] = d
		}
		paths = append(paths, entry)
	}

	data, _ := json.MarshalIndent(map[string]any{"paths": paths}, "", "  ")
	return textResult(string(data)), nil
}

// HandleSchema implements the permission/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	schemaType, _ := args["type"].(string)

	var data []byte
	var err error

	switch schemaType {
	case "hierarchy":
		data, err = loader.GenerateHierarchyJSONSchema()
	case "states":
		data, err = loader.GenerateStatesJSONSchema()
	default:
		return errorResult(fmt.Sprintf("unknown schema type %q — use 'hierarchy' or 'states'", schemaType)), nil
	}

	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
