// Package mcp exposes permission evaluation over the Model Context
// Protocol so AI agents can query hierarchies directly.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with quick-permission tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"quick-permission",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("permission/validate",
			mcp.WithDescription("Evaluate a permission request against a hierarchy and state sources"),
			mcp.WithString("hierarchy", mcp.Required(), mcp.Description("Path to the hierarchy YAML file")),
			mcp.WithString("states", mcp.Required(), mcp.Description("Path to the state sources YAML file")),
			mcp.WithString("key", mcp.Required(), mcp.Description("Permission key to check, e.g. user.delete")),
			mcp.WithString("request", mcp.Description("Request payload as a JSON object")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("permission/paths",
			mcp.WithDescription("List the flattened checkable paths of a hierarchy with their rules and default states"),
			mcp.WithString("hierarchy", mcp.Required(), mcp.Description("Path to the hierarchy YAML file")),
		),
		HandlePaths,
	)

	s.AddTool(
		mcp.NewTool("permission/schema",
			mcp.WithDescription("Export the quick-permission JSON Schema (hierarchy or states)"),
			mcp.WithString("type", mcp.Required(), mcp.Description("Schema type: 'hierarchy' or 'states'")),
		),
		HandleSchema,
	)

	return s
}
