// Package main provides the quickperm-mcp binary — MCP server for AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	qmcp "github.com/diister-dev/quick-permission/pkg/ecosystem/mcp"
)

var version = "dev"

func main() {
	s := qmcp.NewServer(version)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
