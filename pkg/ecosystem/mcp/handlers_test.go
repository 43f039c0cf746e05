package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func writeFixtures(t *testing.T) (hierarchyPath, statesPath string) {
	t.Helper()
	dir := t.TempDir()

	hierarchyPath = filepath.Join(dir, "hierarchy.yaml")
	if err := os.WriteFile(hierarchyPath, []byte(`
permissions:
  user:
    rules:
      - denySelf
    children:
      delete:
        rules:
          - use: allowTarget
            options:
              wildcards: true
`), 0o644); err != nil {
		t.Fatal(err)
	}

	statesPath = filepath.Join(dir, "states.yaml")
	if err := os.WriteFile(statesPath, []byte(`
sources:
  - name: direct
    states:
      user.delete:
        target: ["*"]
`), 0o644); err != nil {
		t.Fatal(err)
	}
	return hierarchyPath, statesPath
}

func callArgs(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestHandleValidate_MissingArgs(t *testing.T) {
	result, err := HandleValidate(context.Background(), callArgs(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for missing arguments")
	}
}

func TestHandleValidate_Grant(t *testing.T) {
	hierarchyPath, statesPath := writeFixtures(t)

	result, err := HandleValidate(context.Background(), callArgs(map[string]any{
		"hierarchy": hierarchyPath,
		"states":    statesPath,
		"key":       "user.delete",
		"request":   `{"from":"u1","target":"u2"}`,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatal("expected success result")
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"valid": true`) || !strings.Contains(text, `"granted"`) {
		t.Errorf("response = %s", text)
	}
}

func TestHandleValidate_UnknownKey(t *testing.T) {
	hierarchyPath, statesPath := writeFixtures(t)

	result, err := HandleValidate(context.Background(), callArgs(map[string]any{
		"hierarchy": hierarchyPath,
		"states":    statesPath,
		"key":       "nope",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("unknown key must produce an error result")
	}
}

func TestHandlePaths(t *testing.T) {
	hierarchyPath, _ := writeFixtures(t)

	result, err := HandlePaths(context.Background(), callArgs(map[string]any{
		"hierarchy": hierarchyPath,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatal("expected success result")
	}
	text := resultText(t, result)
	if !strings.Contains(text, "user.delete") || !strings.Contains(text, "allowTarget") {
		t.Errorf("response = %s", text)
	}
}

func TestHandleSchema_Hierarchy(t *testing.T) {
	result, err := HandleSchema(context.Background(), callArgs(map[string]any{"type": "hierarchy"}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Error("expected success for hierarchy schema")
	}
	if len(result.Content) == 0 {
		t.Error("expected schema content")
	}
}

func TestHandleSchema_UnknownType(t *testing.T) {
	result, err := HandleSchema(context.Background(), callArgs(map[string]any{"type": "foo"}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for unknown schema type")
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return tc.Text
}
