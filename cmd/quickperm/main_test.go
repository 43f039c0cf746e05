package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
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

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateDeniedExitsWithoutUsage(t *testing.T) {
	hierarchyPath, statesPath := writeFixtures(t)

	out, err := execute(t, "validate", "user.delete",
		"-H", hierarchyPath, "-s", statesPath,
		"-r", `{"from":"u1","target":"u1"}`)
	if err == nil {
		t.Fatal("a denied request must exit non-zero")
	}
	if strings.Contains(out, "Usage:") {
		t.Errorf("denial must not echo the usage block: %q", out)
	}
}

func TestValidateGranted(t *testing.T) {
	hierarchyPath, statesPath := writeFixtures(t)

	if _, err := execute(t, "validate", "user.delete",
		"-H", hierarchyPath, "-s", statesPath,
		"-r", `{"from":"u1","target":"u2"}`); err != nil {
		t.Fatalf("granted request must exit zero: %v", err)
	}
}
