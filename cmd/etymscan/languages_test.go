package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLanguagesCmd tests the languages command output.
func TestLanguagesCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints the built-in table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&buf)
		root.SetArgs([]string{"languages"})

		if err := root.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		got := buf.String()
		if !strings.Contains(got, "CANONICAL") {
			t.Errorf("output should have a header, got:\n%s", got)
		}
		if !strings.Contains(got, "Tamil") {
			t.Errorf("built-in table should list Tamil, got:\n%s", got)
		}
	})

	t.Run("prints a custom table", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "langs.yaml")
		content := `languages:
  - canonical: Examplish
    abbreviations: [Ex.]
    variants: [Exampleese]
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&buf)
		root.SetArgs([]string{"languages", "--languages", path})

		if err := root.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		got := buf.String()
		if !strings.Contains(got, "Examplish") || !strings.Contains(got, "Exampleese") {
			t.Errorf("custom table should be printed, got:\n%s", got)
		}
	})

	t.Run("rejects an invalid table", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "langs.yaml")
		content := `languages:
  - canonical: A
    variants: [Shared]
  - canonical: B
    variants: [Shared]
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		root := NewRootCmd()
		root.SetArgs([]string{"languages", "--languages", path})
		if err := root.Execute(); err == nil {
			t.Error("expected error for a variant shared by two languages")
		}
	})
}
