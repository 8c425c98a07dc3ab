package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewValidateCmd tests the validate command creation.
func TestNewValidateCmd(t *testing.T) {
	t.Parallel()

	cmd := NewValidateCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "validate [search-url]" {
			t.Errorf("expected use 'validate [search-url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has input flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("input")
		if flag == nil {
			t.Fatal("expected input flag")
		}
		if flag.Shorthand != "i" {
			t.Errorf("expected shorthand 'i', got %q", flag.Shorthand)
		}
	})

	t.Run("has concurrency flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("concurrency")
		if flag == nil {
			t.Fatal("expected concurrency flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
	})

	t.Run("has strict flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("strict") == nil {
			t.Error("expected strict flag")
		}
	})

	t.Run("has languages flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("languages") == nil {
			t.Error("expected languages flag")
		}
	})

	t.Run("has report flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"json", "markdown", "output"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestValidateCmdInputErrors tests input validation before any request
// is made.
func TestValidateCmdInputErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "no search url",
			args: []string{"validate", "--input", "in.csv"},
			want: "no search URL",
		},
		{
			name: "no input",
			args: []string{"validate", "https://example.org/dict"},
			want: "no input",
		},
		{
			name: "conflicting inputs",
			args: []string{"validate", "--input", "in.csv", "--db", "/tmp/db", "https://example.org/dict"},
			want: "mutually exclusive",
		},
		{
			name: "conflicting report formats",
			args: []string{"validate", "--input", "in.csv", "--json", "--markdown", "https://example.org/dict"},
			want: "configuration error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := NewRootCmd()
			root.SetArgs(tt.args)
			err := root.Execute()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

// TestValidateEndToEnd validates a CSV of records against a fake
// reference dictionary through the CLI.
func TestValidateEndToEnd(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"301": `<div class="hw_result"><blockquote><p>` +
			`<number>301</number> <b><i>Go.</i> maria gondi form marrā</b> large tree species.` +
			`</p></blockquote></div>`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body, ok := pages[r.URL.Query().Get("qs")]; ok {
			fmt.Fprint(w, "<html><body>"+body+"</body></html>")
			return
		}
		fmt.Fprint(w, "<html><body><p>No matches.</p></body></html>")
	}))
	defer server.Close()

	dir := t.TempDir()
	inPath := filepath.Join(dir, "records.csv")
	input := "id,headword,language,external_key\npd-1,*maria,Go.,301\npd-2,nothing,Ta.,\n"
	if err := os.WriteFile(inPath, []byte(input), 0600); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "report.csv")

	root := NewRootCmd()
	root.SetArgs([]string{
		"validate",
		"--input", inPath,
		"--delay", "0",
		"-o", outPath,
		server.URL + "/dict_query",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "pd-1") {
		t.Errorf("report should contain the confirmed record, got:\n%s", got)
	}
	if !strings.Contains(got, "pd-2") {
		t.Errorf("report should contain the unmatched record, got:\n%s", got)
	}
}
