package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [listing-url]" {
			t.Errorf("expected use 'crawl [listing-url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("pages")
		if flag == nil {
			t.Fatal("expected pages flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has max-depth flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-depth")
		if flag == nil {
			t.Fatal("expected max-depth flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
	})

	t.Run("has checkpoint flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("checkpoint") == nil {
			t.Error("expected checkpoint flag")
		}
	})

	t.Run("has db flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db") == nil {
			t.Error("expected db flag")
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

// TestBuildCrawlConfig tests flag and config file precedence.
func TestBuildCrawlConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags override config file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfgPath := filepath.Join(dir, ".etymscan")
		content := "crawl:\n  page_budget: 7\n  max_attempts: 9\n"
		if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		root := NewRootCmd()
		crawl, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatal(err)
		}
		if err := root.PersistentFlags().Set("config", cfgPath); err != nil {
			t.Fatal(err)
		}
		if err := crawl.Flags().Set("pages", "3"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildCrawlConfig(crawl, []string{"https://example.org/q?first=1"})
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}

		if cfg.PageBudget != 3 {
			t.Errorf("PageBudget = %d, want flag value 3", cfg.PageBudget)
		}
		if cfg.MaxAttempts != 9 {
			t.Errorf("MaxAttempts = %d, want config file value 9", cfg.MaxAttempts)
		}
		if cfg.StartURL != "https://example.org/q?first=1" {
			t.Errorf("StartURL = %q", cfg.StartURL)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		crawl, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatal(err)
		}
		if err := root.PersistentFlags().Set("config", filepath.Join(t.TempDir(), "nope")); err != nil {
			t.Fatal(err)
		}

		if _, err := buildCrawlConfig(crawl, nil); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("checkpoint defaults to XDG location", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		crawl, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := buildCrawlConfig(crawl, nil)
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}
		if cfg.CheckpointFile == "" {
			t.Error("CheckpointFile should default to the XDG data directory")
		}
	})
}

// TestCrawlEndToEnd crawls a fake paged database through the CLI.
func TestCrawlEndToEnd(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"1": `<div class="results_record">` +
			`<div><span class="fld">Proto:</span> <span class="unicode">*ac-</span></div>` +
			`<div><span class="fld">Meaning:</span> <span class="unicode">to eat</span></div>` +
			`</div>`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body, ok := pages[r.URL.Query().Get("first")]; ok {
			fmt.Fprint(w, "<html><body>"+body+"</body></html>")
			return
		}
		fmt.Fprint(w, "<html><body><p>No matches.</p></body></html>")
	}))
	defer server.Close()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "records.csv")
	cpPath := filepath.Join(dir, "checkpoint.json")

	root := NewRootCmd()
	root.SetArgs([]string{
		"crawl",
		"--checkpoint", cpPath,
		"--delay", "0",
		"--depth-delay", "0",
		"--timeout", (5 * time.Second).String(),
		"-o", outPath,
		server.URL + "/query?first=1",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "*ac-") {
		t.Errorf("report should contain the crawled record, got:\n%s", got)
	}

	// A completed crawl leaves no checkpoint behind.
	if _, err := os.Stat(cpPath); !os.IsNotExist(err) {
		t.Errorf("checkpoint should be removed after a clean completion, stat err = %v", err)
	}
}
