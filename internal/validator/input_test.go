package validator

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadQueriesCSV(t *testing.T) {
	t.Parallel()

	t.Run("standard header", func(t *testing.T) {
		t.Parallel()

		in := `id,headword,language,external_key
pd-1,*añj-,Gondi,301
pd-2,toṉṉai,Tamil,
`
		queries, err := LoadQueriesCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("LoadQueriesCSV() error = %v", err)
		}
		if len(queries) != 2 {
			t.Fatalf("got %d queries, want 2", len(queries))
		}
		want := Query{LocalID: "pd-1", Headword: "*añj-", Language: "Gondi", ExternalKey: "301"}
		if queries[0] != want {
			t.Errorf("queries[0] = %+v, want %+v", queries[0], want)
		}
		if queries[1].ExternalKey != "" {
			t.Errorf("queries[1].ExternalKey = %q, want empty", queries[1].ExternalKey)
		}
	})

	t.Run("spreadsheet style header", func(t *testing.T) {
		t.Parallel()

		in := `Proto-Dravidian,Language,Number in DED
*ac-,Gondi,301
`
		queries, err := LoadQueriesCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("LoadQueriesCSV() error = %v", err)
		}
		if len(queries) != 1 {
			t.Fatalf("got %d queries, want 1", len(queries))
		}
		q := queries[0]
		if q.Headword != "*ac-" || q.Language != "Gondi" || q.ExternalKey != "301" {
			t.Errorf("query = %+v", q)
		}
		if q.LocalID != "1" {
			t.Errorf("LocalID = %q, want row number fallback \"1\"", q.LocalID)
		}
	})

	t.Run("skips headword-less rows", func(t *testing.T) {
		t.Parallel()

		in := "headword,language\n,Tamil\nkan,Tamil\n"
		queries, err := LoadQueriesCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("LoadQueriesCSV() error = %v", err)
		}
		if len(queries) != 1 {
			t.Fatalf("got %d queries, want 1", len(queries))
		}
		if queries[0].LocalID != "2" {
			t.Errorf("LocalID = %q, want \"2\" (row numbering counts skipped rows)", queries[0].LocalID)
		}
	})

	t.Run("no headword column", func(t *testing.T) {
		t.Parallel()

		_, err := LoadQueriesCSV(strings.NewReader("id,language\n1,Tamil\n"))
		if !errors.Is(err, ErrNoHeadwordColumn) {
			t.Errorf("error = %v, want ErrNoHeadwordColumn", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		_, err := LoadQueriesCSV(strings.NewReader(""))
		if !errors.Is(err, ErrNoHeadwordColumn) {
			t.Errorf("error = %v, want ErrNoHeadwordColumn", err)
		}
	})
}
