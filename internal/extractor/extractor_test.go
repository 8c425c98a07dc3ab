package extractor

import (
	"testing"
)

const samplePage = `<html><body>
<div class="results_record">
  <div><span class="fld">Proto-Dravidian:</span> <span class="unicode">*ac-</span>
    <div class="subquery_link"><img src="plus.gif" onclick="ShowHide('response.cgi?root=config&amp;single=1&amp;off=1234')"></div>
  </div>
  <div><span class="fld">Meaning:</span> to press down</div>
  <div><span class="fld">Number in DED:</span> <span class="unicode">301</span></div>
</div>
<div class="results_record">
  <div><span class="fld">Proto-South-Dravidian:</span> <span class="unicode">*vag-</span></div>
  <div><span class="fld">Dravidian etymology:</span> back-ref
    <div class="subquery_link"><img onclick="ShowHide('response.cgi?off=9999')"></div>
  </div>
</div>
</body></html>`

// TestExtract tests generic field and child-link discovery.
func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("discovers fields generically with normalized names", func(t *testing.T) {
		t.Parallel()

		e, err := New("https://starlingdb.org/cgi-bin/response.cgi?root=config")
		if err != nil {
			t.Fatalf("failed to create extractor: %v", err)
		}

		blocks, err := e.Extract(samplePage)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if len(blocks) != 2 {
			t.Fatalf("expected 2 blocks, got %d", len(blocks))
		}

		first := blocks[0]
		if len(first.Fields) != 3 {
			t.Fatalf("expected 3 fields, got %d: %+v", len(first.Fields), first.Fields)
		}
		if first.Fields[0].Name != "Proto-Dravidian" {
			t.Errorf("trailing colon not stripped: %q", first.Fields[0].Name)
		}
		if first.Fields[0].Value != "*ac-" {
			t.Errorf("unexpected value: %q", first.Fields[0].Value)
		}
		if first.Fields[1].Name != "Meaning" || first.Fields[1].Value != "to press down" {
			t.Errorf("text-fallback value extraction failed: %+v", first.Fields[1])
		}
	})

	t.Run("resolves expand markers against the page URL", func(t *testing.T) {
		t.Parallel()

		e, err := New("https://starlingdb.org/cgi-bin/response.cgi?root=config")
		if err != nil {
			t.Fatalf("failed to create extractor: %v", err)
		}

		blocks, err := e.Extract(samplePage)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}

		if len(blocks[0].Links) != 1 {
			t.Fatalf("expected 1 child link, got %d", len(blocks[0].Links))
		}
		want := "https://starlingdb.org/cgi-bin/response.cgi?root=config&single=1&off=1234"
		if blocks[0].Links[0] != want {
			t.Errorf("link = %q, want %q", blocks[0].Links[0], want)
		}
	})

	t.Run("drops etymology fields and their links", func(t *testing.T) {
		t.Parallel()

		e, err := New("https://starlingdb.org/cgi-bin/response.cgi")
		if err != nil {
			t.Fatalf("failed to create extractor: %v", err)
		}

		blocks, err := e.Extract(samplePage)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}

		second := blocks[1]
		for _, f := range second.Fields {
			if f.Name == "Dravidian etymology" {
				t.Error("etymology field must be dropped")
			}
		}
		if len(second.Links) != 0 {
			t.Errorf("etymology expand marker must not be followed, got links %v", second.Links)
		}
	})

	t.Run("ignores plain hyperlinks without expand markers", func(t *testing.T) {
		t.Parallel()

		page := `<div class="results_record">
			<div><span class="fld">Tamil:</span> <span class="unicode">accu</span>
				<a href="somewhere.cgi?x=1">see also</a>
			</div>
		</div>`

		e, _ := New("https://starlingdb.org/cgi-bin/response.cgi")
		blocks, err := e.Extract(page)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if len(blocks) != 1 || len(blocks[0].Links) != 0 {
			t.Errorf("plain hyperlink was treated as a child link: %+v", blocks)
		}
	})

	t.Run("empty page yields no blocks without error", func(t *testing.T) {
		t.Parallel()

		e, _ := New("https://starlingdb.org/")
		blocks, err := e.Extract("<html><body><p>nothing here</p></body></html>")
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if len(blocks) != 0 {
			t.Errorf("expected no blocks, got %d", len(blocks))
		}
	})

	t.Run("record without labels yields empty block", func(t *testing.T) {
		t.Parallel()

		e, _ := New("https://starlingdb.org/")
		blocks, err := e.Extract(`<div class="results_record"><div>unlabeled text</div></div>`)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if len(blocks) != 1 {
			t.Fatalf("expected 1 block, got %d", len(blocks))
		}
		if len(blocks[0].Fields) != 0 || len(blocks[0].Links) != 0 {
			t.Errorf("expected empty block, got %+v", blocks[0])
		}
	})
}
