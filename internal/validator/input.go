package validator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoHeadwordColumn means the CSV header has no recognizable
// headword column, so no query can be built from any row.
var ErrNoHeadwordColumn = errors.New("validator: input CSV has no headword column")

// Column headers are matched case-insensitively after trimming, so the
// loader accepts both hand-written files and exports from the record
// database.
var (
	idHeaders       = []string{"id", "local_id", "record"}
	headwordHeaders = []string{"headword", "word", "proto", "proto-dravidian", "protodravidian"}
	languageHeaders = []string{"language", "lang"}
	keyHeaders      = []string{"external_key", "key", "number"}
)

// LoadQueriesCSV reads validation queries from a CSV file. The first
// row is the header; column order is free. Rows without a headword are
// skipped. Rows without an id get a 1-based row number as LocalID.
func LoadQueriesCSV(r io.Reader) ([]Query, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeadwordColumn
		}
		return nil, fmt.Errorf("validator: read CSV header: %w", err)
	}

	idCol := findColumn(header, idHeaders)
	hwCol := findColumn(header, headwordHeaders)
	langCol := findColumn(header, languageHeaders)
	keyCol := findColumn(header, keyHeaders)
	if hwCol < 0 {
		return nil, ErrNoHeadwordColumn
	}

	var queries []Query
	row := 0
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("validator: read CSV row: %w", err)
		}
		row++

		q := Query{
			Headword: cell(fields, hwCol),
			Language: cell(fields, langCol),
		}
		if q.Headword == "" {
			continue
		}
		if keyCol >= 0 {
			q.ExternalKey = cell(fields, keyCol)
		}
		if id := cell(fields, idCol); id != "" {
			q.LocalID = id
		} else {
			q.LocalID = strconv.Itoa(row)
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// findColumn returns the index of the first header cell matching one
// of the candidates. Headers like "Number in DED" match the "number"
// candidate by prefix; exact matches win over prefix matches.
func findColumn(header, candidates []string) int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, want := range candidates {
		for i, h := range normalized {
			if h == want {
				return i
			}
		}
	}
	for _, want := range candidates {
		for i, h := range normalized {
			if strings.HasPrefix(h, want+" ") {
				return i
			}
		}
	}
	return -1
}

func cell(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
