package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadSubreddits reads community names from the first CSV column.
// Names are not validated here; the session rejects malformed ones per community.
func LoadSubreddits(path string) ([]string, error) {
	return loadColumn(path, strings.TrimSpace)
}

// LoadQueries reads search phrases verbatim, quotes included.
func LoadQueries(path string) ([]string, error) {
	return loadColumn(path, strings.TrimSpace)
}

func LoadKeywords(path string) ([]string, error) {
	return loadColumn(path, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

// loadColumn skips the header row and blank cells. Malformed rows are skipped (fail-soft).
func loadColumn(path string, clean func(string) string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// Wrap in BOM stripper
	r := csv.NewReader(stripBOM(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var out []string
	line := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil || line == 1 || len(rec) == 0 {
			continue
		}
		if v := clean(rec[0]); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rdr, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rdr != '\uFEFF' {
		br.UnreadRune()
	}
	return br
}
