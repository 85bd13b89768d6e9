// internal/genotype/count.go
package genotype

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedInput marks files whose pathway definitions cannot be
// read: a TSV with no header line, or a JSON document whose "pathway"
// field is missing or not an array of names.
var ErrMalformedInput = errors.New("malformed input")

// CountPathwaysTSV reads a likeligrid result table and returns the
// number of pathway columns. Lines starting with '#' are comments; the
// first remaining line is the header. The first column (loglik) is
// always dropped, and so is the last column when it contains ':',
// which marks an annotation column. A pathway name containing ':' in
// the last position would therefore be misdropped; that matches the
// upstream convention.
func CountPathwaysTSV(path string) (int, error) {
	rc, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		fields = fields[1:] // loglik
		if n := len(fields); n > 0 && strings.Contains(fields[n-1], ":") {
			fields = fields[:n-1]
		}
		return len(fields), nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%s: header not found: %w", path, ErrMalformedInput)
}

// Pathways reads a genotype JSON document and returns its ordered
// pathway names.
func Pathways(path string) ([]string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	var doc struct {
		Pathway json.RawMessage `json:"pathway"`
	}
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, ErrMalformedInput)
	}
	if len(doc.Pathway) == 0 || string(doc.Pathway) == "null" {
		return nil, fmt.Errorf("%s: no pathway field: %w", path, ErrMalformedInput)
	}
	var names []string
	if err := json.Unmarshal(doc.Pathway, &names); err != nil {
		return nil, fmt.Errorf("%s: pathway is not a name array: %w", path, ErrMalformedInput)
	}
	return names, nil
}

// CountPathwaysJSON returns the number of pathways defined in a
// genotype JSON document.
func CountPathwaysJSON(path string) (int, error) {
	names, err := Pathways(path)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Count dispatches on the input format.
func Count(f Format, path string) (int, error) {
	if f == FormatTSV {
		return CountPathwaysTSV(path)
	}
	return CountPathwaysJSON(path)
}
