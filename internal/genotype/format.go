// internal/genotype/format.go
package genotype

import "fmt"

// Format identifies how pathway definitions are read from an input file.
type Format int

const (
	// FormatJSON is a genotype document with a "pathway" name array.
	FormatJSON Format = iota
	// FormatTSV is a likeligrid result table whose header columns are
	// pathways.
	FormatTSV
)

func (f Format) String() string {
	switch f {
	case FormatTSV:
		return "tsv"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a CLI token to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "tsv":
		return FormatTSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatJSON, fmt.Errorf("invalid format %q (want tsv or json)", s)
	}
}

// DetectFormat resolves the "auto" format the way the external tool's
// own flags imply it: a bare "-g" among the forwarded arguments means
// likeligrid is consuming gradient result tables, so the inputs are
// TSV; otherwise they are genotype JSON documents.
func DetectFormat(passthrough []string) Format {
	for _, a := range passthrough {
		if a == "-g" {
			return FormatTSV
		}
	}
	return FormatJSON
}
