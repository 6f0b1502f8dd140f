package store

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"shelf/src/internal/record"
)

// Export formats.
const (
	FormatYAML    = "yaml"
	FormatJSON    = "json"
	FormatParquet = "parquet"
)

// Formats lists the accepted export formats.
var Formats = []string{FormatYAML, FormatJSON, FormatParquet}

// Export writes rs to w in format. Records are written in the order given.
func Export(w io.Writer, format string, rs []record.Record) error {
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		return WriteYAML(w, rs)
	case FormatJSON:
		return WriteJSON(w, rs)
	case FormatParquet:
		return WriteParquet(w, rs)
	default:
		return fmt.Errorf("unknown export format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// WriteYAML writes rs as a YAML sequence.
func WriteYAML(w io.Writer, rs []record.Record) error {
	if rs == nil {
		rs = []record.Record{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rs); err != nil {
		return err
	}
	return enc.Close()
}

// WriteJSON writes rs as an indented JSON array.
func WriteJSON(w io.Writer, rs []record.Record) error {
	if rs == nil {
		rs = []record.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

// WriteParquet writes rs as a single Parquet file.
func WriteParquet(w io.Writer, rs []record.Record) error {
	pw := parquet.NewGenericWriter[record.Record](w)
	if len(rs) > 0 {
		if _, err := pw.Write(rs); err != nil {
			_ = pw.Close()
			return fmt.Errorf("write parquet rows: %w", err)
		}
	}
	return pw.Close()
}
