package seeder

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export streams the records of plan to w without touching a database. YAML
// output is one document per record; JSON output is one object per line.
func Export(w io.Writer, format string, gen *DataGenerator, plan Plan) (int, error) {
	var (
		encode func(Record) error
		finish = func() error { return nil }
	)
	switch format {
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		encode = func(rec Record) error { return enc.Encode(rec) }
		finish = enc.Close
	case FormatJSON, "jsonl":
		enc := json.NewEncoder(w)
		encode = func(rec Record) error { return enc.Encode(rec) }
	default:
		return 0, fmt.Errorf("unsupported export format: %s", format)
	}

	written := 0
	err := gen.Generate(plan, func(rec Record) error {
		if err := encode(rec); err != nil {
			return fmt.Errorf("failed to encode %s: %w", rec.ID, err)
		}
		written++
		return nil
	})
	if closeErr := finish(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to finish %s stream: %w", format, closeErr)
	}
	return written, err
}
