package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports event records from JSON
func (c *JSONCodec) Parse(r io.Reader) ([]Record, error) {
	var wf wireFile
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&wf); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return toRecords(&wf)
}

// Export writes trace results as JSON
func (c *JSONCodec) Export(results []TraceRecord, w io.Writer) error {
	wr, err := fromTraceRecords(results)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(wr); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
