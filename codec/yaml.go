package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports event records from YAML
func (c *YAMLCodec) Parse(r io.Reader) ([]Record, error) {
	var wf wireFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&wf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return toRecords(&wf)
}

// Export writes trace results as YAML
func (c *YAMLCodec) Export(results []TraceRecord, w io.Writer) error {
	wr, err := fromTraceRecords(results)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(wr); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
