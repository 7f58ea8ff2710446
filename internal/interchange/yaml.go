package interchange

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var ErrEmptyDocument = errors.New("interchange: empty document")

func MarshalYAML(d Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("interchange: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("interchange: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a single YAML document. Unknown keys are an error so
// that a misspelled "heading" does not silently clear a flag.
func UnmarshalYAML(data []byte) (Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var d Document
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, ErrEmptyDocument
		}
		return Document{}, fmt.Errorf("interchange: decode yaml: %w", err)
	}
	return d, nil
}
