package worldfile

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ha1tch/worldcanvas/pkg/world"
)

// ParseYAML parses and validates a world document written as YAML.
func ParseYAML(data []byte) (*world.World, error) {
	var w world.World
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("worldfile: yaml: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// ToYAML encodes a world document with two-space indentation.
func ToYAML(w *world.World) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(w); err != nil {
		return nil, fmt.Errorf("worldfile: yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
