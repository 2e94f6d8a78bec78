// Package worldfile reads and writes world documents and renders their
// collections as DOT graphs and PNG snapshots.
package worldfile

import (
	"encoding/json"
	"fmt"

	"github.com/ha1tch/worldcanvas/pkg/world"
)

// ParseJSON parses and validates a world document.
func ParseJSON(data []byte) (*world.World, error) {
	var w world.World
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("worldfile: json: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// ToJSON encodes a world document.
func ToJSON(w *world.World, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(w, "", "  ")
	}
	return json.Marshal(w)
}
