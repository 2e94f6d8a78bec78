package worldfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/worldcanvas/pkg/world"
)

// Format is an on-disk world format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatBundle Format = "bundle"
)

// BundleExt is the file extension of world bundles.
const BundleExt = ".wcz"

// FormatOf picks the format from a file extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case BundleExt:
		return FormatBundle, nil
	}
	return "", fmt.Errorf("worldfile: unknown format for %s (use .json, .yaml or %s)", filename, BundleExt)
}

// ReadFile reads a world document in the format given by its extension.
func ReadFile(filename string) (*world.World, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}
	if format == FormatBundle {
		return ReadBundleFile(filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if format == FormatYAML {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// WriteFile writes a world document in the format given by its
// extension. The document is validated first.
func WriteFile(filename string, w *world.World) error {
	format, err := FormatOf(filename)
	if err != nil {
		return err
	}
	if err := w.Validate(); err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatBundle:
		return WriteBundleFile(filename, w)
	case FormatYAML:
		data, err = ToYAML(w)
	default:
		data, err = ToJSON(w, true)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}
