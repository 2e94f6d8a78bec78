package worldfile

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ha1tch/worldcanvas/pkg/world"
)

// A bundle is a zip archive holding world.json plus one file per map
// background, so large rasters are not base64 text inside the document.
const (
	bundleDocument = "world.json"
	bundleImageDir = "backgrounds/"
	bundleRef      = "bundle:"
)

// WriteBundleFile writes a world bundle to path.
func WriteBundleFile(filename string, w *world.World) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteBundle(file, w); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteBundle writes a world bundle to out. Backgrounds that are base64
// data URLs are stored as separate entries; anything else stays inline.
func WriteBundle(out io.Writer, w *world.World) error {
	doc := *w
	doc.Maps = make([]world.Collection, len(w.Maps))

	zw := zip.NewWriter(out)
	for i, m := range w.Maps {
		m = m.Clone()
		if mime, data, ok := splitDataURL(m.Background); ok {
			name := bundleImageDir + m.ID + extension(mime)
			fw, err := zw.Create(name)
			if err != nil {
				return err
			}
			if _, err := fw.Write(data); err != nil {
				return err
			}
			m.Background = bundleRef + name
		}
		doc.Maps[i] = m
	}

	data, err := ToJSON(&doc, true)
	if err != nil {
		return err
	}
	dw, err := zw.Create(bundleDocument)
	if err != nil {
		return err
	}
	if _, err := dw.Write(data); err != nil {
		return err
	}
	return zw.Close()
}

// ReadBundleFile reads a world bundle from path.
func ReadBundleFile(filename string) (*world.World, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	return ReadBundle(file, info.Size())
}

// ReadBundle reads a world bundle and re-inlines its backgrounds as data
// URLs.
func ReadBundle(r io.ReaderAt, size int64) (*world.World, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("worldfile: bundle: %w", err)
	}

	entries := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries[f.Name] = data
	}

	docData, ok := entries[bundleDocument]
	if !ok {
		return nil, fmt.Errorf("worldfile: bundle: %s not found in archive", bundleDocument)
	}
	w, err := ParseJSON(docData)
	if err != nil {
		return nil, err
	}

	for i := range w.Maps {
		name, ok := strings.CutPrefix(w.Maps[i].Background, bundleRef)
		if !ok {
			continue
		}
		data, ok := entries[name]
		if !ok {
			return nil, fmt.Errorf("worldfile: bundle: background %s of map %q missing", name, w.Maps[i].ID)
		}
		w.Maps[i].Background = "data:" + mimeType(name) + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return w, nil
}

// ReadBundleBytes reads a world bundle held in memory.
func ReadBundleBytes(data []byte) (*world.World, error) {
	return ReadBundle(bytes.NewReader(data), int64(len(data)))
}

func splitDataURL(s string) (mime string, data []byte, ok bool) {
	rest, found := strings.CutPrefix(s, "data:")
	if !found {
		return "", nil, false
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, false
	}
	mime, found = strings.CutSuffix(meta, ";base64")
	if !found {
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return mime, data, true
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func extension(mime string) string {
	if ext, ok := extensions[mime]; ok {
		return ext
	}
	return ".bin"
}

func mimeType(name string) string {
	ext := path.Ext(name)
	for mime, e := range extensions {
		if e == ext {
			return mime
		}
	}
	return "application/octet-stream"
}
