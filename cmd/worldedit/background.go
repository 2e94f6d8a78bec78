package main

import (
	"bytes"
	"context"
	"image"
	"io"

	"github.com/ha1tch/worldcanvas/pkg/crop"
)

// backgroundResult is posted back to the event loop when an image picked
// for a map has been decoded and rasterized.
type backgroundResult struct {
	mapID   string
	path    string
	raster  crop.Raster
	preview image.Image
	err     error
}

// processBackground decodes r and renders it at its natural size, shrunk
// to fit the original preset. It runs off the event loop.
func processBackground(ctx context.Context, r io.Reader, opts crop.Options) backgroundResult {
	decoded := <-crop.DecodeAsync(ctx, r)
	if decoded.Err != nil {
		return backgroundResult{err: decoded.Err}
	}

	ed := crop.NewEditor(crop.DefaultFrame(), opts)
	ed.Load(decoded.Image)
	if err := ed.SetPreset(crop.PresetOriginal); err != nil {
		return backgroundResult{err: err}
	}
	raster, err := ed.Confirm()
	if err != nil {
		return backgroundResult{err: err}
	}
	if err := ctx.Err(); err != nil {
		return backgroundResult{err: err}
	}

	preview, _, err := crop.Decode(bytes.NewReader(raster.Data))
	if err != nil {
		return backgroundResult{err: err}
	}
	return backgroundResult{raster: raster, preview: preview}
}
