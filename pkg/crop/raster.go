package crop

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ha1tch/worldcanvas/pkg/geom"
)

// Output formats.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// Raster is a finished, encoded image.
type Raster struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// MIME returns the media type of the raster.
func (r Raster) MIME() string {
	return "image/" + r.Format
}

// DataURL returns the raster as a base64 data URL, the string payload
// stored on a map background.
func (r Raster) DataURL() string {
	return "data:" + r.MIME() + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// Transform returns the source-to-output affine transform for a source
// with bounds sb. The source is drawn at the output width times the
// frame scale, keeping its aspect, centred, then moved by the pan scaled
// from display to output pixels.
func Transform(sb image.Rectangle, f Frame, displayWidth float64) f64.Aff3 {
	w := float64(f.OutputWidth)
	h := float64(f.OutputHeight)
	sw := float64(sb.Dx())
	sh := float64(sb.Dy())

	scale := geom.ClampScale(f.Scale)
	ratio := w / displayWidth
	drawHeight := w * sh / sw
	a := scale * w / sw

	tx := w/2 + f.Pan.X*ratio - scale*w/2 - a*float64(sb.Min.X)
	ty := h/2 + f.Pan.Y*ratio - scale*drawHeight/2 - a*float64(sb.Min.Y)
	return f64.Aff3{
		a, 0, tx,
		0, a, ty,
	}
}

// Rasterize draws src into a new output-sized raster according to f.
// Uncovered pixels keep the background colour. An empty source yields a
// background-only raster.
func Rasterize(src image.Image, f Frame, opts Options) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrNotLoaded
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	dst := image.NewRGBA(image.Rect(0, 0, f.OutputWidth, f.OutputHeight))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	sb := src.Bounds()
	if sb.Empty() {
		return dst, nil
	}
	opts.Interpolator.Transform(dst, Transform(sb, f, opts.DisplayWidth), src, sb, draw.Over, nil)
	return dst, nil
}

// Encode writes img as JPEG at opts.Quality, or PNG when opts.Lossless.
// Any failure is reported as ErrRasterEncode.
func Encode(w io.Writer, img image.Image, opts Options) error {
	opts = opts.withDefaults()
	var err error
	if opts.Lossless {
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		err = enc.Encode(w, img)
	} else {
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: opts.Quality})
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRasterEncode, err)
	}
	return nil
}

// Render rasterizes and encodes in one step. On failure the returned
// Raster is empty.
func Render(src image.Image, f Frame, opts Options) (Raster, error) {
	opts = opts.withDefaults()
	img, err := Rasterize(src, f, opts)
	if err != nil {
		return Raster{}, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return Raster{}, err
	}

	format := FormatJPEG
	if opts.Lossless {
		format = FormatPNG
	}
	opts.Logger.Debug("raster encoded",
		"format", format,
		"width", f.OutputWidth,
		"height", f.OutputHeight,
		"bytes", buf.Len())
	return Raster{
		Data:   buf.Bytes(),
		Format: format,
		Width:  f.OutputWidth,
		Height: f.OutputHeight,
	}, nil
}
