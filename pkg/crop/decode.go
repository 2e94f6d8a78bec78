package crop

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads a png, jpeg, gif, webp, bmp or tiff image.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, format, nil
}

// DecodeDataURL decodes a base64 data URL such as a stored map
// background.
func DecodeDataURL(s string) (image.Image, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: not a data URL", ErrImageDecode)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("%w: data URL is not base64", ErrImageDecode)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return Decode(bytes.NewReader(data))
}

// Decoded is the outcome of DecodeAsync.
type Decoded struct {
	Image  image.Image
	Format string
	Err    error
}

// DecodeAsync decodes r on its own goroutine and delivers exactly one
// result on the returned channel, then closes it. If ctx is done by the
// time decoding finishes the result carries ctx.Err() instead of the
// image.
func DecodeAsync(ctx context.Context, r io.Reader) <-chan Decoded {
	ch := make(chan Decoded, 1)
	go func() {
		defer close(ch)
		img, format, err := Decode(r)
		if ctxErr := ctx.Err(); ctxErr != nil {
			ch <- Decoded{Err: ctxErr}
			return
		}
		ch <- Decoded{Image: img, Format: format, Err: err}
	}()
	return ch
}
