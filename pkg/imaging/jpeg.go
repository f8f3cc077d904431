// Package imaging normalises downloaded pictures to opaque JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// DefaultMaxPixels bounds the decoded size when Options.MaxPixels is unset.
const DefaultMaxPixels = 40_000_000

// ErrTooManyPixels is returned for images whose declared dimensions exceed
// the pixel limit. Nothing is decoded for them.
var ErrTooManyPixels = errors.New("image has too many pixels")

// Options controls re-encoding. MaxWidth <= 0 keeps the original size.
type Options struct {
	MaxWidth int
	Quality  int
	// MaxPixels caps width*height as declared in the image header.
	MaxPixels int64
}

// ToJPEG decodes a JPEG, PNG or GIF, flattens any transparency onto white,
// scales it down to MaxWidth keeping the aspect ratio and encodes it as JPEG.
func ToJPEG(data []byte, opts Options) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	limit := opts.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > limit {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrTooManyPixels, cfg.Width, cfg.Height, limit)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	if opts.MaxWidth > 0 && width > opts.MaxWidth {
		height = max(1, height*opts.MaxWidth/width)
		width = opts.MaxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
