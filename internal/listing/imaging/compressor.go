package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // decoder registration
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/form"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // decoder registration
)

var (
	ErrTooLarge      = errors.New("image cannot be compressed under the size limit")
	ErrTooManyPixels = errors.New("image dimensions exceed the pixel limit")
)

const (
	DefaultMaxDimension = 1024
	DefaultMaxBytes     = 1 << 20
	DefaultMaxPixels    = 40_000_000
	defaultQuality      = 85
	minQuality          = 40
	qualityStep         = 15
)

// JPEGCompressor downsizes images so the longest edge fits MaxDimension and
// re-encodes them as JPEG, lowering quality until the result fits MaxBytes.
// Headers declaring more than MaxPixels are refused before decoding.
type JPEGCompressor struct {
	MaxDimension int
	MaxBytes     int
	MaxPixels    int
}

func NewJPEGCompressor() *JPEGCompressor {
	return &JPEGCompressor{MaxDimension: DefaultMaxDimension, MaxBytes: DefaultMaxBytes, MaxPixels: DefaultMaxPixels}
}

func (c *JPEGCompressor) Compress(ctx context.Context, u Upload) (form.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return form.Attachment{}, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(u.Data))
	if err != nil {
		return form.Attachment{}, fmt.Errorf("decode %s: %w", u.Name, err)
	}
	if c.MaxPixels > 0 && (cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > c.MaxPixels/cfg.Height) {
		return form.Attachment{}, fmt.Errorf("%s (%dx%d): %w", u.Name, cfg.Width, cfg.Height, ErrTooManyPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(u.Data))
	if err != nil {
		return form.Attachment{}, fmt.Errorf("decode %s: %w", u.Name, err)
	}
	dst := flatten(src, c.MaxDimension)

	var buf bytes.Buffer
	for quality := defaultQuality; quality >= minQuality; quality -= qualityStep {
		if err := ctx.Err(); err != nil {
			return form.Attachment{}, err
		}
		buf.Reset()
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
			return form.Attachment{}, fmt.Errorf("encode %s: %w", u.Name, err)
		}
		if buf.Len() <= c.MaxBytes {
			b := dst.Bounds()
			return form.Attachment{
				Name:        jpegName(u.Name),
				ContentType: "image/jpeg",
				Data:        append([]byte(nil), buf.Bytes()...),
				Width:       b.Dx(),
				Height:      b.Dy(),
			}, nil
		}
	}
	return form.Attachment{}, fmt.Errorf("%s: %w", u.Name, ErrTooLarge)
}

// flatten scales src to fit maxDim on its longest edge and paints it over a
// white background, since JPEG has no alpha channel.
func flatten(src image.Image, maxDim int) *image.RGBA {
	sb := src.Bounds()
	w, h := scaledSize(sb.Dx(), sb.Dy(), maxDim)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	return dst
}

func scaledSize(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}

func jpegName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = "image"
	}
	return base + ".jpg"
}
