// internal/reveal/render.go
//
// Progressive artwork reveal.
// Responsibilities:
//   - Decode artwork bytes (JPEG, PNG, GIF, WebP).
//   - Composite an opaque rectangular mask over the lower part of the image.
//
// The unmasked band grows from the top: level 0 hides everything and
// MaxLevel hides nothing. Mask height uses integer arithmetic so repeated
// calls with the same inputs produce identical pixels.
package reveal

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrDecodeFailed is returned when artwork cannot be turned into a raster.
var ErrDecodeFailed = errors.New("decode failed")

// MaxDimension caps the width and height a header may declare.
const MaxDimension = 8192

// Check reads only the image header and rejects unknown formats and
// oversized dimensions.
func Check(r io.Reader) error {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return fmt.Errorf("%w: unsupported size %dx%d", ErrDecodeFailed, cfg.Width, cfg.Height)
	}
	return nil
}

// Decode reads an image in any registered format. The header is checked
// before any pixels are allocated.
func Decode(r io.Reader) (image.Image, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	if err := Check(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	return img, nil
}

// Renderer paints masked artwork. The zero value is not usable; set MaxLevel.
type Renderer struct {
	MaxLevel int
	Mask     color.Color // nil means opaque black
}

// MaskTop returns the first masked row (relative to the top) for an image of
// the given height. Levels outside [0, maxLevel] are clamped.
func MaskTop(height, level, maxLevel int) int {
	if maxLevel <= 0 {
		return 0
	}
	level = min(max(level, 0), maxLevel)
	return height * level / maxLevel
}

// Render draws src onto dst and masks rows [MaskTop, H) across the full width.
// dst must have the same dimensions as src; it is mutated in place.
// A nil src reports ErrDecodeFailed rather than painting an empty canvas.
func (r Renderer) Render(dst draw.Image, src image.Image, level int) error {
	if src == nil {
		return fmt.Errorf("%w: no artwork", ErrDecodeFailed)
	}
	sb, db := src.Bounds(), dst.Bounds()
	if sb.Dx() != db.Dx() || sb.Dy() != db.Dy() {
		return fmt.Errorf("reveal: surface %dx%d does not match artwork %dx%d", db.Dx(), db.Dy(), sb.Dx(), sb.Dy())
	}

	draw.Draw(dst, db, src, sb.Min, draw.Src)

	top := MaskTop(db.Dy(), level, r.MaxLevel)
	masked := image.Rect(db.Min.X, db.Min.Y+top, db.Max.X, db.Max.Y)
	if !masked.Empty() {
		draw.Draw(dst, masked, image.NewUniform(r.maskColor()), image.Point{}, draw.Src)
	}
	return nil
}

// RenderImage allocates a surface sized to src and renders into it.
func (r Renderer) RenderImage(src image.Image, level int) (*image.RGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no artwork", ErrDecodeFailed)
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if err := r.Render(dst, src, level); err != nil {
		return nil, err
	}
	return dst, nil
}

func (r Renderer) maskColor() color.Color {
	if r.Mask == nil {
		return color.Black
	}
	// The mask is always opaque.
	c := color.NRGBAModel.Convert(r.Mask).(color.NRGBA)
	c.A = 0xff
	return c
}
