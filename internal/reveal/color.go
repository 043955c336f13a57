// internal/reveal/color.go
//
// Mask colour parsing for the MASK_COLOR setting.

package reveal

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses "#rgb" or "#rrggbb" (leading '#' optional) into an
// opaque color.
func ParseColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("reveal: bad color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("reveal: bad color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
