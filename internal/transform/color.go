package transform

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// namedColors covers the colour keywords accepted in place of hex values.
var namedColors = map[string]string{
	"black":   "000000",
	"white":   "ffffff",
	"red":     "ff0000",
	"green":   "008000",
	"lime":    "00ff00",
	"blue":    "0000ff",
	"yellow":  "ffff00",
	"cyan":    "00ffff",
	"magenta": "ff00ff",
	"silver":  "c0c0c0",
	"gray":    "808080",
	"grey":    "808080",
	"maroon":  "800000",
	"olive":   "808000",
	"purple":  "800080",
	"teal":    "008080",
	"navy":    "000080",
	"orange":  "ffa500",
	"pink":    "ffc0cb",
}

// ParseColor converts a colour value into an NRGBA colour.
//
// Accepted forms are a colour name ("white"), 3 or 6 digit hex ("fff",
// "#1e90ff") and 8 digit hex with a leading alpha byte ("80ff0000" is red
// at half opacity). "transparent" yields a fully transparent colour.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "#")

	if v == "transparent" {
		return color.NRGBA{}, nil
	}
	if hex, ok := namedColors[v]; ok {
		v = hex
	}

	alpha := uint8(255)
	if len(v) == 8 {
		a, err := strconv.ParseUint(v[:2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: colour %q", ErrInvalidParam, s)
		}
		alpha = uint8(a)
		v = v[2:]
	}
	if len(v) != 3 && len(v) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: colour %q", ErrInvalidParam, s)
	}

	c, err := colorful.Hex("#" + v)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: colour %q: %v", ErrInvalidParam, s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
