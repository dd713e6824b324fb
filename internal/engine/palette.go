package engine

import (
	"errors"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// paletteSampleSize bounds the image the palette is computed from.
const paletteSampleSize = 64

// Swatch is one colour of a source palette.
type Swatch struct {
	// Hex is the quantized colour as "#rrggbb".
	Hex string `json:"hex"`

	// Share is the fraction of sampled opaque pixels with this colour, 0-1.
	Share float64 `json:"share"`

	// Hue, Saturation and Lightness of the colour: 0-360, 0-1, 0-1.
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Lightness  float64 `json:"lightness"`
}

// Palette holds the most common colours of a source image, most frequent
// first. Front ends use the first swatch as a placeholder background while
// the rendered image loads.
type Palette struct {
	Name     string   `json:"name"`
	Swatches []Swatch `json:"swatches"`
}

// SourcePalette returns up to count dominant colours of the source image
// root/name.
//
// The image is first shrunk to fit in a 64x64 box, then every RGB component
// is quantized to a multiple of 16 so near-identical colours are counted
// together. Pixels with less than half opacity are ignored.
func SourcePalette(root, name string, count int) (*Palette, error) {
	if count <= 0 {
		return nil, errors.New("palette size must be positive")
	}
	path, err := sourcePath(root, name)
	if err != nil {
		return nil, err
	}
	img, err := LoadSource(path, true)
	if err != nil {
		return nil, &Error{Op: "load", Name: name, Err: err}
	}

	small := imaging.Fit(img, paletteSampleSize, paletteSampleSize, imaging.Box)
	counts := make(map[colorful.Color]int)
	total := 0
	b := small.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := small.NRGBAAt(x, y)
			if c.A < 128 {
				continue
			}
			q := colorful.Color{
				R: float64(c.R/16*16) / 255,
				G: float64(c.G/16*16) / 255,
				B: float64(c.B/16*16) / 255,
			}
			counts[q]++
			total++
		}
	}

	swatches := make([]Swatch, 0, len(counts))
	for c, n := range counts {
		h, s, l := c.Hsl()
		swatches = append(swatches, Swatch{
			Hex:        c.Hex(),
			Share:      float64(n) / float64(total),
			Hue:        h,
			Saturation: s,
			Lightness:  l,
		})
	}
	sort.Slice(swatches, func(i, j int) bool {
		if swatches[i].Share != swatches[j].Share {
			return swatches[i].Share > swatches[j].Share
		}
		return swatches[i].Hex < swatches[j].Hex
	})
	if len(swatches) > count {
		swatches = swatches[:count]
	}
	return &Palette{Name: name, Swatches: swatches}, nil
}
