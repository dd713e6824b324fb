package transform

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidParam is returned by Parse for unknown keys and out of range values.
var ErrInvalidParam = errors.New("invalid transform parameter")

// Output formats.
const (
	FormatJPEG            = "jpg"
	FormatProgressiveJPEG = "pjpg"
	FormatPNG             = "png"
	FormatGIF             = "gif"
	FormatWebP            = "webp"
	FormatTIFF            = "tiff"
	FormatBMP             = "bmp"
)

// Fit modes.
const (
	FitContain = "contain"
	FitMax     = "max"
	FitFill    = "fill"
	FitStretch = "stretch"
	FitCrop    = "crop"
)

var formats = map[string]bool{
	FormatJPEG: true, FormatProgressiveJPEG: true, FormatPNG: true, FormatGIF: true,
	FormatWebP: true, FormatTIFF: true, FormatBMP: true,
}

var cropPositions = map[string]bool{
	"top-left": true, "top": true, "top-right": true,
	"left": true, "center": true, "right": true,
	"bottom-left": true, "bottom": true, "bottom-right": true,
}

// Rect is a manual crop rectangle in source pixels.
type Rect struct {
	Width, Height, X, Y int
}

// Border describes a solid border drawn around the output.
type Border struct {
	Width  int
	Color  color.NRGBA
	Method string // overlay or expand
}

// Params is the validated form of a preset's transform options.
// The zero value means "re-encode the source unchanged".
type Params struct {
	Width        int
	Height       int
	Fit          string
	CropPosition string
	DPR          float64
	Crop         *Rect
	Orientation  string
	Flip         string
	Brightness   int
	Contrast     int
	Gamma        float64
	Sharpen      int
	Blur         int
	Pixelate     int
	Filter       string
	Background   *color.NRGBA
	Border       *Border
	Quality      int
	Format       string

	canonical string
}

// Canonical returns a stable encoding of the parameters, suitable as part of
// a cache key. Two Params parsed from equivalent maps share the same value.
func (p Params) Canonical() string {
	return p.canonical
}

// Extension returns the file extension used for the output format.
func (p Params) Extension() string {
	switch p.Format {
	case FormatProgressiveJPEG, "":
		return FormatJPEG
	default:
		return p.Format
	}
}

// TargetSize returns the requested width and height with the device pixel
// ratio applied.
func (p Params) TargetSize() (int, int) {
	if p.DPR <= 0 || p.DPR == 1 {
		return p.Width, p.Height
	}
	return int(math.Round(float64(p.Width) * p.DPR)), int(math.Round(float64(p.Height) * p.DPR))
}

// Stringify normalises a loosely typed option value into its string form.
// Integral floats print without a fractional part so that 75 and 75.0 agree.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		if t {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}

// Parse validates raw transform options. Empty values are treated as absent.
func Parse(raw map[string]any) (Params, error) {
	p := Params{Fit: FitContain, Orientation: "auto"}
	norm := make(map[string]string, len(raw))

	for key, rv := range raw {
		v := Stringify(rv)
		if v == "" {
			continue
		}
		if err := p.set(key, v); err != nil {
			return Params{}, err
		}
		norm[key] = v
	}

	keys := make([]string, 0, len(norm))
	for k := range norm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(norm[k])
	}
	p.canonical = b.String()
	return p, nil
}

func (p *Params) set(key, v string) error {
	var err error
	switch key {
	case "w":
		p.Width, err = intIn(key, v, 0, math.MaxInt32)
	case "h":
		p.Height, err = intIn(key, v, 0, math.MaxInt32)
	case "fit":
		err = p.setFit(v)
	case "dpr":
		p.DPR, err = floatIn(key, v, 0, 8)
	case "crop":
		p.Crop, err = parseRect(v)
	case "or":
		switch v {
		case "auto", "0", "90", "180", "270":
			p.Orientation = v
		default:
			err = invalid(key, v)
		}
	case "flip":
		switch v {
		case "h", "v", "both":
			p.Flip = v
		default:
			err = invalid(key, v)
		}
	case "bri":
		p.Brightness, err = intIn(key, v, -100, 100)
	case "con":
		p.Contrast, err = intIn(key, v, -100, 100)
	case "gam":
		p.Gamma, err = floatIn(key, v, 0.1, 9.99)
	case "sharp":
		p.Sharpen, err = intIn(key, v, 0, 100)
	case "blur":
		p.Blur, err = intIn(key, v, 0, 100)
	case "pixel":
		p.Pixelate, err = intIn(key, v, 0, 1000)
	case "filt":
		switch v {
		case "greyscale", "grayscale":
			p.Filter = "greyscale"
		case "sepia":
			p.Filter = v
		default:
			err = invalid(key, v)
		}
	case "bg":
		var c color.NRGBA
		c, err = ParseColor(v)
		p.Background = &c
	case "border":
		p.Border, err = parseBorder(v)
	case "q":
		p.Quality, err = intIn(key, v, 0, 100)
	case "fm":
		if v == "jpeg" {
			v = FormatJPEG
		}
		if !formats[v] {
			return fmt.Errorf("%w: unknown format %q", ErrInvalidParam, v)
		}
		p.Format = v
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidParam, key)
	}
	return err
}

func (p *Params) setFit(v string) error {
	switch v {
	case FitContain, FitMax, FitFill, FitStretch:
		p.Fit = v
		return nil
	case FitCrop:
		p.Fit, p.CropPosition = FitCrop, "center"
		return nil
	}
	if pos, ok := strings.CutPrefix(v, "crop-"); ok && cropPositions[pos] {
		p.Fit, p.CropPosition = FitCrop, pos
		return nil
	}
	return invalid("fit", v)
}

func parseRect(v string) (*Rect, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 4 {
		return nil, invalid("crop", v)
	}
	var n [4]int
	for i, s := range parts {
		x, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || x < 0 {
			return nil, invalid("crop", v)
		}
		n[i] = x
	}
	if n[0] == 0 || n[1] == 0 {
		return nil, invalid("crop", v)
	}
	return &Rect{Width: n[0], Height: n[1], X: n[2], Y: n[3]}, nil
}

func parseBorder(v string) (*Border, error) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, invalid("border", v)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || w <= 0 {
		return nil, invalid("border", v)
	}
	c, err := ParseColor(parts[1])
	if err != nil {
		return nil, err
	}
	b := &Border{Width: w, Color: c, Method: "overlay"}
	if len(parts) == 3 {
		switch m := strings.TrimSpace(parts[2]); m {
		case "overlay", "expand":
			b.Method = m
		default:
			return nil, invalid("border", v)
		}
	}
	return b, nil
}

func intIn(key, v string, lo, hi int) (int, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || f < float64(lo) || f > float64(hi) {
		return 0, invalid(key, v)
	}
	return int(f), nil
}

func floatIn(key, v string, lo, hi float64) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < lo || f > hi {
		return 0, invalid(key, v)
	}
	return f, nil
}

func invalid(key, v string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, v)
}
