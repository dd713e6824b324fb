package engine

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-glide/internal/transform"
)

var anchors = map[string]imaging.Anchor{
	"top-left":     imaging.TopLeft,
	"top":          imaging.Top,
	"top-right":    imaging.TopRight,
	"left":         imaging.Left,
	"center":       imaging.Center,
	"right":        imaging.Right,
	"bottom-left":  imaging.BottomLeft,
	"bottom":       imaging.Bottom,
	"bottom-right": imaging.BottomRight,
}

// manipulate applies every manipulation in p to img. maxArea bounds the
// output width*height when positive.
func manipulate(img image.Image, p transform.Params, maxArea int) image.Image {
	img = orient(img, p.Orientation)
	img = cropRect(img, p.Crop)
	img = resize(img, p, maxArea)

	if p.Brightness != 0 {
		img = adjust.Brightness(img, float64(p.Brightness)/100)
	}
	if p.Contrast != 0 {
		img = adjust.Contrast(img, float64(p.Contrast)/100)
	}
	if p.Gamma > 0 && p.Gamma != 1 {
		img = adjust.Gamma(img, p.Gamma)
	}
	if p.Sharpen > 0 {
		img = effect.UnsharpMask(img, 1.0, float64(p.Sharpen)/20)
	}
	switch p.Filter {
	case "greyscale":
		img = effect.Grayscale(img)
	case "sepia":
		img = effect.Sepia(img)
	}
	img = flip(img, p.Flip)
	if p.Blur > 0 {
		img = blur.Gaussian(img, float64(p.Blur)/4)
	}
	if p.Pixelate > 1 {
		img = pixelate(img, p.Pixelate)
	}

	bg := p.Background
	if bg == nil && !supportsAlpha(p.Format) {
		white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		bg = &white
	}
	if bg != nil {
		b := img.Bounds()
		img = imaging.Overlay(imaging.New(b.Dx(), b.Dy(), *bg), img, image.Pt(0, 0), 1.0)
	}

	if p.Border != nil {
		img = border(img, *p.Border)
	}
	return img
}

// orient rotates counter-clockwise by the requested degrees. "auto" is
// handled at decode time from EXIF data.
func orient(img image.Image, or string) image.Image {
	switch or {
	case "90":
		return imaging.Rotate90(img)
	case "180":
		return imaging.Rotate180(img)
	case "270":
		return imaging.Rotate270(img)
	}
	return img
}

// cropRect cuts a manual rectangle. Rectangles entirely outside the image
// are ignored; partial overlaps are clamped.
func cropRect(img image.Image, r *transform.Rect) image.Image {
	if r == nil {
		return img
	}
	b := img.Bounds()
	rect := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height).Add(b.Min)
	if rect.Intersect(b).Empty() {
		return img
	}
	return imaging.Crop(img, rect)
}

func resize(img image.Image, p transform.Params, maxArea int) image.Image {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	w, h := p.TargetSize()
	if (w == 0 && h == 0) || srcW == 0 || srcH == 0 {
		w, h = limitArea(srcW, srcH, maxArea)
		if w == srcW && h == srcH {
			return img
		}
		return imaging.Resize(img, w, h, imaging.Lanczos)
	}

	if w == 0 {
		w = scaleInt(srcW, float64(h)/float64(srcH))
	}
	if h == 0 {
		h = scaleInt(srcH, float64(w)/float64(srcW))
	}
	w, h = limitArea(w, h, maxArea)

	switch p.Fit {
	case transform.FitStretch:
		return imaging.Resize(img, w, h, imaging.Lanczos)
	case transform.FitCrop:
		anchor, ok := anchors[p.CropPosition]
		if !ok {
			anchor = imaging.Center
		}
		return imaging.Fill(img, w, h, anchor, imaging.Lanczos)
	case transform.FitMax:
		cw, ch := containSize(srcW, srcH, w, h)
		if cw >= srcW || ch >= srcH {
			return img
		}
		return imaging.Resize(img, cw, ch, imaging.Lanczos)
	case transform.FitFill:
		cw, ch := containSize(srcW, srcH, w, h)
		fitted := imaging.Resize(img, cw, ch, imaging.Lanczos)
		return imaging.PasteCenter(imaging.New(w, h, color.NRGBA{}), fitted)
	default:
		cw, ch := containSize(srcW, srcH, w, h)
		if cw == srcW && ch == srcH {
			return img
		}
		return imaging.Resize(img, cw, ch, imaging.Lanczos)
	}
}

// containSize scales (srcW, srcH) to the largest size that fits in (w, h)
// while keeping the aspect ratio.
func containSize(srcW, srcH, w, h int) (int, int) {
	scale := math.Min(float64(w)/float64(srcW), float64(h)/float64(srcH))
	return scaleInt(srcW, scale), scaleInt(srcH, scale)
}

// limitArea shrinks (w, h) proportionally until w*h <= maxArea.
func limitArea(w, h, maxArea int) (int, int) {
	if maxArea <= 0 || w*h <= maxArea {
		return w, h
	}
	scale := math.Sqrt(float64(maxArea) / float64(w*h))
	return scaleInt(w, scale), scaleInt(h, scale)
}

func scaleInt(v int, scale float64) int {
	n := int(math.Round(float64(v) * scale))
	if n < 1 {
		n = 1
	}
	return n
}

func flip(img image.Image, f string) image.Image {
	switch f {
	case "h":
		return imaging.FlipH(img)
	case "v":
		return imaging.FlipV(img)
	case "both":
		return imaging.FlipV(imaging.FlipH(img))
	}
	return img
}

// pixelate shrinks the image by the block size with nearest-neighbour
// sampling and scales it back up, producing square blocks.
func pixelate(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	small := imaging.Resize(img, max(1, w/size), max(1, h/size), imaging.NearestNeighbor)
	return imaging.Resize(small, w, h, imaging.NearestNeighbor)
}

func border(img image.Image, bd transform.Border) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	fill := &image.Uniform{C: bd.Color}

	if bd.Method == "expand" {
		canvas := imaging.New(w+2*bd.Width, h+2*bd.Width, bd.Color)
		return imaging.Paste(canvas, img, image.Pt(bd.Width, bd.Width))
	}

	out := imaging.Clone(img)
	bw := min(bd.Width, w/2, h/2)
	edges := []image.Rectangle{
		image.Rect(0, 0, w, bw),
		image.Rect(0, h-bw, w, h),
		image.Rect(0, bw, bw, h-bw),
		image.Rect(w-bw, bw, w, h-bw),
	}
	for _, r := range edges {
		draw.Draw(out, r, fill, image.Point{}, draw.Over)
	}
	return out
}

func supportsAlpha(format string) bool {
	switch format {
	case transform.FormatPNG, transform.FormatGIF, transform.FormatWebP, transform.FormatTIFF:
		return true
	}
	return false
}
