package engine

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-glide/internal/transform"
)

// defaultQuality applies when a quality of 0 reaches an encoder.
const defaultQuality = 75

// Encoder writes an image in one output format.
type Encoder interface {
	// ContentType is the MIME type of the encoded bytes.
	ContentType() string

	// Encode converts the image to bytes at the given quality (0-100).
	Encode(img image.Image, quality int) ([]byte, error)

	// Available reports whether the encoder can run on this host.
	// External encoders (cwebp) may not be installed.
	Available() bool
}

// Encoders selects an encoder per transform format.
type Encoders struct {
	byFormat map[string]Encoder
}

// NewEncoders registers the built-in encoders. WebP is only usable when
// cwebp is on PATH.
func NewEncoders() *Encoders {
	jpeg := &imagingEncoder{format: imaging.JPEG, mime: "image/jpeg"}
	return &Encoders{byFormat: map[string]Encoder{
		// image/jpeg only writes baseline JPEG, so pjpg shares the encoder.
		transform.FormatJPEG:            jpeg,
		transform.FormatProgressiveJPEG: jpeg,
		transform.FormatPNG:             &imagingEncoder{format: imaging.PNG, mime: "image/png"},
		transform.FormatGIF:             &imagingEncoder{format: imaging.GIF, mime: "image/gif"},
		transform.FormatTIFF:            &imagingEncoder{format: imaging.TIFF, mime: "image/tiff"},
		transform.FormatBMP:             &imagingEncoder{format: imaging.BMP, mime: "image/bmp"},
		transform.FormatWebP:            &WebPEncoder{},
	}}
}

// Get returns the encoder for a format, or ErrUnsupportedFormat when the
// format is unknown or its encoder is unavailable.
func (e *Encoders) Get(format string) (Encoder, error) {
	if format == "" {
		format = transform.FormatJPEG
	}
	enc, ok := e.byFormat[format]
	if !ok || !enc.Available() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return enc, nil
}

// imagingEncoder covers every format the imaging package can write.
type imagingEncoder struct {
	format imaging.Format
	mime   string
}

func (e *imagingEncoder) ContentType() string { return e.mime }
func (e *imagingEncoder) Available() bool     { return true }

func (e *imagingEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}

	var buf bytes.Buffer
	buf.Grow(256 * 1024)

	err := imaging.Encode(&buf, img, e.format,
		imaging.JPEGQuality(quality),
		imaging.PNGCompressionLevel(png.BestCompression),
	)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WebPEncoder encodes images to WebP by shelling out to cwebp.
// Install: brew install webp / apt install webp
type WebPEncoder struct {
	once      sync.Once
	available bool
	cwebpPath string
}

func (e *WebPEncoder) ContentType() string { return "image/webp" }

func (e *WebPEncoder) Available() bool {
	e.once.Do(func() {
		path, err := exec.LookPath("cwebp")
		if err == nil {
			e.available = true
			e.cwebpPath = path
		}
	})
	return e.available
}

func (e *WebPEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if !e.Available() {
		return nil, fmt.Errorf("%w: cwebp not found in PATH", ErrUnsupportedFormat)
	}
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}

	srcFile, err := os.CreateTemp("", "image-glide-src-*.png")
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := srcFile.Name()
	defer os.Remove(srcPath)

	dstFile, err := os.CreateTemp("", "image-glide-dst-*.webp")
	if err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	if err := png.Encode(srcFile, img); err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("encode temp png: %w", err)
	}
	srcFile.Close()

	cmd := exec.Command(e.cwebpPath,
		"-q", strconv.Itoa(quality),
		"-m", "6", // compression method (0=fast, 6=best)
		"-quiet",
		srcPath,
		"-o", dstPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("cwebp: %w: %s", err, string(out))
	}

	return os.ReadFile(dstPath)
}
