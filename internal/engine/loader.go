package engine

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// SourceInfo contains metadata about a source image file.
//
// It is gathered from the image header only, so it is cheap enough to call
// on request paths without decoding pixel data.
type SourceInfo struct {
	// Name is the source-relative file name that was inspected.
	Name string `json:"name"`

	// Width is the stored image width in pixels, before EXIF orientation.
	Width int `json:"width"`

	// Height is the stored image height in pixels, before EXIF orientation.
	Height int `json:"height"`

	// Format is the decoder name reported by the image package:
	// "jpeg", "png", "gif", "webp", "bmp" or "tiff".
	Format string `json:"format"`

	// FileSizeBytes is the size of the source file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// sourcePath joins a source-relative name onto the source root.
//
// Names that are absolute or climb out of the root with ".." are rejected
// so that a crafted request path cannot read arbitrary files.
func sourcePath(root, name string) (string, error) {
	clean := filepath.FromSlash(name)
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %q is not a local path", ErrSourceNotFound, name)
	}
	return filepath.Join(root, clean), nil
}

// LoadSource opens and decodes a source image.
//
// Parameters:
//   - path: Absolute path to the image. PNG, JPEG, GIF, WebP, BMP and TIFF
//     are supported.
//   - autoOrient: When true, JPEG EXIF orientation is applied so the result
//     is upright.
//
// # Errors
//
//   - Returns an error wrapping ErrSourceNotFound if the file does not exist
//   - Returns an error if the file cannot be read or decoded
func LoadSource(path string, autoOrient bool) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(autoOrient))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Inspect returns header metadata for a source image under root.
//
// Parameters:
//   - root: The source directory.
//   - name: Source-relative file name, slash separated.
//
// Returns:
//   - *SourceInfo: Dimensions, detected format and file size.
//   - error: Non-nil if the file is missing, not local to root, or its
//     header cannot be parsed.
func Inspect(root, name string) (*SourceInfo, error) {
	path, err := sourcePath(root, name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	return &SourceInfo{
		Name:          name,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
