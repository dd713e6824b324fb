package engine

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ironsheep/image-glide/internal/transform"
)

// Artifact is a rendered image.
type Artifact struct {
	Data        []byte
	ContentType string

	// CachePath is the artifact's location on disk.
	CachePath string

	// Cached is true when the bytes came from an existing cache file.
	Cached bool
}

// DataURI returns the artifact as an inline "data:" URI with base64 payload.
func (a *Artifact) DataURI() string {
	return "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// Renderer produces artifacts. A single Renderer is shared by all requests;
// each call supplies its own Options, so presets can point at different
// source or cache directories.
type Renderer struct {
	encoders *Encoders
	group    singleflight.Group
	logger   zerolog.Logger
}

// NewRenderer returns a renderer that logs to logger.
func NewRenderer(logger zerolog.Logger) *Renderer {
	return &Renderer{
		encoders: NewEncoders(),
		logger:   logger.With().Str("component", "engine").Logger(),
	}
}

// Render returns the artifact for the source-relative name transformed by p.
// Cached artifacts are read from disk; misses are rendered once even when
// requested concurrently.
func (r *Renderer) Render(ctx context.Context, opts Options, name string, p transform.Params) (*Artifact, error) {
	cfg, err := opts.Config()
	if err != nil {
		return nil, &Error{Op: "config", Name: name, Err: err}
	}
	enc, err := r.encoders.Get(p.Format)
	if err != nil {
		return nil, &Error{Op: "encode", Name: name, Err: err}
	}

	cachePath := filepath.Join(cfg.Cache, filepath.FromSlash(cfg.CacheKey(name, p)))
	if data, err := os.ReadFile(cachePath); err == nil {
		return &Artifact{Data: data, ContentType: enc.ContentType(), CachePath: cachePath, Cached: true}, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, &Error{Op: "cache", Name: name, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := r.group.DoChan(cachePath, func() (any, error) {
		return r.render(cfg, enc, name, p, cachePath)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		data := res.Val.([]byte)
		return &Artifact{Data: data, ContentType: enc.ContentType(), CachePath: cachePath}, nil
	}
}

func (r *Renderer) render(cfg Config, enc Encoder, name string, p transform.Params, cachePath string) ([]byte, error) {
	start := time.Now()

	src, err := sourcePath(cfg.Source, name)
	if err != nil {
		return nil, &Error{Op: "load", Name: name, Err: err}
	}
	img, err := LoadSource(src, p.Orientation == "auto")
	if err != nil {
		return nil, &Error{Op: "load", Name: name, Err: err}
	}

	out := manipulate(img, p, cfg.MaxImageSize)

	data, err := enc.Encode(out, p.Quality)
	if err != nil {
		return nil, &Error{Op: "encode", Name: name, Err: err}
	}
	if err := writeAtomic(cachePath, data); err != nil {
		return nil, &Error{Op: "cache", Name: name, Err: err}
	}

	r.logger.Debug().
		Str("file", name).
		Str("params", p.Canonical()).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("rendered")
	return data, nil
}
