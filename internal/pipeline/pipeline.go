// Package pipeline resolves (preset, source file) pairs into rendered
// artifacts.
//
// Every invocation is stateless: Resolve either fails with ErrNotFound or
// yields a Resolved request, and Produce either returns the artifact or an
// *EngineError. Presets and server configuration are read-only.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/image-glide/internal/config"
	"github.com/ironsheep/image-glide/internal/engine"
	"github.com/ironsheep/image-glide/internal/pathres"
	"github.com/ironsheep/image-glide/internal/preset"
	"github.com/ironsheep/image-glide/internal/transform"
)

// ErrNotFound means the preset is unknown or the source file is missing.
var ErrNotFound = errors.New("image not found")

// EngineError wraps a failure reported by the rendering engine.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string { return "render failed: " + e.Err.Error() }
func (e *EngineError) Unwrap() error { return e.Err }

// Renderer is the transformation engine capability.
type Renderer interface {
	Render(ctx context.Context, opts engine.Options, name string, p transform.Params) (*engine.Artifact, error)
}

// Resolved is a request whose preset and source file have been verified.
type Resolved struct {
	Preset preset.Preset

	// File is the source-relative name handed to the engine.
	File string

	// SourcePath is the absolute location checked on disk.
	SourcePath string

	// Options is the server configuration merged with the preset's
	// engine overrides.
	Options engine.Options
}

// Pipeline ties the preset registry, server configuration and engine together.
type Pipeline struct {
	presets *preset.Registry
	server  config.Server
	engine  Renderer
}

// New returns a pipeline. The registry must not be modified afterwards.
func New(presets *preset.Registry, server config.Server, r Renderer) *Pipeline {
	return &Pipeline{presets: presets, server: server, engine: r}
}

// Server returns the server configuration the pipeline was built with.
func (p *Pipeline) Server() config.Server { return p.server }

// Presets returns the preset registry.
func (p *Pipeline) Presets() *preset.Registry { return p.presets }

// ResolvePath parses a raw request path and resolves it. Paths that are not
// image requests fail with pathres.ErrMalformedPath.
func (p *Pipeline) ResolvePath(rawPath string) (*Resolved, error) {
	req, err := pathres.ParseRequestPath(rawPath, p.server.BasePrefix)
	if err != nil {
		return nil, err
	}
	return p.Resolve(req.Preset, req.File)
}

// Resolve looks up the preset, checks that the source file exists and
// builds the engine options.
func (p *Pipeline) Resolve(presetName, file string) (*Resolved, error) {
	ps, err := p.presets.Get(presetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	local := filepath.FromSlash(file)
	if !filepath.IsLocal(local) {
		return nil, fmt.Errorf("%w: source %q outside source root", ErrNotFound, file)
	}
	abs := filepath.Join(p.server.SourceRoot, local)
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: source %q: %w", ErrNotFound, file, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: source %q is a directory", ErrNotFound, file)
	}

	return &Resolved{
		Preset:     ps,
		File:       file,
		SourcePath: abs,
		Options:    p.engineOptions(ps),
	}, nil
}

// engineOptions layers, lowest precedence first: the server directories and
// prefix, the base engine options, then the preset's overrides.
func (p *Pipeline) engineOptions(ps preset.Preset) engine.Options {
	opts := engine.Options{
		"source":   p.server.SourceRoot,
		"cache":    p.server.CacheRoot,
		"base_url": p.server.BasePrefix,
	}
	for k, v := range p.server.Extra {
		opts[k] = v
	}
	for k, v := range ps.EngineOverride {
		opts[k] = v
	}
	return opts
}

// Produce renders a resolved request. Engine failures are returned as
// *EngineError; a source that disappeared after Resolve reports ErrNotFound.
func (p *Pipeline) Produce(ctx context.Context, r *Resolved) (*engine.Artifact, error) {
	art, err := p.engine.Render(ctx, r.Options, r.File, r.Preset.Params)
	if err == nil {
		return art, nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case errors.Is(err, engine.ErrSourceNotFound):
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return nil, &EngineError{Err: err}
}

// ProduceInline renders a resolved request and returns it as a data URI.
func (p *Pipeline) ProduceInline(ctx context.Context, r *Resolved) (string, error) {
	art, err := p.Produce(ctx, r)
	if err != nil {
		return "", err
	}
	return art.DataURI(), nil
}
