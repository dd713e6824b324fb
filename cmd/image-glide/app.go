package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ironsheep/image-glide/internal/attachment"
	"github.com/ironsheep/image-glide/internal/config"
	"github.com/ironsheep/image-glide/internal/emit"
	"github.com/ironsheep/image-glide/internal/engine"
	"github.com/ironsheep/image-glide/internal/pipeline"
	"github.com/ironsheep/image-glide/internal/preset"
	"github.com/ironsheep/image-glide/internal/urlbuild"
)

// app is the fully wired service. Everything in it is read-only after
// newApp returns.
type app struct {
	cfg      *config.Config
	server   config.Server
	presets  *preset.Registry
	pipeline *pipeline.Pipeline
	emitter  *emit.Emitter
	urls     *urlbuild.Builder
	store    *attachment.Store
}

func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	presets := preset.NewRegistry()
	if err := cfg.RegisterPresets(presets); err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}

	a := &app{
		cfg:     cfg,
		server:  cfg.Server(),
		presets: presets,
	}

	resolvers := attachment.Chain{attachment.Static(cfg.Attachments)}
	if cfg.AttachmentsDB != "" {
		store, err := attachment.OpenStore(cfg.AttachmentsDB)
		if err != nil {
			return nil, err
		}
		a.store = store
		resolvers = append(resolvers, store)
	}

	a.pipeline = pipeline.New(presets, a.server, engine.NewRenderer(logger))
	a.emitter = emit.New(a.pipeline, logger)

	urls, err := urlbuild.New(presets, urlbuild.Options{
		BasePrefix:  a.server.BasePrefix,
		SiteURL:     cfg.SiteURL,
		UploadsURL:  cfg.UploadsURL,
		Attachments: resolvers,
		Inliner:     a.emitter,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.urls = urls

	logger.Debug().
		Strs("presets", presets.Names()).
		Str("source_root", a.server.SourceRoot).
		Str("cache_root", a.server.CacheRoot).
		Str("prefix", a.server.BasePrefix).
		Msg("configured")
	return a, nil
}

// loadApp reads the configuration named by --config and wires the app.
func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger)
}

func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
