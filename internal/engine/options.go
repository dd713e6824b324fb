package engine

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Options is the loosely typed engine configuration produced by merging the
// server configuration with a preset's overrides.
type Options map[string]any

// Config is the typed view of Options.
type Config struct {
	Source                  string `yaml:"source"`
	Cache                   string `yaml:"cache"`
	BaseURL                 string `yaml:"base_url"`
	CachePathPrefix         string `yaml:"cache_path_prefix"`
	GroupCacheInFolders     bool   `yaml:"group_cache_in_folders"`
	CacheWithFileExtensions bool   `yaml:"cache_with_file_extensions"`
	MaxImageSize            int    `yaml:"max_image_size"`
}

// Config decodes the option map. Keys the engine does not know are ignored;
// known keys holding the wrong type are an error.
func (o Options) Config() (Config, error) {
	cfg := Config{GroupCacheInFolders: true}

	var node yaml.Node
	if err := node.Encode(map[string]any(o)); err != nil {
		return Config{}, fmt.Errorf("encode options: %w", err)
	}
	if err := node.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode options: %w", err)
	}

	if cfg.Source == "" {
		return Config{}, errors.New("option source is required")
	}
	if cfg.Cache == "" {
		return Config{}, errors.New("option cache is required")
	}
	if cfg.MaxImageSize < 0 {
		return Config{}, fmt.Errorf("option max_image_size must not be negative, got %d", cfg.MaxImageSize)
	}
	return cfg, nil
}
