// Package config loads the image server configuration.
//
// Configuration comes from an optional YAML file named by the --config flag
// or the IMAGE_GLIDE_CONFIG environment variable. Individual IMAGE_GLIDE_*
// variables override file values. Without a file the defaults below apply.
//
// The loaded Config is read-only once the server starts; it is passed
// explicitly to the components that need it.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-glide/internal/preset"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "IMAGE_GLIDE_CONFIG"

// Defaults.
const (
	DefaultListen     = ":8080"
	DefaultBasePrefix = "img/"
	DefaultSourceRoot = "uploads"
	cacheDirName      = "cache"
)

// Config is the full process configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// SiteURL is the public base URL generated image links are made
	// absolute against.
	SiteURL string `yaml:"site_url"`

	// UploadsURL is the public URL of the uploads directory. It is
	// stripped from source URLs to obtain source-relative paths.
	UploadsURL string `yaml:"uploads_url"`

	// BasePrefix marks a request path as an image request.
	BasePrefix string `yaml:"base_prefix"`

	// SourceRoot holds the original uploads.
	SourceRoot string `yaml:"source_root"`

	// CacheRoot holds rendered artifacts. Empty means <SourceRoot>/cache.
	CacheRoot string `yaml:"cache_root"`

	// AttachmentsDB is an optional SQLite database mapping attachment IDs
	// to source URLs.
	AttachmentsDB string `yaml:"attachments_db"`

	// Attachments maps attachment IDs to source URLs inline.
	Attachments map[int64]string `yaml:"attachments"`

	// Engine holds base engine options applied to every preset.
	Engine map[string]any `yaml:"engine"`

	// Presets are registered at startup in file order.
	Presets []PresetConfig `yaml:"presets"`
}

// PresetConfig is one preset entry in the config file.
type PresetConfig struct {
	Name      string         `yaml:"name"`
	Transform map[string]any `yaml:"transform"`
	Engine    map[string]any `yaml:"engine"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:     DefaultListen,
		BasePrefix: DefaultBasePrefix,
		SourceRoot: DefaultSourceRoot,
	}
}

// Load reads the config file at path, or the file named by
// IMAGE_GLIDE_CONFIG when path is empty, then applies environment
// overrides. With neither set the defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvironmentOverrides() {
	overrides := []struct {
		name   string
		target *string
	}{
		{"IMAGE_GLIDE_LISTEN", &c.Listen},
		{"IMAGE_GLIDE_SITE_URL", &c.SiteURL},
		{"IMAGE_GLIDE_UPLOADS_URL", &c.UploadsURL},
		{"IMAGE_GLIDE_BASE_PREFIX", &c.BasePrefix},
		{"IMAGE_GLIDE_SOURCE_ROOT", &c.SourceRoot},
		{"IMAGE_GLIDE_CACHE_ROOT", &c.CacheRoot},
		{"IMAGE_GLIDE_ATTACHMENTS_DB", &c.AttachmentsDB},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.name); v != "" {
			*o.target = v
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if c.SourceRoot == "" {
		errs = append(errs, errors.New("source_root must not be empty"))
	}
	if c.SiteURL != "" {
		u, err := url.Parse(c.SiteURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("site_url: %w", err))
		} else if u.Host == "" {
			errs = append(errs, fmt.Errorf("site_url %q has no host", c.SiteURL))
		}
	}
	seen := make(map[string]bool, len(c.Presets))
	for i, p := range c.Presets {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("presets[%d]: name must not be empty", i))
		} else if seen[p.Name] {
			errs = append(errs, fmt.Errorf("presets[%d]: duplicate name %q", i, p.Name))
		}
		seen[p.Name] = true
	}
	return errors.Join(errs...)
}

// RegisterPresets registers every configured preset with r. The first
// invalid preset aborts startup.
func (c *Config) RegisterPresets(r *preset.Registry) error {
	for _, p := range c.Presets {
		if err := r.Register(p.Name, p.Transform, p.Engine); err != nil {
			return err
		}
	}
	return nil
}

// Server returns the resolved server configuration.
func (c *Config) Server() Server {
	return NewServer(c.Engine, c.BasePrefix, c.SourceRoot, c.CacheRoot)
}

// Server is the process-wide configuration handed to the engine for every
// render. It is built once at startup and never mutated.
type Server struct {
	SourceRoot string
	CacheRoot  string
	BasePrefix string

	// Extra holds base engine options. They override the three fields
	// above when building engine options and are themselves overridden by
	// a preset's engine options.
	Extra map[string]any
}

// NewServer normalises the base prefix and fills in default directories.
// An empty cacheRoot becomes a "cache" directory inside sourceRoot.
func NewServer(extra map[string]any, basePrefix, sourceRoot, cacheRoot string) Server {
	if sourceRoot == "" {
		sourceRoot = DefaultSourceRoot
	}
	if cacheRoot == "" {
		cacheRoot = filepath.Join(sourceRoot, cacheDirName)
	}
	if extra == nil {
		extra = map[string]any{}
	}
	return Server{
		SourceRoot: sourceRoot,
		CacheRoot:  cacheRoot,
		BasePrefix: NormalizePrefix(basePrefix),
		Extra:      extra,
	}
}

// NormalizePrefix strips leading and trailing slashes and appends exactly
// one trailing slash: "/img//" becomes "img/". A prefix that is empty after
// trimming falls back to DefaultBasePrefix.
func NormalizePrefix(prefix string) string {
	p := strings.Trim(prefix, "/")
	if p == "" {
		return DefaultBasePrefix
	}
	return p + "/"
}
