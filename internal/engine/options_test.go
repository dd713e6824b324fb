package engine

import (
	"strings"
	"testing"

	"github.com/ironsheep/image-glide/internal/transform"
)

func TestOptionsConfig_Defaults(t *testing.T) {
	cfg, err := Options{"source": "/srv/uploads", "cache": "/srv/cache", "unknown": 1}.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if !cfg.GroupCacheInFolders {
		t.Error("group_cache_in_folders should default to true")
	}
	if cfg.CacheWithFileExtensions {
		t.Error("cache_with_file_extensions should default to false")
	}
	if cfg.Source != "/srv/uploads" || cfg.Cache != "/srv/cache" {
		t.Errorf("paths: got %q %q", cfg.Source, cfg.Cache)
	}
}

func TestOptionsConfig_Overrides(t *testing.T) {
	cfg, err := Options{
		"source":                     "/a",
		"cache":                      "/b",
		"base_url":                   "img/",
		"group_cache_in_folders":     false,
		"cache_with_file_extensions": true,
		"cache_path_prefix":          "thumbs",
		"max_image_size":             2000 * 2000,
	}.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if cfg.GroupCacheInFolders || !cfg.CacheWithFileExtensions {
		t.Errorf("booleans not applied: %+v", cfg)
	}
	if cfg.CachePathPrefix != "thumbs" || cfg.MaxImageSize != 4000000 || cfg.BaseURL != "img/" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestOptionsConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"missing source", Options{"cache": "/b"}, "source"},
		{"missing cache", Options{"source": "/a"}, "cache"},
		{"wrong type", Options{"source": "/a", "cache": "/b", "max_image_size": "big"}, "decode"},
		{"negative size", Options{"source": "/a", "cache": "/b", "max_image_size": -1}, "max_image_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.Config()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	p, err := transform.Parse(map[string]any{"w": 100, "fm": "png"})
	if err != nil {
		t.Fatal(err)
	}

	grouped := Config{GroupCacheInFolders: true}.CacheKey("2024/cat.jpg", p)
	if !strings.HasPrefix(grouped, "2024/cat.jpg/") {
		t.Errorf("grouped key: got %q", grouped)
	}

	flat := Config{}.CacheKey("2024/cat.jpg", p)
	if strings.Contains(flat, "/") || len(flat) != 16 {
		t.Errorf("flat key: got %q", flat)
	}

	withExt := Config{CacheWithFileExtensions: true, CachePathPrefix: "v1"}.CacheKey("cat.jpg", p)
	if !strings.HasPrefix(withExt, "v1/") || !strings.HasSuffix(withExt, ".png") {
		t.Errorf("prefixed key: got %q", withExt)
	}

	other, _ := transform.Parse(map[string]any{"w": 101, "fm": "png"})
	if (Config{}).CacheKey("2024/cat.jpg", other) == flat {
		t.Error("different params must not share a key")
	}
	if (Config{}).CacheKey("2024/cat.jpg", p) != flat {
		t.Error("identical params must share a key")
	}
	if (Config{Source: "/srv/other"}).CacheKey("2024/cat.jpg", p) == flat {
		t.Error("different source roots must not share a key")
	}
	if (Config{MaxImageSize: 100}).CacheKey("2024/cat.jpg", p) == flat {
		t.Error("different area limits must not share a key")
	}
}
