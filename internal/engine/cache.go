package engine

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/ironsheep/image-glide/internal/transform"
)

// CacheKey returns the cache-relative path of the artifact for name
// rendered with p. The file component is the xxHash64 of the source root,
// the source name, the canonical parameters and the area limit, so
// identical requests always share a key.
func (c Config) CacheKey(name string, p transform.Params) string {
	sum := xxhash.Sum64String(fmt.Sprintf("%s\x00%s?%s\x00%d", c.Source, name, p.Canonical(), c.MaxImageSize))
	file := fmt.Sprintf("%016x", sum)
	if c.CacheWithFileExtensions {
		file += "." + p.Extension()
	}

	key := file
	if c.GroupCacheInFolders {
		key = path.Join(name, file)
	}
	if c.CachePathPrefix != "" {
		key = path.Join(c.CachePathPrefix, key)
	}
	return key
}

// writeAtomic writes data to a temporary file beside dest and renames it
// into place. Concurrent writers of the same key each produce a complete
// file and the last rename wins.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename into cache: %w", err)
	}
	return nil
}
