// Package pathres maps between public request paths and source-relative
// file paths.
//
// Inbound paths have the shape <prefix><preset>/<file...>, for example
// "img/thumbnail/2024/05/photo.jpg". The preset name never contains a slash;
// the file part may be nested arbitrarily deep.
package pathres

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPath means the path is not an image request. Routing layers
// treat it as "not ours" and let the request fall through.
var ErrMalformedPath = errors.New("malformed image path")

// Request is the (preset, file) pair extracted from a request path.
type Request struct {
	Preset string
	File   string
}

// ParseRequestPath splits rawPath into a preset name and a source-relative
// path. Everything up to and including the first occurrence of basePrefix
// is discarded along with one leading slash; the rest is split at its first
// slash. Query strings and fragments are ignored.
func ParseRequestPath(rawPath, basePrefix string) (Request, error) {
	path := rawPath
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	if basePrefix == "" {
		return Request{}, fmt.Errorf("%w: empty base prefix", ErrMalformedPath)
	}
	idx := strings.Index(path, basePrefix)
	if idx < 0 {
		return Request{}, fmt.Errorf("%w: %q lacks prefix %q", ErrMalformedPath, rawPath, basePrefix)
	}
	rest := strings.TrimPrefix(path[idx+len(basePrefix):], "/")

	preset, file, ok := strings.Cut(rest, "/")
	if !ok {
		return Request{}, fmt.Errorf("%w: %q has no source path", ErrMalformedPath, rawPath)
	}
	return Request{Preset: preset, File: file}, nil
}

// ToSourceRelativePath strips uploadsBaseURL and any leading slash from a
// source URL. URLs outside the uploads base are returned unchanged.
func ToSourceRelativePath(sourceURL, uploadsBaseURL string) string {
	if uploadsBaseURL == "" || !strings.Contains(sourceURL, uploadsBaseURL) {
		return sourceURL
	}
	rel := strings.Replace(sourceURL, uploadsBaseURL, "", 1)
	return strings.TrimLeft(rel, "/")
}
