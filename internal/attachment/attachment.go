// Package attachment maps CMS attachment ids to their original upload URLs.
package attachment

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned for ids no resolver knows about.
var ErrNotFound = errors.New("attachment not found")

// Resolver looks up the original URL of an attachment.
type Resolver interface {
	AttachmentURL(ctx context.Context, id int64) (string, error)
}

// Static resolves ids from a fixed map, typically loaded from config.
type Static map[int64]string

// AttachmentURL returns the mapped URL; missing or empty entries are ErrNotFound.
func (s Static) AttachmentURL(_ context.Context, id int64) (string, error) {
	if u, ok := s[id]; ok && u != "" {
		return u, nil
	}
	return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// Chain tries each resolver in order and returns the first hit. Errors other
// than ErrNotFound stop the search.
type Chain []Resolver

// AttachmentURL asks each resolver in turn, skipping nil entries.
func (c Chain) AttachmentURL(ctx context.Context, id int64) (string, error) {
	for _, r := range c {
		if r == nil {
			continue
		}
		u, err := r.AttachmentURL(ctx, id)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
}
