// Package urlbuild generates public image URLs and inline data URIs for
// application code.
//
// An unknown preset is not an error here: Build returns the source URL
// unchanged and BuildInline returns "". Serving the same request over HTTP
// would answer 404.
package urlbuild

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ironsheep/image-glide/internal/attachment"
	"github.com/ironsheep/image-glide/internal/pathres"
	"github.com/ironsheep/image-glide/internal/preset"
)

// Ref identifies a source image either by URL or by attachment id.
type Ref struct {
	URL string
	ID  int64
}

// URLRef refers to a source by its upload URL.
func URLRef(u string) Ref { return Ref{URL: u} }

// AttachmentRef refers to a source by attachment id.
func AttachmentRef(id int64) Ref { return Ref{ID: id} }

// ParseRef treats a string of decimal digits as an attachment id and
// anything else as a URL.
func ParseRef(s string) Ref {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > 0 && !strings.HasPrefix(s, "+") {
		return AttachmentRef(id)
	}
	return URLRef(s)
}

// IsAttachment reports whether r names an attachment id.
func (r Ref) IsAttachment() bool { return r.URL == "" && r.ID > 0 }

func (r Ref) String() string {
	if r.IsAttachment() {
		return "attachment:" + strconv.FormatInt(r.ID, 10)
	}
	return r.URL
}

// Inliner renders a preset/file pair as a data URI, returning "" when the
// preset or file is missing.
type Inliner interface {
	Inline(ctx context.Context, presetName, file string) (string, error)
}

// Options configures a Builder.
type Options struct {
	// BasePrefix is the normalized public prefix, e.g. "img/".
	BasePrefix string
	// SiteURL is the public site root generated URLs are made absolute
	// against. When empty, Build returns root-relative paths.
	SiteURL string
	// UploadsURL is stripped from source URLs to get source-relative paths.
	UploadsURL string

	Attachments attachment.Resolver
	Inliner     Inliner
}

// Builder produces URLs that the HTTP layer will later resolve.
type Builder struct {
	presets *preset.Registry
	opts    Options
	site    string
	scheme  string
}

// New returns a Builder. opts.SiteURL, if set, must be an absolute URL.
func New(presets *preset.Registry, opts Options) (*Builder, error) {
	b := &Builder{presets: presets, opts: opts}
	if opts.SiteURL != "" {
		u, err := url.Parse(opts.SiteURL)
		if err != nil {
			return nil, fmt.Errorf("site url: %w", err)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("site url %q has no host", opts.SiteURL)
		}
		b.site = strings.TrimRight(opts.SiteURL, "/")
		b.scheme = u.Scheme
	}
	return b, nil
}

// URL returns the protocol-relative URL serving sourceURL through
// presetName, or sourceURL itself when the preset is unknown.
func (b *Builder) URL(sourceURL, presetName string) string {
	if !b.presets.Exists(presetName) {
		return sourceURL
	}
	rel := b.opts.BasePrefix + presetName + "/" + pathres.ToSourceRelativePath(sourceURL, b.opts.UploadsURL)
	if b.site == "" {
		return "/" + strings.TrimLeft(rel, "/")
	}
	abs := b.site + "/" + strings.TrimLeft(rel, "/")
	if b.scheme != "" {
		abs = strings.TrimPrefix(abs, b.scheme+":")
	}
	return abs
}

// Build resolves ref and returns its URL for presetName. Only attachment
// lookups can fail.
func (b *Builder) Build(ctx context.Context, ref Ref, presetName string) (string, error) {
	src, err := b.source(ctx, ref)
	if err != nil {
		return "", err
	}
	return b.URL(src, presetName), nil
}

// BuildInline renders ref through presetName as a data URI. Unknown
// presets, unknown attachments and missing files all yield "".
func (b *Builder) BuildInline(ctx context.Context, ref Ref, presetName string) (string, error) {
	if b.opts.Inliner == nil {
		return "", errors.New("inline rendering not configured")
	}
	src, err := b.source(ctx, ref)
	if errors.Is(err, attachment.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !b.presets.Exists(presetName) {
		return "", nil
	}
	return b.opts.Inliner.Inline(ctx, presetName, pathres.ToSourceRelativePath(src, b.opts.UploadsURL))
}

func (b *Builder) source(ctx context.Context, ref Ref) (string, error) {
	if !ref.IsAttachment() {
		return ref.URL, nil
	}
	if b.opts.Attachments == nil {
		return "", fmt.Errorf("%w: id %d", attachment.ErrNotFound, ref.ID)
	}
	return b.opts.Attachments.AttachmentURL(ctx, ref.ID)
}
