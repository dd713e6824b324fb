package urlbuild

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-glide/internal/attachment"
	"github.com/ironsheep/image-glide/internal/pathres"
	"github.com/ironsheep/image-glide/internal/preset"
)

const uploads = "https://example.com/wp-content/uploads"

type inlineCall struct{ preset, file string }

type fakeInliner struct {
	calls []inlineCall
	out   string
	err   error
}

func (f *fakeInliner) Inline(_ context.Context, presetName, file string) (string, error) {
	f.calls = append(f.calls, inlineCall{presetName, file})
	return f.out, f.err
}

func newBuilder(t *testing.T, opts Options) *Builder {
	t.Helper()
	reg := preset.NewRegistry()
	require.NoError(t, reg.Register("thumbnail", map[string]any{"w": 150, "h": 150, "fit": "crop"}, nil))
	if opts.BasePrefix == "" {
		opts.BasePrefix = "img/"
	}
	if opts.UploadsURL == "" {
		opts.UploadsURL = uploads
	}
	b, err := New(reg, opts)
	require.NoError(t, err)
	return b
}

func TestURL(t *testing.T) {
	b := newBuilder(t, Options{SiteURL: "https://example.com/"})

	got := b.URL(uploads+"/2024/05/photo.jpg", "thumbnail")
	assert.Equal(t, "//example.com/img/thumbnail/2024/05/photo.jpg", got)

	// Outside the uploads base the URL is used as-is for the file part.
	got = b.URL("2024/cat.png", "thumbnail")
	assert.Equal(t, "//example.com/img/thumbnail/2024/cat.png", got)
}

func TestURL_SiteSubdirectory(t *testing.T) {
	b := newBuilder(t, Options{SiteURL: "http://example.com/blog", BasePrefix: "media/"})
	assert.Equal(t, "//example.com/blog/media/thumbnail/a.jpg", b.URL(uploads+"/a.jpg", "thumbnail"))
}

func TestURL_NoSite(t *testing.T) {
	b := newBuilder(t, Options{})
	assert.Equal(t, "/img/thumbnail/a.jpg", b.URL(uploads+"/a.jpg", "thumbnail"))
}

func TestURL_UnknownPresetIsIdentity(t *testing.T) {
	b := newBuilder(t, Options{SiteURL: "https://example.com"})
	for _, u := range []string{uploads + "/a.jpg", "", "not a url", "https://cdn.example.org/x.png"} {
		assert.Equal(t, u, b.URL(u, "thumb"))
	}
}

func TestURL_RoundTrip(t *testing.T) {
	b := newBuilder(t, Options{SiteURL: "https://example.com"})
	sources := []string{
		uploads + "/2024/05/photo.jpg",
		uploads + "/a.png",
		uploads + "/deep/ly/nested/dir/img.webp",
	}
	for _, src := range sources {
		built := b.URL(src, "thumbnail")
		req, err := pathres.ParseRequestPath(built, "img/")
		require.NoError(t, err, built)
		assert.Equal(t, "thumbnail", req.Preset)
		assert.Equal(t, pathres.ToSourceRelativePath(src, uploads), req.File)
	}
}

func TestBuild_Attachment(t *testing.T) {
	b := newBuilder(t, Options{
		SiteURL:     "https://example.com",
		Attachments: attachment.Static{42: uploads + "/2024/cat.jpg"},
	})
	ctx := context.Background()

	got, err := b.Build(ctx, AttachmentRef(42), "thumbnail")
	require.NoError(t, err)
	assert.Equal(t, "//example.com/img/thumbnail/2024/cat.jpg", got)

	got, err = b.Build(ctx, AttachmentRef(42), "unknown")
	require.NoError(t, err)
	assert.Equal(t, uploads+"/2024/cat.jpg", got, "resolved URL returned for unknown preset")

	_, err = b.Build(ctx, AttachmentRef(7), "thumbnail")
	assert.ErrorIs(t, err, attachment.ErrNotFound)

	noLookup := newBuilder(t, Options{})
	_, err = noLookup.Build(ctx, AttachmentRef(42), "thumbnail")
	assert.ErrorIs(t, err, attachment.ErrNotFound)
}

func TestBuildInline(t *testing.T) {
	ctx := context.Background()
	in := &fakeInliner{out: "data:image/jpeg;base64,AA=="}
	b := newBuilder(t, Options{
		Inliner:     in,
		Attachments: attachment.Static{1: uploads + "/2024/a.jpg"},
	})

	got, err := b.BuildInline(ctx, URLRef(uploads+"/2024/a.jpg"), "thumbnail")
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,AA==", got)
	require.Len(t, in.calls, 1)
	assert.Equal(t, inlineCall{"thumbnail", "2024/a.jpg"}, in.calls[0])

	got, err = b.BuildInline(ctx, AttachmentRef(1), "thumbnail")
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	got, err = b.BuildInline(ctx, URLRef(uploads+"/2024/a.jpg"), "thumb")
	require.NoError(t, err)
	assert.Empty(t, got, "unknown preset")

	got, err = b.BuildInline(ctx, AttachmentRef(99), "thumbnail")
	require.NoError(t, err)
	assert.Empty(t, got, "unknown attachment")
	assert.Len(t, in.calls, 2)
}

func TestBuildInline_Errors(t *testing.T) {
	boom := errors.New("render failed")
	b := newBuilder(t, Options{Inliner: &fakeInliner{err: boom}})
	_, err := b.BuildInline(context.Background(), URLRef(uploads+"/a.jpg"), "thumbnail")
	assert.ErrorIs(t, err, boom)

	b = newBuilder(t, Options{})
	_, err = b.BuildInline(context.Background(), URLRef(uploads+"/a.jpg"), "thumbnail")
	assert.Error(t, err)
}

func TestNew_InvalidSite(t *testing.T) {
	_, err := New(preset.NewRegistry(), Options{SiteURL: "/relative"})
	assert.Error(t, err)
	_, err = New(preset.NewRegistry(), Options{SiteURL: "http://[::1"})
	assert.Error(t, err)
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
	}{
		{"42", AttachmentRef(42)},
		{"0", URLRef("0")},
		{"-3", URLRef("-3")},
		{"+3", URLRef("+3")},
		{"https://example.com/a.jpg", URLRef("https://example.com/a.jpg")},
		{"2024/a.jpg", URLRef("2024/a.jpg")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRef(tt.in), tt.in)
	}
	assert.Equal(t, "attachment:42", AttachmentRef(42).String())
	assert.Equal(t, "a.jpg", URLRef("a.jpg").String())
}
