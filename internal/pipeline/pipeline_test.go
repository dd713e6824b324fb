package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-glide/internal/config"
	"github.com/ironsheep/image-glide/internal/engine"
	"github.com/ironsheep/image-glide/internal/pathres"
	"github.com/ironsheep/image-glide/internal/preset"
	"github.com/ironsheep/image-glide/internal/transform"
)

type renderCall struct {
	opts engine.Options
	name string
	p    transform.Params
}

type fakeRenderer struct {
	calls []renderCall
	art   *engine.Artifact
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, opts engine.Options, name string, p transform.Params) (*engine.Artifact, error) {
	f.calls = append(f.calls, renderCall{opts, name, p})
	return f.art, f.err
}

func touch(t *testing.T, root, name string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func newTestPipeline(t *testing.T, r Renderer) (*Pipeline, string) {
	t.Helper()
	root := t.TempDir()
	reg := preset.NewRegistry()
	require.NoError(t, reg.Register("small", map[string]any{"fm": "", "q": "", "w": 320}, map[string]any{"cache": "/override/cache"}))
	require.NoError(t, reg.Register("plain", nil, nil))
	srv := config.NewServer(map[string]any{"max_image_size": 1000, "base_url": "custom/"}, "img/", root, "")
	return New(reg, srv, r), root
}

func TestResolvePath_Scenario(t *testing.T) {
	p, root := newTestPipeline(t, &fakeRenderer{})
	touch(t, root, "2024/cat.png")

	res, err := p.ResolvePath("img/small/2024/cat.png")
	require.NoError(t, err)

	assert.Equal(t, "2024/cat.png", res.File)
	assert.Equal(t, filepath.Join(root, "2024", "cat.png"), res.SourcePath)
	assert.Equal(t, "small", res.Preset.Name)
	assert.Equal(t, "pjpg", res.Preset.Transform["fm"])
	assert.Equal(t, 75, res.Preset.Transform["q"])
	assert.Equal(t, 320, res.Preset.Transform["w"])
}

func TestResolve_MergesEngineOptions(t *testing.T) {
	p, root := newTestPipeline(t, &fakeRenderer{})
	touch(t, root, "a.jpg")

	res, err := p.Resolve("small", "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, root, res.Options["source"])
	assert.Equal(t, "/override/cache", res.Options["cache"], "preset override wins")
	assert.Equal(t, "custom/", res.Options["base_url"], "base options override server fields")
	assert.Equal(t, 1000, res.Options["max_image_size"])

	res, err = p.Resolve("plain", "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "cache"), res.Options["cache"])
}

func TestResolve_NotFound(t *testing.T) {
	p, root := newTestPipeline(t, &fakeRenderer{})
	touch(t, root, "a.jpg")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))

	tests := []struct {
		name   string
		preset string
		file   string
	}{
		{"unknown preset", "thumb", "a.jpg"},
		{"missing file", "small", "b.jpg"},
		{"directory", "small", "dir"},
		{"empty file", "small", ""},
		{"escaping path", "small", "../a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Resolve(tt.preset, tt.file)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}

	_, err := p.Resolve("thumb", "a.jpg")
	assert.ErrorIs(t, err, preset.ErrNotFound)
}

func TestResolvePath_Malformed(t *testing.T) {
	p, _ := newTestPipeline(t, &fakeRenderer{})
	_, err := p.ResolvePath("/uploads/a.jpg")
	require.ErrorIs(t, err, pathres.ErrMalformedPath)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestProduce_PassesRelativeName(t *testing.T) {
	r := &fakeRenderer{art: &engine.Artifact{Data: []byte("img"), ContentType: "image/jpeg"}}
	p, root := newTestPipeline(t, r)
	touch(t, root, "2024/cat.png")

	res, err := p.ResolvePath("/img/small/2024/cat.png")
	require.NoError(t, err)
	art, err := p.Produce(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), art.Data)

	require.Len(t, r.calls, 1)
	assert.Equal(t, "2024/cat.png", r.calls[0].name)
	assert.Equal(t, transform.FormatProgressiveJPEG, r.calls[0].p.Format)
	assert.Equal(t, 75, r.calls[0].p.Quality)
	assert.Equal(t, 320, r.calls[0].p.Width)
}

func TestProduce_Errors(t *testing.T) {
	p, root := newTestPipeline(t, nil)
	touch(t, root, "a.jpg")
	res, err := p.Resolve("small", "a.jpg")
	require.NoError(t, err)

	t.Run("engine failure", func(t *testing.T) {
		cause := errors.New("corrupt source")
		p.engine = &fakeRenderer{err: cause}
		_, err := p.Produce(context.Background(), res)

		var engErr *EngineError
		require.ErrorAs(t, err, &engErr)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("source vanished", func(t *testing.T) {
		p.engine = &fakeRenderer{err: &engine.Error{Op: "load", Err: engine.ErrSourceNotFound}}
		_, err := p.Produce(context.Background(), res)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("canceled", func(t *testing.T) {
		p.engine = &fakeRenderer{err: context.Canceled}
		_, err := p.Produce(context.Background(), res)
		assert.ErrorIs(t, err, context.Canceled)
		var engErr *EngineError
		assert.False(t, errors.As(err, &engErr))
	})
}

func TestProduceInline(t *testing.T) {
	r := &fakeRenderer{art: &engine.Artifact{Data: []byte("abc"), ContentType: "image/png"}}
	p, root := newTestPipeline(t, r)
	touch(t, root, "a.png")

	res, err := p.Resolve("plain", "a.png")
	require.NoError(t, err)
	uri, err := p.ProduceInline(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,YWJj", uri)
}

func TestPipeline_WithRealEngine(t *testing.T) {
	root := t.TempDir()
	reg := preset.NewRegistry()
	require.NoError(t, reg.Register("thumb", map[string]any{"w": 8, "fm": "png"}, nil))
	p := New(reg, config.NewServer(nil, "img/", root, ""), engine.NewRenderer(zerolog.Nop()))

	writePNG(t, filepath.Join(root, "a.png"), 16, 16)

	res, err := p.ResolvePath("/img/thumb/a.png")
	require.NoError(t, err)
	art, err := p.Produce(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, "image/png", art.ContentType)
	assert.FileExists(t, art.CachePath)
	assert.Contains(t, art.CachePath, filepath.Join(root, "cache"))
}
