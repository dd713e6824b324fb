package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/image-glide/internal/attachment"
	"github.com/ironsheep/image-glide/internal/config"
	"github.com/ironsheep/image-glide/internal/emit"
	"github.com/ironsheep/image-glide/internal/engine"
	"github.com/ironsheep/image-glide/internal/pipeline"
	"github.com/ironsheep/image-glide/internal/preset"
	"github.com/ironsheep/image-glide/internal/urlbuild"
)

const testUploads = "https://example.com/wp-content/uploads"

// createTestImageFile writes a solid-colour PNG at path.
func createTestImageFile(t *testing.T, path string, width, height int, c color.Color) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
}

type fixture struct {
	root    string
	presets *preset.Registry
	emitter *emit.Emitter
	server  *Server
}

// newFixture wires a real pipeline over a temp source root containing
// 2024/a.png (32x16) and registers the thumbnail and wide presets.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	createTestImageFile(t, filepath.Join(root, "2024", "a.png"), 32, 16, color.RGBA{255, 0, 0, 255})

	reg := preset.NewRegistry()
	if err := reg.Register("thumbnail", map[string]any{"w": 8, "h": 8, "fit": "crop", "fm": "png"}, nil); err != nil {
		t.Fatalf("register thumbnail: %v", err)
	}
	if err := reg.Register("wide", map[string]any{"w": 16}, map[string]any{"cache_with_file_extensions": true}); err != nil {
		t.Fatalf("register wide: %v", err)
	}

	p := pipeline.New(reg, config.NewServer(nil, "img/", root, ""), engine.NewRenderer(zerolog.Nop()))
	em := emit.New(p, zerolog.Nop())
	urls, err := urlbuild.New(reg, urlbuild.Options{
		BasePrefix:  "img/",
		SiteURL:     "https://example.com",
		UploadsURL:  testUploads,
		Attachments: attachment.Static{5: testUploads + "/2024/a.png"},
		Inliner:     em,
	})
	if err != nil {
		t.Fatalf("url builder: %v", err)
	}

	return &fixture{
		root:    root,
		presets: reg,
		emitter: em,
		server: New(Options{
			Presets:    reg,
			URLs:       urls,
			SourceRoot: root,
			Version:    "1.2.3",
			Logger:     zerolog.Nop(),
		}),
	}
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	params := map[string]interface{}{"name": name, "arguments": args}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeToolResult unpacks the JSON text of a successful tools/call response.
func decodeToolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	text, ok := content[0]["text"].(string)
	if !ok {
		t.Fatal("content text should be a string")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("decode tool result: %v", err)
	}
}
