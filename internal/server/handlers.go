package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/image-glide/internal/engine"
	"github.com/ironsheep/image-glide/internal/preset"
	"github.com/ironsheep/image-glide/internal/urlbuild"
)

// ToolCallParams represents the parameters for a tools/call request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_url", "preset_get").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in the content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// URL generation
	case "image_url":
		return s.handleImageURL(ctx, args)
	case "image_base64":
		return s.handleImageBase64(ctx, args)

	// Presets
	case "preset_list":
		return s.handlePresetList()
	case "preset_get":
		return s.handlePresetGet(args)

	// Sources
	case "image_source_info":
		return s.handleImageSourceInfo(args)
	case "image_palette":
		return s.handleImagePalette(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === URL Generation Handlers ===

type imageArgs struct {
	Source       string `json:"source"`
	AttachmentID int64  `json:"attachment_id"`
	Preset       string `json:"preset"`
}

func (a imageArgs) ref() (urlbuild.Ref, error) {
	switch {
	case a.Source != "" && a.AttachmentID != 0:
		return urlbuild.Ref{}, errors.New("source and attachment_id are mutually exclusive")
	case a.AttachmentID > 0:
		return urlbuild.AttachmentRef(a.AttachmentID), nil
	case a.AttachmentID < 0:
		return urlbuild.Ref{}, fmt.Errorf("invalid attachment_id %d", a.AttachmentID)
	case a.Source != "":
		return urlbuild.URLRef(a.Source), nil
	}
	return urlbuild.Ref{}, errors.New("source or attachment_id is required")
}

func parseImageArgs(args json.RawMessage) (imageArgs, urlbuild.Ref, error) {
	var a imageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return a, urlbuild.Ref{}, err
	}
	if a.Preset == "" {
		return a, urlbuild.Ref{}, errors.New("preset is required")
	}
	ref, err := a.ref()
	return a, ref, err
}

// ImageURLResult is returned by image_url.
type ImageURLResult struct {
	URL string `json:"url"`

	// Fallback is true when the preset is unknown and URL is the source.
	Fallback bool `json:"fallback"`
}

func (s *Server) handleImageURL(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a, ref, err := parseImageArgs(args)
	if err != nil {
		return nil, err
	}
	u, err := s.urls.Build(ctx, ref, a.Preset)
	if err != nil {
		return nil, err
	}
	return ImageURLResult{URL: u, Fallback: !s.presets.Exists(a.Preset)}, nil
}

// ImageBase64Result is returned by image_base64.
type ImageBase64Result struct {
	DataURI string `json:"data_uri"`
	Found   bool   `json:"found"`
}

func (s *Server) handleImageBase64(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a, ref, err := parseImageArgs(args)
	if err != nil {
		return nil, err
	}
	uri, err := s.urls.BuildInline(ctx, ref, a.Preset)
	if err != nil {
		return nil, err
	}
	return ImageBase64Result{DataURI: uri, Found: uri != ""}, nil
}

// === Preset Handlers ===

// PresetInfo describes a registered preset.
type PresetInfo struct {
	Name      string         `json:"name"`
	Transform map[string]any `json:"transform"`
	Engine    map[string]any `json:"engine,omitempty"`
	Canonical string         `json:"canonical"`
}

func presetInfo(p preset.Preset) PresetInfo {
	return PresetInfo{
		Name:      p.Name,
		Transform: p.Transform,
		Engine:    p.EngineOverride,
		Canonical: p.Params.Canonical(),
	}
}

func (s *Server) handlePresetList() (interface{}, error) {
	names := s.presets.Names()
	out := make([]PresetInfo, 0, len(names))
	for _, name := range names {
		p, err := s.presets.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, presetInfo(p))
	}
	return map[string]interface{}{"presets": out}, nil
}

type presetGetArgs struct {
	Name string `json:"name"`
}

func (s *Server) handlePresetGet(args json.RawMessage) (interface{}, error) {
	var a presetGetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, err := s.presets.Get(a.Name)
	if err != nil {
		return nil, err
	}
	return presetInfo(p), nil
}

// === Source Handlers ===

type imageSourceInfoArgs struct {
	File string `json:"file"`
}

func (s *Server) handleImageSourceInfo(args json.RawMessage) (interface{}, error) {
	var a imageSourceInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.File == "" {
		return nil, errors.New("file is required")
	}
	return engine.Inspect(s.sourceRoot, a.File)
}

type imagePaletteArgs struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

func (s *Server) handleImagePalette(args json.RawMessage) (interface{}, error) {
	var a imagePaletteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.File == "" {
		return nil, errors.New("file is required")
	}
	if a.Count == 0 {
		a.Count = 5
	}
	return engine.SourcePalette(s.sourceRoot, a.File, a.Count)
}
