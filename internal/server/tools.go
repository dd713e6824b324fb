package server

// Tool represents a tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func imageRefProperties() map[string]interface{} {
	return map[string]interface{}{
		"source": map[string]interface{}{
			"type":        "string",
			"description": "Upload URL of the source image (e.g. https://example.com/wp-content/uploads/2024/05/photo.jpg)",
		},
		"attachment_id": map[string]interface{}{
			"type":        "integer",
			"description": "Attachment id to resolve instead of a URL",
		},
		"preset": map[string]interface{}{
			"type":        "string",
			"description": "Registered preset name (e.g. thumbnail)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// URL generation
		{
			Name:        "image_url",
			Description: "Build the protocol-relative URL that serves a source image through a preset. Unknown presets return the source URL unchanged with fallback=true.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageRefProperties(),
				"required":   []string{"preset"},
			},
		},
		{
			Name:        "image_base64",
			Description: "Render a source image through a preset and return it as a base64 data URI. Returns an empty data_uri when the preset or the file does not exist.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageRefProperties(),
				"required":   []string{"preset"},
			},
		},

		// Presets
		{
			Name:        "preset_list",
			Description: "List all registered presets with their transform options and engine overrides.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "preset_get",
			Description: "Get a single preset by name. Fails if the preset is not registered.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Preset name",
					},
				},
				"required": []string{"name"},
			},
		},

		// Sources
		{
			Name:        "image_source_info",
			Description: "Get dimensions, format and size of a file under the source root.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file": map[string]interface{}{
						"type":        "string",
						"description": "Path relative to the source root (e.g. 2024/05/photo.jpg)",
					},
				},
				"required": []string{"file"},
			},
		},
		{
			Name:        "image_palette",
			Description: "Get the dominant colours of a source file, most frequent first. The first colour works as a placeholder background while the image loads.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file": map[string]interface{}{
						"type":        "string",
						"description": "Path relative to the source root",
					},
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of colours to return. Default 5",
						"default":     5,
					},
				},
				"required": []string{"file"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
