package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func uriProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Image source identifier, e.g. /sdcard/app.apk, app.icon://com.example.app or data:image/png;base64,...",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "source_classify",
			Description: "Classify an image source identifier by scheme and return the scheme-specific content.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"uri": uriProperty(),
				},
				"required": []string{"uri"},
			},
		},
		{
			Name:        "source_match",
			Description: "Report whether a registered preprocessor handles the source, and which one. Does not perform any I/O.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"uri": uriProperty(),
				},
				"required": []string{"uri"},
			},
		},
		{
			Name:        "source_resolve",
			Description: "Preprocess an image source into a locally readable resource: extract a package archive icon, look up an installed application's icon or decode an inline base64 image. Sources no preprocessor handles are reported with status no_match.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"uri": uriProperty(),
					"disable_disk_cache": map[string]interface{}{
						"type":        "boolean",
						"description": "Keep extracted icons in memory only. Default false",
						"default":     false,
					},
					"icon_max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum icon edge in pixels. 0 uses the configured size",
						"default":     0,
					},
					"include_data": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the resource bytes as base64 in the data field. Default false",
						"default":     false,
					},
				},
				"required": []string{"uri"},
			},
		},
		{
			Name:        "source_info",
			Description: "Resolve an image source and describe the resulting image: dimensions, format, alpha, average and dominant colors. Plain local image files are described directly.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"uri": uriProperty(),
					"colors": map[string]interface{}{
						"type":        "integer",
						"description": "Number of dominant colors to return; 0 returns all. Default 5",
						"default":     5,
					},
				},
				"required": []string{"uri"},
			},
		},
		{
			Name:        "source_preprocessors",
			Description: "List the registered preprocessors in dispatch order.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "apps_list",
			Description: "List the installed applications known to the application registry, with the launcher icon entry of each archive. Each app's icon resolves through app.icon://<package>.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "icon_cache_evict",
			Description: "Remove every cached size of one application version's icon from memory and disk. The next request extracts it again.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"package": map[string]interface{}{
						"type":        "string",
						"description": "Application package name, e.g. com.example.app",
					},
					"version": map[string]interface{}{
						"type":        "integer",
						"description": "Application version code",
					},
				},
				"required": []string{"package", "version"},
			},
		},
		{
			Name:        "icon_cache_purge",
			Description: "Drop all icons held in memory. Disk artifacts are kept and reloaded on demand.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
