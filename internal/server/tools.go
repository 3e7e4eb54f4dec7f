package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Images
		{
			Name:        "image_info",
			Description: "Load an image file and return its dimensions, format, color depth and whether it has an alpha channel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_circle_mask",
			Description: "Make everything outside the ellipse inscribed in the image fully transparent. Writes the result to output (format from its extension) or, when output is omitted, returns it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"input": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to write. Overwritten if it exists. Omit to get the image inline.",
					},
					"antialias": map[string]interface{}{
						"type":        "boolean",
						"description": "Give edge pixels partial coverage",
						"default":     false,
					},
					"square": map[string]interface{}{
						"type":        "boolean",
						"description": "Center-crop to a square first so the mask is a true circle",
						"default":     false,
					},
					"feather": map[string]interface{}{
						"type":        "number",
						"description": "Blur radius for the mask edge in pixels (default 0)",
						"default":     0,
					},
					"background": map[string]interface{}{
						"type":        "string",
						"description": "Hex color to flatten onto, e.g. #FFFFFF. Required for JPEG output.",
					},
					"filter": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"lanczos", "catmullrom", "linear", "box", "nearest"},
						"description": "Resampling filter for the fit step (default lanczos)",
					},
				},
				"required": []string{"input"},
			},
		},

		// Files
		{
			Name:        "files_rename_sequence",
			Description: "Rename every file in a directory that ends with the extension to 1<ext>, 2<ext>, ... in lexicographic order of the original names. Other files and subdirectories are untouched.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the directory",
					},
					"ext": map[string]interface{}{
						"type":        "string",
						"description": "Case-sensitive extension to select (default .jpg)",
						"default":     ".jpg",
					},
					"start": map[string]interface{}{
						"type":        "integer",
						"description": "Number of the first file (default 1)",
						"default":     1,
					},
					"dry_run": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the plan without renaming",
						"default":     false,
					},
					"journal": map[string]interface{}{
						"type":        "string",
						"description": "Path of a YAML journal to write for files_rename_undo",
					},
				},
				"required": []string{"dir"},
			},
		},
		{
			Name:        "files_rename_undo",
			Description: "Reverse a rename batch recorded in a journal, after checking that no file content changed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"journal": map[string]interface{}{
						"type":        "string",
						"description": "Path of the journal written by files_rename_sequence",
					},
				},
				"required": []string{"journal"},
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
