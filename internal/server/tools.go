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
		{
			Name:        "qr_generate",
			Description: "Generate a QR code for the given text with a logo pasted over its centre. The result is decoded again before it is returned; if the logo makes the code unreadable the call reports accepted=false and returns no image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"content": map[string]interface{}{
						"type":        "string",
						"description": "Text to encode",
					},
					"logo_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the logo image. Defaults to the configured logo",
					},
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas side length in pixels",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Output format: png, jpg, gif, bmp or tiff",
						"enum":        []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff"},
					},
					"caption": map[string]interface{}{
						"type":        "string",
						"description": "Caption drawn below the code. Defaults to none, or to the content when show_caption is configured",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Write the accepted image here instead of returning it inline",
					},
				},
				"required": []string{"content"},
			},
		},
		{
			Name:        "qr_decode",
			Description: "Decode the QR code in an image file and return its text.",
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
			Name:        "logo_info",
			Description: "Report a logo's dimensions and format, and the size it would be placed at on a canvas of the given size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the logo image",
					},
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas side length in pixels",
					},
				},
				"required": []string{"path"},
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
