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
			Name: "image_detect_spots",
			Description: "Detect dark spots on an image. Returns the percentage of the image covered by spots, " +
				"the spot count, each spot's area and bounding box [x, y, width, height], a severity message, " +
				"and the path of an annotated JPEG with every spot boxed and numbered.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"min_area_ratio": map[string]interface{}{
						"type":             "number",
						"description":      "Minimum spot area as a fraction of the image area, below 1. Default is the server setting (0.0005 unless configured).",
						"minimum":          0,
						"exclusiveMaximum": 1,
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
