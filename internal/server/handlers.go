package server

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ironsheep/spot-analyzer/internal/spots"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke.
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Error().Err(err).Str("tool", params.Name).Msg("tool execution failed")
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_detect_spots":
		return s.handleImageDetectSpots(args)
	default:
		return nil, errors.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type imageDetectSpotsArgs struct {
	Path         string   `json:"path"`
	MinAreaRatio *float64 `json:"min_area_ratio,omitempty"`
}

// DetectSpotsResult is the image_detect_spots tool result.
type DetectSpotsResult struct {
	spots.Metrics
	AnnotatedImage string `json:"annotated_image"`
	AnnotatedPath  string `json:"annotated_path"`
}

func (s *Server) handleImageDetectSpots(args json.RawMessage) (interface{}, error) {
	var a imageDetectSpotsArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, errors.Wrap(err, "invalid arguments")
		}
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	detector := s.detector
	if a.MinAreaRatio != nil {
		d, err := s.detector.WithMinAreaRatio(*a.MinAreaRatio)
		if err != nil {
			return nil, err
		}
		detector = d
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyze(detector, img)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("path", a.Path).
		Int("spots", analysis.Metrics.Count).
		Float64("coverage", analysis.Metrics.Coverage).
		Str("annotated", analysis.AnnotatedImage).
		Msg("spots detected")

	return &DetectSpotsResult{
		Metrics:        analysis.Metrics,
		AnnotatedImage: analysis.AnnotatedImage,
		AnnotatedPath:  s.store.Path(analysis.AnnotatedImage),
	}, nil
}
