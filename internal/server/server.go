package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ironsheep/spot-analyzer/internal/config"
	"github.com/ironsheep/spot-analyzer/internal/imaging"
	"github.com/ironsheep/spot-analyzer/internal/spots"
)

const (
	serverName    = "spot-analyzer"
	serverVersion = "1.0"
)

// Server exposes the spot detector over HTTP and over MCP stdio.
type Server struct {
	detector *spots.Detector
	store    *imaging.AnnotationStore
	cache    *imaging.ImageCache
	cfg      config.Config
	log      zerolog.Logger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server around a configured detector and output store.
func New(detector *spots.Detector, store *imaging.AnnotationStore, cfg config.Config, log zerolog.Logger) *Server {
	return &Server{
		detector: detector,
		store:    store,
		cache:    imaging.NewImageCache(),
		cfg:      cfg,
		log:      log.With().Str("component", "server").Logger(),
	}
}

// Analysis is the outcome of one detector run whose annotated image has
// been written to the store.
type Analysis struct {
	Metrics        spots.Metrics
	AnnotatedImage string
}

// analyze runs d on img and persists the annotated copy.
func (s *Server) analyze(d *spots.Detector, img image.Image) (*Analysis, error) {
	result, err := d.Analyze(img)
	if err != nil {
		return nil, errors.Wrap(err, "analysis failed")
	}

	name, err := s.store.Save(result.Annotated)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		Metrics:        result.Metrics,
		AnnotatedImage: name,
	}, nil
}

// ServeMCP reads JSON-RPC requests from in, one per line, and writes
// responses to out until in is exhausted.
func (s *Server) ServeMCP(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn().Err(err).Msg("failed to parse request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error().Err(err).Msg("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scanner error")
	}
	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, -32601, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": serverVersion,
			},
		},
	}
}

// errorResponse creates a JSON-RPC error response. Empty data is omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}
