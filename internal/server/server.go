package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/image-preprocess-mcp/internal/apk"
	"github.com/ironsheep/image-preprocess-mcp/internal/iconcache"
	"github.com/ironsheep/image-preprocess-mcp/internal/logger"
	"github.com/ironsheep/image-preprocess-mcp/internal/preprocess"
)

// AppLister lists installed applications. *apk.DirRegistry implements it.
type AppLister interface {
	Apps(ctx context.Context) ([]apk.InstalledApp, error)
}

// IconCache is the administrative surface of the icon cache.
// *iconcache.Store implements it.
type IconCache interface {
	Evict(k iconcache.Key) error
	PurgeMemory()
	Len() int
	Dir() string
}

// Server handles MCP protocol communication
type Server struct {
	registry *preprocess.Registry
	apps     AppLister
	cache    IconCache
	log      logger.Logger
	version  string
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

// Config configures a Server.
type Config struct {
	Registry *preprocess.Registry
	Apps     AppLister // optional; enables apps_list
	Cache    IconCache // optional; enables the icon_cache tools
	Log      logger.Logger
	Version  string
}

// New creates a new MCP server instance. A nil Registry serves the
// built-in preprocessors without an icon cache or application registry.
func New(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.Registry == nil {
		cfg.Registry = preprocess.NewDefault(preprocess.Deps{Log: cfg.Log})
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Server{
		registry: cfg.Registry,
		apps:     cfg.Apps,
		cache:    cfg.Cache,
		log:      cfg.Log.With("component", "server"),
		version:  cfg.Version,
	}
}

// Run serves MCP on stdin and stdout until stdin closes or ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC requests from r and writes the
// responses to w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Inline base64 sources can be large
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("failed to parse request", "err", err)
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
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
				"name":    "image-preprocess-mcp",
				"version": s.version,
			},
		},
	}
}
