package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/image-preprocess-mcp/internal/apk"
	"github.com/ironsheep/image-preprocess-mcp/internal/iconcache"
	"github.com/ironsheep/image-preprocess-mcp/internal/imaging"
	"github.com/ironsheep/image-preprocess-mcp/internal/preprocess"
	"github.com/ironsheep/image-preprocess-mcp/internal/source"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "source_resolve").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Debug("tool failed", "tool", params.Name, "err", err)
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
	switch name {
	case "source_classify":
		return s.handleSourceClassify(args)
	case "source_match":
		return s.handleSourceMatch(args)
	case "source_resolve":
		return s.handleSourceResolve(ctx, args)
	case "source_info":
		return s.handleSourceInfo(ctx, args)
	case "source_preprocessors":
		return s.handleSourcePreprocessors()
	case "apps_list":
		return s.handleAppsList(ctx)
	case "icon_cache_evict":
		return s.handleIconCacheEvict(args)
	case "icon_cache_purge":
		return s.handleIconCachePurge()
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

// unmarshalArgs decodes tool arguments and checks the uri argument.
func unmarshalArgs(args json.RawMessage, v interface{ uri() string }) error {
	if len(args) > 0 {
		if err := json.Unmarshal(args, v); err != nil {
			return err
		}
	}
	if v.uri() == "" {
		return errors.New("uri is required")
	}
	return nil
}

type uriArgs struct {
	URI string `json:"uri"`
}

func (a *uriArgs) uri() string { return a.URI }

// === Classification Handlers ===

type classifyResult struct {
	URI     string `json:"uri"`
	Scheme  string `json:"scheme"`
	Content string `json:"content"`
}

func (s *Server) handleSourceClassify(args json.RawMessage) (interface{}, error) {
	var a uriArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	src := source.New(a.URI, nil)
	return classifyResult{URI: src.URI, Scheme: src.Scheme.String(), Content: src.Content}, nil
}

type matchResult struct {
	URI          string `json:"uri"`
	Scheme       string `json:"scheme"`
	Matched      bool   `json:"matched"`
	Preprocessor string `json:"preprocessor,omitempty"`
}

func (s *Server) handleSourceMatch(args json.RawMessage) (interface{}, error) {
	var a uriArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	src := source.New(a.URI, nil)
	r := matchResult{URI: src.URI, Scheme: src.Scheme.String()}
	if p, ok := s.registry.Lookup(src); ok {
		r.Matched = true
		r.Preprocessor = p.Key()
	}
	return r, nil
}

func (s *Server) handleSourcePreprocessors() (interface{}, error) {
	return map[string]interface{}{
		"preprocessors": s.registry.Keys(),
	}, nil
}

// === Resolution Handlers ===

type resolveArgs struct {
	URI              string `json:"uri"`
	DisableDiskCache bool   `json:"disable_disk_cache"`
	IconMaxSize      int    `json:"icon_max_size"`
	IncludeData      bool   `json:"include_data"`
}

func (a *resolveArgs) uri() string { return a.URI }

// resolveResult reports a resolution. Status is "resolved" or "no_match".
type resolveResult struct {
	URI    string `json:"uri"`
	Scheme string `json:"scheme"`
	Status string `json:"status"`

	*preprocess.Result
	Size int64  `json:"size,omitempty"`
	Data string `json:"data,omitempty"`
}

func (s *Server) handleSourceResolve(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a resolveArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.IconMaxSize < 0 {
		return nil, fmt.Errorf("icon_max_size must not be negative, got %d", a.IconMaxSize)
	}

	src := source.New(a.URI, &source.LoadOptions{
		DisableDiskCache: a.DisableDiskCache,
		IconMaxSize:      a.IconMaxSize,
	})
	out := resolveResult{URI: src.URI, Scheme: src.Scheme.String()}

	res, err := s.registry.Resolve(ctx, src)
	if errors.Is(err, preprocess.ErrNoMatch) {
		out.Status = "no_match"
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	out.Status = "resolved"
	out.Result = res
	out.Size = res.Size()
	if a.IncludeData {
		data, err := readResult(res)
		if err != nil {
			return nil, err
		}
		out.Data = base64.StdEncoding.EncodeToString(data)
	}
	return out, nil
}

type infoArgs struct {
	URI    string `json:"uri"`
	Colors int    `json:"colors"`
}

func (a *infoArgs) uri() string { return a.URI }

type infoResult struct {
	URI          string `json:"uri"`
	Scheme       string `json:"scheme"`
	Preprocessor string `json:"preprocessor,omitempty"`
	*imaging.ImageInfo
	DominantColors []imaging.ColorFrequency `json:"dominant_colors"`
}

func (s *Server) handleSourceInfo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a := infoArgs{Colors: 5}
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Colors < 0 {
		return nil, fmt.Errorf("colors must not be negative, got %d", a.Colors)
	}

	src := source.New(a.URI, nil)
	out := infoResult{URI: src.URI, Scheme: src.Scheme.String()}

	var data []byte
	res, err := s.registry.Resolve(ctx, src)
	switch {
	case errors.Is(err, preprocess.ErrNoMatch):
		if src.Scheme != source.SchemeFile {
			return nil, fmt.Errorf("no preprocessor handles %s and it is not a local file", src.URI)
		}
		if data, err = os.ReadFile(src.Content); err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		out.Preprocessor = res.Preprocessor
		if data, err = readResult(res); err != nil {
			return nil, err
		}
	}

	info, err := imaging.Describe(data)
	if err != nil {
		return nil, err
	}
	out.ImageInfo = info

	img, _, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	out.DominantColors = imaging.DominantColors(img, a.Colors)
	return out, nil
}

func readResult(res *preprocess.Result) ([]byte, error) {
	rc, err := res.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource: %w", err)
	}
	return data, nil
}

// === Application and Cache Handlers ===

type appEntry struct {
	apk.InstalledApp
	IconURI   string `json:"icon_uri"`
	IconEntry string `json:"icon_entry,omitempty"`
}

func (s *Server) handleAppsList(ctx context.Context) (interface{}, error) {
	if s.apps == nil {
		return nil, errors.New("no application registry configured")
	}
	apps, err := s.apps.Apps(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]appEntry, 0, len(apps))
	for _, app := range apps {
		e := appEntry{InstalledApp: app, IconURI: source.PrefixInstalledApp + app.Package}
		if name, err := (apk.Archive{}).IconEntry(app.ArchivePath); err == nil {
			e.IconEntry = name
		} else {
			s.log.Debug("no launcher icon", "package", app.Package, "err", err)
		}
		out = append(out, e)
	}
	return map[string]interface{}{
		"apps":  out,
		"count": len(out),
	}, nil
}

type evictArgs struct {
	Package string `json:"package"`
	Version *int64 `json:"version"`
}

func (s *Server) handleIconCacheEvict(args json.RawMessage) (interface{}, error) {
	if s.cache == nil {
		return nil, errors.New("no icon cache configured")
	}
	var a evictArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	if a.Package == "" {
		return nil, errors.New("package is required")
	}
	if a.Version == nil {
		return nil, errors.New("version is required")
	}

	k := iconcache.Key{Package: a.Package, Version: *a.Version}
	if err := s.cache.Evict(k); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"evicted": k.String(),
	}, nil
}

func (s *Server) handleIconCachePurge() (interface{}, error) {
	if s.cache == nil {
		return nil, errors.New("no icon cache configured")
	}
	dropped := s.cache.Len()
	s.cache.PurgeMemory()
	return map[string]interface{}{
		"dropped": dropped,
		"dir":     s.cache.Dir(),
	}, nil
}
