package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	s := New(Config{})
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.registry == nil {
		t.Fatal("New() did not initialize a registry")
	}
	if s.version != "dev" {
		t.Errorf("version: got %s, want dev", s.version)
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}

			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

// serve runs the server over the given input lines and returns the decoded
// responses.
func serve(t *testing.T, s *Server, lines ...string) []MCPResponse {
	t.Helper()
	var out bytes.Buffer
	if err := s.Serve(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n"), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	var resps []MCPResponse
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var resp MCPResponse
		if err := json.Unmarshal(sc.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response line %q: %v", sc.Text(), err)
		}
		resps = append(resps, resp)
	}
	return resps
}

func TestServe_Protocol(t *testing.T) {
	s := New(Config{Version: "1.2.3"})
	resps := serve(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"resources/list"}`,
	)

	if len(resps) != 4 {
		t.Fatalf("expected 4 responses, got %d", len(resps))
	}

	info := resps[0].Result.(map[string]interface{})["serverInfo"].(map[string]interface{})
	if info["name"] != "image-preprocess-mcp" || info["version"] != "1.2.3" {
		t.Errorf("serverInfo: got %v", info)
	}
	if resps[1].ID != float64(2) || resps[1].Error != nil {
		t.Errorf("ping: got %+v", resps[1])
	}
	tools := resps[2].Result.(map[string]interface{})["tools"].([]interface{})
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("tools/list: got %d tools, want %d", len(tools), len(GetToolDefinitions()))
	}
	if resps[3].Error == nil || resps[3].Error.Code != -32601 {
		t.Errorf("unknown method: got %+v", resps[3].Error)
	}
}

func TestServe_ParseError(t *testing.T) {
	resps := serve(t, New(Config{}), `{not json`, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)

	if len(resps) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(resps))
	}
	if resps[0].Error == nil || resps[0].Error.Code != -32700 {
		t.Errorf("parse error: got %+v", resps[0].Error)
	}
	if resps[1].Error != nil {
		t.Error("server should keep serving after a parse error")
	}
}

func TestServe_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := New(Config{}).Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Serve: got %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Error("canceled server should not answer")
	}
}
