package server

import (
	"strings"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"source_classify",
		"source_match",
		"source_resolve",
		"source_info",
		"source_preprocessors",
		"apps_list",
		"icon_cache_evict",
		"icon_cache_purge",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}
	if len(toolMap) != len(tools) {
		t.Error("tool names must be unique")
	}

	for _, name := range expectedTools {
		tool, ok := toolMap[name]
		if !ok {
			t.Errorf("missing tool: %s", name)
			continue
		}
		if tool.Description == "" {
			t.Errorf("tool %s has no description", name)
		}
		if tool.InputSchema["type"] != "object" {
			t.Errorf("tool %s schema type: got %v, want object", name, tool.InputSchema["type"])
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("expected %d tools, got %d", len(expectedTools), len(tools))
	}
}

func TestGetToolDefinitions_URIRequired(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if !strings.HasPrefix(tool.Name, "source_") || tool.Name == "source_preprocessors" {
			continue
		}
		required, ok := tool.InputSchema["required"].([]string)
		if !ok || len(required) == 0 || required[0] != "uri" {
			t.Errorf("tool %s should require uri, got %v", tool.Name, tool.InputSchema["required"])
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		if _, ok := props["uri"]; !ok {
			t.Errorf("tool %s has no uri property", tool.Name)
		}
	}
}
