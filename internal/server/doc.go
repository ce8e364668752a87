// Package server implements the MCP (Model Context Protocol) server for image
// source preprocessing.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - source_classify: Scheme and content of a source identifier
//   - source_match: Which preprocessor, if any, handles a source
//   - source_resolve: Run the matching preprocessor and return the resource
//   - source_info: Resolve, then describe the image and its colors
//   - source_preprocessors: Registered preprocessors in dispatch order
//
// A source that no preprocessor handles is not an error for source_resolve;
// the result has status "no_match" and the caller loads the source itself.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.Config{Registry: reg, Log: log})
//	if err := srv.Run(ctx); err != nil {
//	    log.Error("server stopped", "err", err)
//	}
package server
