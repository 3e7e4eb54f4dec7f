// Package server exposes the circle-mask and sequence-rename operations as
// MCP (Model Context Protocol) tools.
//
// The server speaks JSON-RPC 2.0 over a line-oriented stream, normally
// stdin/stdout:
//   - Input: one JSON-RPC request per line
//   - Output: one JSON-RPC response per line
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Images:
//   - image_info: Dimensions, format and alpha of an image
//   - image_circle_mask: Make everything outside the inscribed ellipse transparent
//
// Files:
//   - files_rename_sequence: Rename a directory's images to 1.jpg, 2.jpg, ...
//   - files_rename_undo: Reverse a rename batch from its journal
//
// # Image Caching
//
// Decoded source images are cached by path for the life of the process.
// Written outputs are evicted so a later call reads the new file.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors with code -32000, message
// "Tool execution failed" and the Go error text in data. Stdout carries only
// protocol messages; diagnostics go to the logger.
package server
