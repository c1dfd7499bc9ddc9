// Package server implements the MCP (Model Context Protocol) server for the
// dataset curation tools.
//
// The server exposes the same operations as the command line through JSON-RPC
// 2.0 so that an MCP client can audit and curate datasets directly.
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
// Dataset audits:
//   - dataset_validate: Missing annotations and objects below an area fraction
//   - dataset_filter_small: Extract pairs with objects small in width and height
//
// Curation:
//   - dataset_curate: Full collect, dedupe, split, resize, manifest pass
//
// Single files:
//   - label_inspect: Parse a label file, optionally against its image
//   - image_dimensions: Width, height, and format from the image header
//   - object_crop: One labeled object as an enlarged base64 PNG
//
// # Dimension Caching
//
// Image dimensions are cached by path, size, and modification time for the
// lifetime of the server, so repeated audits of the same dataset only read
// image headers once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Logging goes to the logger passed in Options, never to stdout, which
// carries only protocol messages.
package server
