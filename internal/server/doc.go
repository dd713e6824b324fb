// Package server exposes the image pipeline to clients.
//
// Two front ends live here. NewRouter builds the HTTP handler that serves
// rendered images under the configured base prefix. Server is a JSON-RPC 2.0
// tool server on stdio that gives non-Go application code the URL and inline
// generation API.
//
// # HTTP
//
// Routes:
//   - GET|HEAD /<prefix><preset>/<file...>: rendered image, or 404 "Image not found."
//   - GET|HEAD /healthz: liveness probe
//
// Paths under the prefix that do not split into a preset and a file are not
// image requests and get the router's plain 404.
//
// # Tool protocol
//
// The tool server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// URL generation:
//   - image_url: Public URL for a source image through a preset
//   - image_base64: Rendered image as a data URI
//
// Presets:
//   - preset_list: All registered presets
//   - preset_get: One preset by name
//
// Sources:
//   - image_source_info: Dimensions and format of a source file
//   - image_palette: Dominant colours of a source file
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// An unknown preset is not a tool error for image_url and image_base64:
// they fall back to the source URL and an empty data URI respectively.
package server
