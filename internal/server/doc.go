// Package server implements the MCP (Model Context Protocol) server for the image conversion facade.
//
// This package provides a JSON-RPC 2.0 server that exposes each facade
// operation as an MCP tool, so MCP-compatible clients can convert and inspect
// images without linking the library.
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
//   - magick_convert: Transform and re-encode an image
//   - magick_identify: Describe an image
//   - magick_composite: Overlay one image on another
//   - magick_quantize_colors: Extract a color palette
//   - magick_get_const_pixels: Read a region of pixels
//   - magick_quantum_depth: Report pixel precision
//   - magick_version: Report the engine version
//
// Tool arguments are the facade's option record. Image buffers are passed
// as {"type": "Buffer", "data": "<base64>"} objects, or by file with srcPath
// and compositePath. Image output is returned in the same Buffer form, ready
// to feed into the next call, unless dstPath names a file to write.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32602 for ArgumentError and ConfigurationError, -32000 for
//     everything else
//   - message: "Invalid params" or "Tool execution failed"
//   - data: the operation's error message
//
// # Usage
//
//	srv := server.New(magick.New(), logrus.StandardLogger(), version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
