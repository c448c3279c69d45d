// Package server implements the MCP (Model Context Protocol) server for
// generating QR codes with a centred logo.
//
// This package provides a JSON-RPC 2.0 server that exposes the qr pipeline
// through the MCP protocol, so an MCP client can ask for a branded QR code
// and receive it only when it still scans.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr; stdout carries nothing but protocol messages.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - qr_generate: Encode text, overlay a logo, verify, and return the image
//   - qr_decode: Read the text of a QR code from an image file
//   - logo_info: Report a logo's size and the size it would be placed at
//
// A qr_generate call whose logo breaks the code is not an error: the tool
// returns a report with "accepted": false and no image. Only aborted
// generations (bad arguments, unreadable logo, write failures) become
// JSON-RPC errors.
//
// # Logo Caching
//
// Logos are decoded once per path and kept in an in-memory cache for the
// lifetime of the server process.
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
//	srv := server.New(cfg, gen, logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal(err)
//	}
package server
