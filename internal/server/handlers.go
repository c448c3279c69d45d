package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ironsheep/qr-logo/internal/imaging"
	"github.com/ironsheep/qr-logo/internal/qr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "qr_generate").
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
// An accepted qr_generate call without output_path adds an image item:
//
//	{"type": "image", "data": "<base64>", "mimeType": "image/png"}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	content := []map[string]interface{}{
		{
			"type": "text",
			"text": mustMarshalJSON(result),
		},
	}
	if g, ok := result.(*GenerateResult); ok && g.image != nil {
		content = append(content, map[string]interface{}{
			"type":     "image",
			"data":     base64.StdEncoding.EncodeToString(g.image),
			"mimeType": g.MimeType,
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "qr_generate":
		return s.handleGenerate(ctx, args)
	case "qr_decode":
		return s.handleDecode(args)
	case "logo_info":
		return s.handleLogoInfo(args)
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

// === Generation ===

type generateArgs struct {
	Content    string  `json:"content"`
	LogoPath   string  `json:"logo_path"`
	Size       int     `json:"size"`
	Format     string  `json:"format"`
	Caption    *string `json:"caption"`
	OutputPath string  `json:"output_path"`
}

// GenerateResult is the qr_generate report.
type GenerateResult struct {
	Accepted   bool       `json:"accepted"`
	Result     *qr.Result `json:"result"`
	MimeType   string     `json:"mime_type,omitempty"`
	OutputPath string     `json:"output_path,omitempty"`

	image []byte
}

func (s *Server) handleGenerate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	// Apply defaults
	if a.LogoPath == "" {
		a.LogoPath = s.cfg.Logo
	}
	if a.LogoPath == "" {
		return nil, fmt.Errorf("%w: logo_path is required", qr.ErrInvalidRequest)
	}
	if a.Size == 0 {
		a.Size = s.cfg.Size
	}
	if a.Format == "" {
		a.Format = s.cfg.Format
	}
	caption := s.cfg.Caption(a.Content)
	if a.Caption != nil {
		caption = *a.Caption
	}

	var buf bytes.Buffer
	res, err := s.gen.Generate(ctx, qr.Request{
		Content: a.Content,
		Size:    a.Size,
		Format:  a.Format,
		Caption: caption,
		Logo:    qr.LogoFromCache(s.cache, a.LogoPath),
	}, &buf)
	if err != nil {
		return nil, err
	}

	out := &GenerateResult{Accepted: res.Accepted(), Result: res}
	if !res.Accepted() {
		return out, nil
	}

	out.MimeType = imaging.MimeType(a.Format)
	if a.OutputPath == "" {
		out.image = buf.Bytes()
		return out, nil
	}
	if err := os.WriteFile(a.OutputPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("%w: %w", qr.ErrWriteFailed, err)
	}
	out.OutputPath = a.OutputPath
	return out, nil
}

// === Decoding ===

type pathArgs struct {
	Path string `json:"path"`
	Size int    `json:"size"`
}

// DecodeResult is the qr_decode report.
type DecodeResult struct {
	Text   string `json:"text"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleDecode(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	// Decoded images are not cached; they are usually fresh outputs.
	img, err := imaging.Open(a.Path)
	if err != nil {
		return nil, err
	}
	text, err := qr.ZXingDecoder{TryHarder: true}.Decode(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &DecodeResult{Text: text, Width: b.Dx(), Height: b.Dy()}, nil
}

// === Logo inspection ===

// LogoInfoResult is the logo_info report.
type LogoInfoResult struct {
	*imaging.ImageInfo
	CanvasSize   int  `json:"canvas_size"`
	PlacedWidth  int  `json:"placed_width"`
	PlacedHeight int  `json:"placed_height"`
	Scaled       bool `json:"scaled"`
}

func (s *Server) handleLogoInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Size <= 0 {
		a.Size = s.cfg.Size
	}

	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	c := qr.Compositor{MaxRatio: s.cfg.MaxLogoRatio}
	w, h, scaled := c.LogoSize(a.Size, info.Width, info.Height)
	return &LogoInfoResult{
		ImageInfo:    info,
		CanvasSize:   a.Size,
		PlacedWidth:  w,
		PlacedHeight: h,
		Scaled:       scaled,
	}, nil
}
