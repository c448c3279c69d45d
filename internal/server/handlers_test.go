package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/qr-logo/internal/imaging"
	"github.com/ironsheep/qr-logo/internal/qr"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name, "arguments": args}
	paramsJSON, _ := json.Marshal(params)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// contentItems extracts the MCP content array from a successful response.
func contentItems(t *testing.T, resp *MCPResponse) []map[string]interface{} {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	return resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
}

// decodeText unmarshals the JSON text item of a response into v.
func decodeText(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	items := contentItems(t, resp)
	if items[0]["type"] != "text" {
		t.Fatalf("first item type: got %v, want text", items[0]["type"])
	}
	if err := json.Unmarshal([]byte(items[0]["text"].(string)), v); err != nil {
		t.Fatalf("failed to parse result: %v", err)
	}
}

func TestHandleToolsCall_Generate(t *testing.T) {
	s := newTestServer(t)
	logo := createTestImageFile(t, 90, 90, color.RGBA{200, 30, 30, 255})

	resp := callTool(t, s, "qr_generate", map[string]interface{}{
		"content":   "https://example.com",
		"logo_path": logo,
	})

	var result struct {
		Accepted bool `json:"accepted"`
		Result   struct {
			State        string `json:"state"`
			Outcome      string `json:"outcome"`
			CaptionDrawn bool   `json:"caption_drawn"`
		} `json:"result"`
		MimeType string `json:"mime_type"`
	}
	decodeText(t, resp, &result)

	if !result.Accepted {
		t.Fatalf("expected accepted, got state %s outcome %s", result.Result.State, result.Result.Outcome)
	}
	if result.Result.Outcome != "match" {
		t.Errorf("outcome: got %s, want match", result.Result.Outcome)
	}
	if result.Result.CaptionDrawn {
		t.Error("no caption expected unless requested")
	}
	if result.MimeType != "image/png" {
		t.Errorf("mime_type: got %s", result.MimeType)
	}

	items := contentItems(t, resp)
	if len(items) != 2 || items[1]["type"] != "image" {
		t.Fatalf("expected text and image items, got %d", len(items))
	}
	data, err := base64.StdEncoding.DecodeString(items[1]["data"].(string))
	if err != nil {
		t.Fatalf("bad base64: %v", err)
	}
	img, err := imaging.DecodeBytes(data)
	if err != nil {
		t.Fatalf("bad image: %v", err)
	}
	text, err := qr.ZXingDecoder{TryHarder: true}.Decode(img)
	if err != nil || text != "https://example.com" {
		t.Errorf("decoded %q, %v", text, err)
	}
}

func TestHandleToolsCall_GenerateToFile(t *testing.T) {
	s := newTestServer(t)
	logo := createTestImageFile(t, 30, 30, color.Black)
	out := filepath.Join(t.TempDir(), "code.jpg")

	resp := callTool(t, s, "qr_generate", map[string]interface{}{
		"content":     "HELLO",
		"logo_path":   logo,
		"format":      "jpg",
		"caption":     "",
		"output_path": out,
	})

	var result struct {
		Accepted   bool   `json:"accepted"`
		OutputPath string `json:"output_path"`
	}
	decodeText(t, resp, &result)
	if !result.Accepted {
		t.Fatal("expected accepted")
	}
	if result.OutputPath != out {
		t.Errorf("output_path: got %s", result.OutputPath)
	}
	if len(contentItems(t, resp)) != 1 {
		t.Error("no inline image expected when writing to a file")
	}

	img, err := imaging.Open(out)
	if err != nil {
		t.Fatalf("output not readable: %v", err)
	}
	if img.Bounds().Dx() != 300 {
		t.Errorf("width: got %d, want 300", img.Bounds().Dx())
	}
}

func TestHandleToolsCall_GenerateMissingLogo(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "qr_generate", map[string]interface{}{
		"content":   "HELLO",
		"logo_path": "/nonexistent/logo.png",
	})
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Code: got %d, want -32000", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Data.(string), "logo load failed") {
		t.Errorf("Data: got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_GenerateNoLogoConfigured(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "qr_generate", map[string]interface{}{"content": "HELLO"})
	if resp.Error == nil || !strings.Contains(resp.Error.Data.(string), "logo_path") {
		t.Fatalf("expected logo_path error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_GenerateInvalid(t *testing.T) {
	s := newTestServer(t)
	logo := createTestImageFile(t, 10, 10, color.Black)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"empty content", map[string]interface{}{"content": "", "logo_path": logo}},
		{"negative size", map[string]interface{}{"content": "HELLO", "logo_path": logo, "size": -3}},
		{"bad format", map[string]interface{}{"content": "HELLO", "logo_path": logo, "format": "webp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "qr_generate", tt.args)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(resp.Error.Data.(string), "invalid request") {
				t.Errorf("Data: got %v", resp.Error.Data)
			}
		})
	}
}

func TestHandleToolsCall_Decode(t *testing.T) {
	s := newTestServer(t)
	logo := createTestImageFile(t, 20, 20, color.Black)
	out := filepath.Join(t.TempDir(), "code.png")

	gen := callTool(t, s, "qr_generate", map[string]interface{}{
		"content":     "decode me",
		"logo_path":   logo,
		"output_path": out,
	})
	if gen.Error != nil {
		t.Fatalf("generate failed: %+v", gen.Error)
	}

	resp := callTool(t, s, "qr_decode", map[string]interface{}{"path": out})
	var result DecodeResult
	decodeText(t, resp, &result)
	if result.Text != "decode me" {
		t.Errorf("text: got %q", result.Text)
	}
	if result.Width != 300 || result.Height != 300 {
		t.Errorf("size: got %dx%d", result.Width, result.Height)
	}
}

func TestHandleToolsCall_DecodeNoCode(t *testing.T) {
	s := newTestServer(t)
	blank := createTestImageFile(t, 50, 50, color.White)

	resp := callTool(t, s, "qr_decode", map[string]interface{}{"path": blank})
	if resp.Error == nil {
		t.Fatal("expected error for an image without a code")
	}

	resp = callTool(t, s, "qr_decode", map[string]interface{}{})
	if resp.Error == nil {
		t.Fatal("expected error for a missing path")
	}
}

func TestHandleToolsCall_LogoInfo(t *testing.T) {
	s := newTestServer(t)
	logo := createTestImageFile(t, 200, 100, color.Black)

	tests := []struct {
		name       string
		size       int
		wantWidth  int
		wantHeight int
		wantScaled bool
	}{
		{"default canvas", 0, 90, 45, true},
		{"large canvas", 1000, 200, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]interface{}{"path": logo}
			if tt.size > 0 {
				args["size"] = tt.size
			}
			resp := callTool(t, s, "logo_info", args)

			var result struct {
				Width        int    `json:"width"`
				Height       int    `json:"height"`
				Format       string `json:"format"`
				PlacedWidth  int    `json:"placed_width"`
				PlacedHeight int    `json:"placed_height"`
				Scaled       bool   `json:"scaled"`
			}
			decodeText(t, resp, &result)
			if result.Width != 200 || result.Height != 100 || result.Format != "png" {
				t.Errorf("info: got %dx%d %s", result.Width, result.Height, result.Format)
			}
			if result.PlacedWidth != tt.wantWidth || result.PlacedHeight != tt.wantHeight || result.Scaled != tt.wantScaled {
				t.Errorf("placement: got %dx%d scaled=%v, want %dx%d scaled=%v",
					result.PlacedWidth, result.PlacedHeight, result.Scaled,
					tt.wantWidth, tt.wantHeight, tt.wantScaled)
			}
		})
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "image_crop", map[string]interface{}{})
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(resp.Error.Data.(string), "unknown tool") {
		t.Errorf("Data: got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name": 5}`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"qr_generate", "qr_decode", "logo_info"} {
		if _, err := s.executeTool(context.Background(), name, json.RawMessage(`{bad`)); err == nil {
			t.Errorf("%s: expected error for invalid JSON", name)
		}
	}
}
