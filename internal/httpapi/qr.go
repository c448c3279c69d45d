package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ironsheep/qr-logo/internal/imaging"
	"github.com/ironsheep/qr-logo/internal/qr"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.Version})
}

type generateRequest struct {
	Content    string  `json:"content"`
	Size       int     `json:"size"`
	Format     string  `json:"format"`
	Caption    *string `json:"caption"`
	LogoBase64 string  `json:"logo_base64"`
	// LogoPath is decoded only to refuse it. Clients cannot name files on
	// the server.
	LogoPath string `json:"logo_path"`
}

type rejectedResponse struct {
	Error  string     `json:"error"`
	Result *qr.Result `json:"result"`
}

func (s *Server) handleGenerateJSON(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	var logo qr.LogoSource
	switch {
	case req.LogoBase64 != "":
		data, err := base64.StdEncoding.DecodeString(req.LogoBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "logo_base64 is not valid base64")
			return
		}
		logo = qr.LogoBytes(data)
	case req.LogoPath != "":
		writeError(w, http.StatusBadRequest, "logo_path is not accepted over HTTP: send logo_base64 or configure a logo")
		return
	}

	s.generate(w, r, req, logo)
}

// handleGenerateQuery serves GET /qr?content=...&size=...&format=...&caption=...
// using the configured logo.
func (s *Server) handleGenerateQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := generateRequest{
		Content: q.Get("content"),
		Format:  q.Get("format"),
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid size %q", v))
			return
		}
		req.Size = n
	}
	if q.Has("caption") {
		c := q.Get("caption")
		req.Caption = &c
	}

	s.generate(w, r, req, nil)
}

// generate fills defaults from the config, runs the pipeline and writes the
// accepted image, or a JSON report when there is none.
func (s *Server) generate(w http.ResponseWriter, r *http.Request, req generateRequest, logo qr.LogoSource) {
	if logo == nil && s.Config.Logo != "" {
		logo = qr.LogoFromCache(s.Cache, s.Config.Logo)
	}
	if req.Size == 0 {
		req.Size = s.Config.Size
	}
	if req.Format == "" {
		req.Format = s.Config.Format
	}
	caption := s.Config.Caption(req.Content)
	if req.Caption != nil {
		caption = *req.Caption
	}

	var buf bytes.Buffer
	res, err := s.Generator.Generate(r.Context(), qr.Request{
		Content: req.Content,
		Size:    req.Size,
		Format:  req.Format,
		Caption: caption,
		Logo:    logo,
	}, &buf)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if !res.Accepted() {
		writeJSON(w, http.StatusUnprocessableEntity, rejectedResponse{
			Error:  fmt.Sprintf("logo makes the code unreadable (%s)", res.Outcome),
			Result: res,
		})
		return
	}

	w.Header().Set("Content-Type", imaging.MimeType(req.Format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-QR-Outcome", res.Outcome.String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.Log.Warn("failed to send image", "err", err)
	}
}
