// Package httpapi serves QR code generation over HTTP.
//
// Routes:
//
//	GET  /healthz  liveness check
//	GET  /qr       generate with the configured logo, parameters in the query
//	POST /qr       generate from a JSON body, logo inline or the configured one
//
// An accepted image is streamed back with its MIME type. A generation whose
// logo breaks the code is answered with 422 and a JSON report; nothing of
// the rejected image is sent.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ironsheep/qr-logo/internal/config"
	"github.com/ironsheep/qr-logo/internal/imaging"
	"github.com/ironsheep/qr-logo/internal/qr"
)

// maxBodyBytes bounds POST /qr bodies, which may carry a base64 logo.
const maxBodyBytes = 8 << 20

// Server holds the dependencies for all HTTP handlers.
type Server struct {
	Generator *qr.Generator
	Config    *config.Config
	// Cache holds the configured logo. Request logos are never cached.
	Cache   *imaging.ImageCache
	Log     *log.Logger
	Version string
}

// NewRouter returns a fully configured chi router with all API routes.
func NewRouter(s *Server) http.Handler {
	if s.Cache == nil {
		s.Cache = imaging.NewImageCache()
	}
	if s.Log == nil {
		s.Log = log.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.Log))

	r.Get("/healthz", s.handleHealth)
	r.Get("/qr", s.handleGenerateQuery)
	r.Post("/qr", s.handleGenerateJSON)

	return r
}

// ListenAndServe serves h on addr until ctx is canceled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// --- helpers ----------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps an aborted generation's error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, qr.ErrAllocationFailed):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, qr.ErrInvalidRequest),
		errors.Is(err, qr.ErrEncodingFailed),
		errors.Is(err, qr.ErrLogoLoadFailed):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// --- middleware --------------------------------------------------------------

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}
