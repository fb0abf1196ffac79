package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/ironsheep/spot-analyzer/internal/imaging"
	"github.com/ironsheep/spot-analyzer/internal/spots"
)

// uploadField is the multipart form field carrying the image.
const uploadField = "foto"

const (
	msgOnline       = "Image analysis API is online"
	msgInvalidImage = "Invalid image or unsupported format."
)

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Message string `json:"mensagem"`
}

// ErrorResponse is the body of every non-2xx API reply.
type ErrorResponse struct {
	Error string `json:"erro"`
}

// AnalyzeResponse is the body of a successful POST /analisar.
type AnalyzeResponse struct {
	File           string       `json:"arquivo"`
	Coverage       float64      `json:"percentual_manchas"`
	Count          int          `json:"num_manchas"`
	Message        string       `json:"mensagem"`
	Spots          []spots.Spot `json:"spots"`
	AnnotatedImage string       `json:"annotated_image"`
	AnnotatedURL   string       `json:"annotated_url"`
}

// Handler returns the HTTP API with request logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleStatus)
	mux.HandleFunc("POST /analisar", s.handleAnalyze)
	mux.Handle("GET "+imaging.URLPrefix,
		http.StripPrefix(imaging.URLPrefix, http.FileServer(http.Dir(s.store.Dir()))))

	return s.logRequests(s.recoverPanics(mux))
}

// ListenAndServe serves the HTTP API on the configured address until ctx is
// cancelled, then shuts down gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Str("images_dir", s.store.Dir()).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http shutdown failed")
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Message: msgOnline})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadBytes()
	if r.ContentLength > limit {
		s.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload exceeds %d bytes", limit), errors.Errorf("content length %d", r.ContentLength))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), err)
			return
		}
		s.writeError(w, http.StatusBadRequest, "expected a multipart/form-data body", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("missing form field %q", uploadField), err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error(), err)
		return
	}

	img, err := imaging.DecodeBytes(data)
	if err != nil {
		if errors.Cause(err) == imaging.ErrInvalidImage {
			s.writeError(w, http.StatusBadRequest, msgInvalidImage, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error(), err)
		return
	}

	analysis, err := s.analyze(s.detector, img)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error(), err)
		return
	}

	m := analysis.Metrics
	s.log.Info().
		Str("file", header.Filename).
		Int64("bytes", header.Size).
		Int("spots", m.Count).
		Float64("coverage", m.Coverage).
		Str("annotated", analysis.AnnotatedImage).
		Msg("image analyzed")

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		File:           header.Filename,
		Coverage:       m.Coverage,
		Count:          m.Count,
		Message:        m.Message,
		Spots:          m.Spots,
		AnnotatedImage: analysis.AnnotatedImage,
		AnnotatedURL:   imaging.URL(analysis.AnnotatedImage),
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string, cause error) {
	ev := s.log.Warn()
	if status >= http.StatusInternalServerError {
		ev = s.log.Error()
	}
	ev.Err(cause).Int("status", status).Msg(msg)
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

// recoverPanics turns a handler panic into a 500 reply.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.log.Error().Interface("panic", v).Str("path", r.URL.Path).Msg("handler panicked")
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: fmt.Sprint(v)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
