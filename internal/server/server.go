// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes review runs over HTTP: a JSON review endpoint,
// a .docx export endpoint, and a health check.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiddy/evidence-review/internal/pipeline"
	"github.com/pdiddy/evidence-review/internal/report"
	"github.com/pdiddy/evidence-review/pkg/types"
)

// maxRequestBody caps the size of a question body.
const maxRequestBody = 1 << 20

// Runner runs one review. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, q types.ResearchQuestion) (*pipeline.Result, error)
}

// Server serves review runs.
type Server struct {
	runner Runner
	logger *slog.Logger
	mux    *http.ServeMux
}

// New returns a Server backed by runner.
func New(runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{runner: runner, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, allowing in-flight runs up to shutdownGrace to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

const shutdownGrace = 10 * time.Second

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/review", s.handleReview)
	s.mux.HandleFunc("POST /api/export", s.handleExport)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type reviewResponse struct {
	*pipeline.Result
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	html, err := report.HTML(res.Report)
	if err != nil {
		s.logger.Error("rendering HTML", "run_id", res.RunID, "error", err)
		writeError(w, http.StatusInternalServerError, "rendering report failed")
		return
	}
	writeJSON(w, http.StatusOK, reviewResponse{
		Result:   res,
		Markdown: report.Markdown(res.Report),
		HTML:     html,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	b, err := res.Export()
	if err != nil {
		s.logger.Error("export failed", "run_id", res.RunID, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", report.DocxMIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.DocxFilename))
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// run decodes the question and runs the review. On failure it writes the
// error response and returns false.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	q, err := decodeQuestion(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	res, err := s.runner.Run(r.Context(), q)
	switch {
	case err == nil:
		return res, true
	case isInvalidQuestion(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("review cancelled", "error", err)
		writeError(w, http.StatusServiceUnavailable, "review cancelled")
	default:
		s.logger.Error("review failed", "error", err)
		writeError(w, http.StatusInternalServerError, "review failed")
	}
	return nil, false
}

// decodeQuestion reads a JSON question. Omitted fields keep the values of
// types.DefaultQuestion.
func decodeQuestion(w http.ResponseWriter, r *http.Request) (types.ResearchQuestion, error) {
	q := types.DefaultQuestion()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&q); err != nil {
		return types.ResearchQuestion{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	return q, nil
}

func isInvalidQuestion(err error) bool {
	for _, target := range []error{
		types.ErrInvalidYearLimit, types.ErrInvalidStudyType, types.ErrInvalidSource,
		types.ErrInvalidOutputFormat, types.ErrDuplicateOption,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
