package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/csheth/pdf2ai/internal/apperr"
	"github.com/csheth/pdf2ai/internal/cache"
	"github.com/csheth/pdf2ai/internal/document"
	"github.com/csheth/pdf2ai/internal/pdftext"
)

// multipartSlack covers the form boundary and headers around the file part.
const multipartSlack = 1 << 20

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

type summaryResponse struct {
	Summary  string  `json:"summary"`
	Progress float64 `json:"progress"`
	Cached   bool    `json:"cached,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "PDF2AI Backend is running!",
		"status":  "healthy",
		"version": s.cfg.Version,
		"project": s.cfg.Project,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"message":   "Backend is healthy and ready to serve requests",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"version":   s.cfg.Version,
	})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	origins := s.cfg.CORSOrigins
	if origins == nil {
		origins = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Connection successful!",
		"backend":   "Go",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"version":   s.cfg.Version,
		"available_endpoints": []string{
			"/api/health",
			"/api/test",
			"/api/summarize",
		},
		"cors_origins": origins,
	})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With().Str("request_id", chimiddleware.GetReqID(ctx)).Logger()

	r.Body = http.MaxBytesReader(w, r.Body, s.validator.MaxSize+multipartSlack)
	file, header, err := r.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			s.writeFailure(w, apperr.New(apperr.TooLarge, err))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file provided", Detail: err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeFailure(w, apperr.New(apperr.UnreadableFile, err))
		return
	}

	doc := document.FromBuffer(header.Filename, header.Header.Get("Content-Type"), data)
	if result := s.validator.Validate(doc); !result.Valid() {
		logger.Info().Str("file", doc.Name()).Str("reason", string(result.Reason())).Msg("upload rejected")
		s.writeFailure(w, result.Failure())
		return
	}

	var (
		key    string
		cached []byte
		text   string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		key = cache.Key(s.model.Name(), data)
		hit, err := s.cache.Get(gctx, key)
		switch {
		case err == nil:
			cached = hit
		case !errors.Is(err, cache.ErrCacheMiss) && gctx.Err() == nil:
			logger.Warn().Err(err).Msg("summary cache read failed")
		}
		return nil
	})
	g.Go(func() error {
		extracted, err := pdftext.Extract(data)
		if err != nil {
			return apperr.New(apperr.CorruptPdf, err)
		}
		text = extracted
		return nil
	})
	if err := g.Wait(); err != nil {
		s.writeFailure(w, apperr.Ensure(err, apperr.CorruptPdf))
		return
	}

	if cached != nil {
		logger.Debug().Str("file", doc.Name()).Msg("summary cache hit")
		writeJSON(w, http.StatusOK, summaryResponse{Summary: string(cached), Progress: 1, Cached: true})
		return
	}

	prepared := s.excerpts.Build(text)
	if strings.TrimSpace(prepared.Text) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: "No extractable text found in PDF",
			Kind:  string(apperr.UnsupportedPdfFormat),
		})
		return
	}

	start := time.Now()
	summary, err := s.model.Summarize(ctx, doc.Title(), prepared.Text)
	if err != nil {
		logger.Error().Err(err).Str("model", s.model.Name()).Msg("summarize failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:  apperr.ServerError.Message(),
			Detail: err.Error(),
			Kind:   string(apperr.ServerError),
		})
		return
	}
	logger.Info().
		Str("file", doc.Name()).
		Str("model", s.model.Name()).
		Int("chunks", len(prepared.Chunks)).
		Bool("clipped", prepared.Clipped).
		Dur("duration", time.Since(start)).
		Msg("summary ready")

	if err := s.cache.Set(ctx, key, []byte(summary), s.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("summary cache write failed")
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary, Progress: 1})
}

func (s *Server) writeFailure(w http.ResponseWriter, failure *apperr.Error) {
	status := http.StatusBadRequest
	switch failure.Kind {
	case apperr.TooLarge:
		status = http.StatusRequestEntityTooLarge
	case apperr.CorruptPdf, apperr.PasswordProtectedPdf, apperr.UnsupportedPdfFormat:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, errorResponse{
		Error:  failure.Message,
		Detail: failure.Detail(),
		Kind:   string(failure.Kind),
	})
}

func isTooLarge(err error) bool {
	var tooBig *http.MaxBytesError
	return errors.As(err, &tooBig)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
