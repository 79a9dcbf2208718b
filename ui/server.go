package ui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"stokhos/app"
	"stokhos/domain/core"
	"stokhos/internal"
	"stokhos/ports"
)

// Server is the JSON web surface over the analysis service
type Server struct {
	router     *chi.Mux
	service    *app.AnalysisService
	summarizer ports.SummarizerPort // nil disables the summary endpoint
	logger     *internal.Logger
}

// NewServer creates the web server and mounts all routes
func NewServer(service *app.AnalysisService, summarizer ports.SummarizerPort, logger *internal.Logger) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		service:    service,
		summarizer: summarizer,
		logger:     logger,
	}
	s.routes()
	return s
}

// Handler returns the mounted router
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/compare", s.handleCompare)
		r.Post("/self-dependence", s.handleSelfDependence)
		r.Get("/self-dependence/estimate", s.handleEstimate)
		r.Post("/transitions", s.handleTransitions)
		r.Post("/summary", s.handleSummary)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req app.DatasetRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.service.AnalyzeDataset(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req app.ComparisonRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.service.CompareModels(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSelfDependence(w http.ResponseWriter, r *http.Request) {
	var req app.SelfDependenceRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.service.AnalyzeSelfDependence(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleEstimate pre-flights an order analysis without running it
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	states, err1 := strconv.Atoi(r.URL.Query().Get("states"))
	steps, err2 := strconv.Atoi(r.URL.Query().Get("steps"))
	if err1 != nil || err2 != nil || states <= 0 || steps <= 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "states and steps must be positive integers",
		})
		return
	}
	cost, feasible := s.service.EstimateSelfDependenceCost(states, steps)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"joint_states": cost,
		"feasible":     feasible,
	})
}

func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Trace []string `json:"trace"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.service.AnalyzeTransitions(req.Trace)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleSummary generates prose for previously computed results and
// renders it to HTML for direct embedding.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.summarizer == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no summarizer configured",
		})
		return
	}
	var req ports.SummaryRequest
	if !s.decode(w, r, &req) {
		return
	}
	summary, err := s.summarizer.Summarize(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"summary":      summary,
		"summary_html": renderMarkdown(summary),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	runs, err := s.service.ListRuns(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*ports.RunRecord{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	record, err := s.service.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

// renderMarkdown converts summary prose to HTML
func renderMarkdown(text string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return string(markdown.ToHTML([]byte(text), p, renderer))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body: " + err.Error()})
		return false
	}
	return true
}

// writeError maps domain errors onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsInputError(err) || core.IsModelInvalid(err):
		status = http.StatusBadRequest
	case core.IsResourceError(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrRunNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response: %v", err)
	}
}
