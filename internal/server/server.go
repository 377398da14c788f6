package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/experiment"
	"github.com/san-kum/episim/internal/export"
)

const maxBodyBytes = 1 << 20

type Server struct {
	router   *chi.Mux
	registry *experiment.Registry
}

func New() *Server {
	s := &Server{registry: experiment.NewRegistry()}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)
	r.Get("/api/v1/models", s.handleListModels)
	r.Get("/api/v1/presets/{model}", s.handleListPresets)

	r.Post("/api/v1/simulate", s.handleSimulate)
	r.Get("/api/v1/compare", s.handleCompare)
	r.Get("/api/v1/chart/{model}", s.handleChart)

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"models": len(s.registry.ListModels()),
	})
}

type modelEntry struct {
	experiment.ModelInfo
	Presets []string `json:"presets"`
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	entries := make([]modelEntry, 0)
	for _, name := range s.registry.ListModels() {
		info, err := s.registry.Describe(name)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to describe model", err)
			return
		}
		entries = append(entries, modelEntry{ModelInfo: info, Presets: config.ListPresets(name)})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"models":      entries,
		"integrators": s.registry.ListIntegrators(),
	})
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	names := config.ListPresets(model)
	if names == nil {
		respondError(w, http.StatusNotFound, "unknown model", fmt.Errorf("unknown model: %s", model))
		return
	}

	presets := make(map[string]*config.Config, len(names))
	for _, name := range names {
		presets[name] = config.GetPreset(model, name)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"model":   model,
		"presets": presets,
	})
}

// handleSimulate runs the posted config. With ?model=&preset= the body is
// applied on top of that preset, so it only needs the fields that change.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	cfg := &config.Config{}
	if preset := r.URL.Query().Get("preset"); preset != "" {
		model := r.URL.Query().Get("model")
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			respondError(w, http.StatusNotFound, "unknown preset", fmt.Errorf("no preset %q for model %q", preset, model))
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res, err := experiment.New(cfg, s.registry).Run(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "simulation failed", err)
		return
	}
	respondJSON(w, http.StatusOK, export.NewDocument(res))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	preset := r.URL.Query().Get("preset")
	if preset == "" {
		preset = config.DefaultPreset("rumor")
	}
	cfg := config.GetPreset("rumor", preset)
	if cfg == nil {
		respondError(w, http.StatusNotFound, "unknown preset", fmt.Errorf("no rumor preset %q", preset))
		return
	}

	factors, err := parseFactors(r.URL.Query().Get("factors"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid factors", err)
		return
	}

	results, err := experiment.Compare(r.Context(), cfg, s.registry, factors...)
	if err != nil {
		respondError(w, statusFor(err), "comparison failed", err)
		return
	}

	docs := make([]export.Document, 0, len(results))
	for _, res := range results {
		docs = append(docs, export.NewDocument(res))
	}
	respondJSON(w, http.StatusOK, map[string]any{"scenarios": docs})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	preset := r.URL.Query().Get("preset")
	if preset == "" {
		preset = config.DefaultPreset(model)
	}
	cfg := config.GetPreset(model, preset)
	if cfg == nil {
		respondError(w, http.StatusNotFound, "unknown preset", fmt.Errorf("no preset %q for model %q", preset, model))
		return
	}

	formatName := r.URL.Query().Get("format")
	format, err := export.ChartFormat(formatName)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid format", err)
		return
	}

	res, err := experiment.New(cfg, s.registry).Run(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "simulation failed", err)
		return
	}

	var buf bytes.Buffer
	if err := export.RenderChart(&buf, res, format); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "chart failed", err)
		return
	}

	contentType := "image/png"
	if strings.EqualFold(formatName, "svg") {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logrus.Errorf("write chart for %s/%s: %v", model, preset, err)
	}
}

func parseFactors(raw string) ([]float64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("factor %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// statusFor separates caller mistakes from server faults.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, dynamo.ErrInvalidState):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// respondJSON encodes before writing the header so an encoding failure
// still reaches the client as a 500.
func respondJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logrus.Errorf("encode response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "{\"error\":\"encode response\",\"details\":%q}\n", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logrus.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request")
	})
}
