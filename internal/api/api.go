// Package api provides the HTTP surface consumed by the symptom-checker UI.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/symptomscope/symptomscope/internal/config"
	"github.com/symptomscope/symptomscope/pkg/models"
)

// Diagnoser runs one diagnosis request. Satisfied by diagnose.Service.
type Diagnoser interface {
	Diagnose(ctx context.Context, input models.SymptomInput) *models.DiagnosisResult
}

// Server is the API server.
type Server struct {
	diagnoser Diagnoser
	cfg       *config.Config
	mux       *http.ServeMux
	logger    *slog.Logger
	limiter   *rate.Limiter
}

// Config holds API server configuration.
type Config struct {
	Diagnoser Diagnoser
	Provider  *config.Config
	Logger    *slog.Logger
}

// The UI issues one diagnosis at a time, but the endpoint is shared; a
// small token bucket keeps a misbehaving client from hammering the
// provider API.
const (
	diagnoseRatePerSec = 1
	diagnoseBurst      = 3
)

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		diagnoser: cfg.Diagnoser,
		cfg:       cfg.Provider,
		mux:       http.NewServeMux(),
		logger:    logger.With("component", "api"),
		limiter:   rate.NewLimiter(rate.Limit(diagnoseRatePerSec), diagnoseBurst),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/diagnose", s.handleDiagnose)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)
	r = r.WithContext(withRequestID(r.Context(), requestID))

	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports provider configuration so the UI can show its
// status indicator before any diagnosis request is made. Credentials are
// never included.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Status())
}

type diagnoseRequest struct {
	Symptoms []string       `json:"symptoms"`
	Images   []imagePayload `json:"images"`
}

type imagePayload struct {
	Data string `json:"data"` // base64
	MIME string `json:"mime"`
}

// handleDiagnose runs one diagnosis request. It always answers 200 with a
// record set: provider and normalization failures are absorbed by the
// diagnoser's fallback policy, never surfaced to the UI.
func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var req diagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Symptoms) == 0 {
		writeError(w, http.StatusBadRequest, "at least one symptom is required")
		return
	}
	if len(req.Images) > models.MaxImages {
		writeError(w, http.StatusBadRequest, "at most 3 images are allowed")
		return
	}

	input := models.SymptomInput{Symptoms: req.Symptoms}
	for _, img := range req.Images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid image encoding")
			return
		}
		input.Images = append(input.Images, models.Attachment{Data: data, MIME: img.MIME})
	}

	result := s.diagnoser.Diagnose(r.Context(), input)

	s.logger.Info("diagnosis served",
		"request_id", requestIDFrom(r.Context()),
		"symptoms", len(input.Symptoms),
		"images", len(input.Images),
		"records", len(result.Records),
		"fallback", result.Fallback)

	writeJSON(w, http.StatusOK, result)
}
