package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kavyagupta/BeatSync/pkg/beatsync"
	"github.com/kavyagupta/BeatSync/pkg/logger"
	"github.com/kavyagupta/BeatSync/pkg/models"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service beatsync.Service
	config  *ServerConfig
	log     beatsync.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service beatsync.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "BeatSync API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":         "GET /health",
			"metrics":        "GET /api/health/metrics",
			"runs":           "GET /api/runs",
			"getRun":         "GET /api/runs/{id}",
			"deleteRun":      "DELETE /api/runs/{id}",
			"analyzeFile":    "POST /api/analyze",
			"analyzeYouTube": "POST /api/analyze/youtube",
			"align":          "POST /api/align",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns()
	if err != nil {
		s.log.Errorf("Failed to get run count: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		RunCount:     len(runs),
		SampleRate:   s.config.SampleRate,
	})
}

// handleRuns handles GET /api/runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	runs, err := s.service.ListRuns()
	if err != nil {
		s.log.Errorf("Failed to list runs: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(&run)
	}
	s.respondJSON(w, http.StatusOK, ListRunsResponse{Runs: dtos, Count: len(dtos)})
}

// handleRun handles GET and DELETE /api/runs/{id}
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if runID == "" || strings.Contains(runID, "/") {
		s.respondError(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := s.service.GetRun(runID)
		if err != nil {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		beats, err := s.service.GetBeats(runID)
		if err != nil {
			s.log.Errorf("Failed to get beats: %v", err)
			s.respondError(w, http.StatusInternalServerError, "Failed to load beat timeline")
			return
		}
		s.respondJSON(w, http.StatusOK, RunDetailResponse{Run: toRunDTO(run), BeatTimes: beats})

	case http.MethodDelete:
		if err := s.service.DeleteRun(runID); err != nil {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, DeleteRunResponse{Message: "run deleted", ID: runID})

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleAnalyze handles POST /api/analyze (multipart upload)
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(200 << 20); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		s.log.Errorf("Failed to get media file: %v", err)
		s.respondError(w, http.StatusBadRequest, "media file is required")
		return
	}
	defer file.Close()

	tempFile := filepath.Join(s.config.TempDir, fmt.Sprintf("upload_%d_%s", time.Now().UnixNano(), header.Filename))
	out, err := os.Create(tempFile)
	if err != nil {
		s.log.Errorf("Failed to create temp file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	defer os.Remove(tempFile)

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		s.log.Errorf("Failed to save file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
		return
	}
	out.Close()

	result, err := s.service.AnalyzeFile(r.Context(), tempFile)
	if err != nil {
		s.log.Errorf("Analysis failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	s.respondJSON(w, http.StatusCreated, toAnalyzeResponse(result))
}

// handleAnalyzeYouTube handles POST /api/analyze/youtube
func (s *Server) handleAnalyzeYouTube(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AnalyzeYouTubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.AnalyzeYouTube(r.Context(), req.YouTubeURL)
	if err != nil {
		s.log.Errorf("YouTube analysis failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	s.respondJSON(w, http.StatusCreated, toAnalyzeResponse(result))
}

// handleAlign handles POST /api/align
func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AlignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var report *models.AlignmentReport
	var err error
	if req.RunID != "" {
		report, err = s.service.AlignEvents(r.Context(), req.RunID, req.EventTimes, req.SearchRangeMs)
	} else {
		report, err = s.service.AlignTimes(req.EventTimes, req.BeatTimes, req.SearchRangeMs)
	}
	if err != nil {
		s.log.Errorf("Alignment failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Alignment failed")
		return
	}

	s.respondJSON(w, http.StatusOK, AlignResponse{
		RunID:        report.RunID,
		LagMs:        report.LagMs,
		MedianAbsMs:  report.MedianAbsMs,
		MeanSignedMs: report.MeanSignedMs,
		EventCount:   report.EventCount,
		NearestBeats: report.NearestBeats,
		ErrorsMs:     report.ErrorsMs,
	})
}

func toRunDTO(run *models.Run) RunDTO {
	return RunDTO{
		ID:         run.ID,
		SourcePath: run.SourcePath,
		TempoBPM:   run.TempoBPM,
		SampleRate: run.SampleRate,
		HopLength:  run.HopLength,
		DurationMs: run.DurationMs,
		BeatCount:  run.BeatCount,
	}
}

func toAnalyzeResponse(result *models.AnalysisResult) AnalyzeResponse {
	return AnalyzeResponse{
		RunID:      result.Run.ID,
		Source:     result.Run.SourcePath,
		TempoBPM:   result.Run.TempoBPM,
		BeatCount:  result.Run.BeatCount,
		DurationMs: result.Run.DurationMs,
		BeatTimes:  result.BeatTimes,
	}
}
