package main

import (
	"fmt"
)

// Limits for inline alignment requests.
const (
	// MaxEventTimes caps the number of event timestamps per align request.
	MaxEventTimes = 100000

	// MaxSearchRangeMs caps the lag search window.
	MaxSearchRangeMs = 10000.0
)

// AlignRequest is the request body for POST /api/align. Beats come either
// from a stored run (run_id) or inline (beat_times); exactly one must be set.
type AlignRequest struct {
	RunID         string    `json:"run_id,omitempty"`
	BeatTimes     []float64 `json:"beat_times,omitempty"`
	EventTimes    []float64 `json:"event_times"`
	SearchRangeMs float64   `json:"search_range_ms,omitempty"`
}

// Validate checks if the request is valid
func (r *AlignRequest) Validate() error {
	if (r.RunID == "") == (len(r.BeatTimes) == 0) {
		return fmt.Errorf("exactly one of run_id or beat_times is required")
	}
	if len(r.EventTimes) > MaxEventTimes {
		return fmt.Errorf("too many event times: %d (maximum: %d)", len(r.EventTimes), MaxEventTimes)
	}
	if r.SearchRangeMs < 0 || r.SearchRangeMs > MaxSearchRangeMs {
		return fmt.Errorf("search_range_ms out of range: %f", r.SearchRangeMs)
	}
	return nil
}

// AlignResponse reports the chosen lag and corrected errors.
type AlignResponse struct {
	RunID        string    `json:"run_id,omitempty"`
	LagMs        float64   `json:"lag_ms"`
	MedianAbsMs  float64   `json:"median_abs_ms"`
	MeanSignedMs float64   `json:"mean_signed_ms"`
	EventCount   int       `json:"event_count"`
	NearestBeats []float64 `json:"nearest_beats"`
	ErrorsMs     []float64 `json:"errors_ms"`
}

// AnalyzeYouTubeRequest is the request body for POST /api/analyze/youtube
type AnalyzeYouTubeRequest struct {
	YouTubeURL string `json:"youtube_url"`
}

// Validate checks if the request is valid
func (r *AnalyzeYouTubeRequest) Validate() error {
	if r.YouTubeURL == "" {
		return fmt.Errorf("youtube_url is required")
	}
	return nil
}

// AnalyzeResponse is the response for successful analysis
type AnalyzeResponse struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	TempoBPM   float64   `json:"tempo_bpm"`
	BeatCount  int       `json:"beat_count"`
	DurationMs int       `json:"duration_ms"`
	BeatTimes  []float64 `json:"beat_times"`
}

// RunDTO represents a stored run in API responses
type RunDTO struct {
	ID         string  `json:"id"`
	SourcePath string  `json:"source_path"`
	TempoBPM   float64 `json:"tempo_bpm"`
	SampleRate int     `json:"sample_rate"`
	HopLength  int     `json:"hop_length"`
	DurationMs int     `json:"duration_ms"`
	BeatCount  int     `json:"beat_count"`
}

// ListRunsResponse is the response for GET /api/runs
type ListRunsResponse struct {
	Runs  []RunDTO `json:"runs"`
	Count int      `json:"count"`
}

// RunDetailResponse is the response for GET /api/runs/{id}
type RunDetailResponse struct {
	Run       RunDTO    `json:"run"`
	BeatTimes []float64 `json:"beat_times"`
}

// DeleteRunResponse is the response for DELETE /api/runs/{id}
type DeleteRunResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MetricsResponse provides server health and database metrics
type MetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	RunCount     int    `json:"run_count"`
	SampleRate   int    `json:"sample_rate"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
