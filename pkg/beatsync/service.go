package beatsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/kavyagupta/BeatSync/internal/audio"
	"github.com/kavyagupta/BeatSync/pkg/beatsync/align"
	"github.com/kavyagupta/BeatSync/pkg/beatsync/beat"
	"github.com/kavyagupta/BeatSync/pkg/beatsync/storage"
	"github.com/kavyagupta/BeatSync/pkg/logger"
	"github.com/kavyagupta/BeatSync/pkg/models"
	"github.com/kavyagupta/BeatSync/pkg/utils"
)

// beatsyncService is the default implementation of the Service interface.
type beatsyncService struct {
	storage Storage
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Set default logger if none provided
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	// Create or use provided storage
	var stor Storage
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		client, err := storage.NewDBClientWithPath(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
		stor = client
	}

	return &beatsyncService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// AnalyzeFile extracts mono audio from a media file, runs beat tracking over
// it and stores the resulting run and beat timeline.
func (s *beatsyncService) AnalyzeFile(ctx context.Context, path string) (*models.AnalysisResult, error) {
	s.log.Infof("Analyzing audio source: %s", path)

	// 1. Extract a mono WAV at the analysis rate
	wavPath, err := audio.ExtractMonoWAV(ctx, path, s.config.TempDir, audio.ExtractConfig{
		SampleRate: s.config.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("audio extraction failed: %w", err)
	}
	defer utils.DeleteFile(wavPath)

	// 2. Decode to float samples
	samples, sampleRate, err := audio.ReadWAV(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV file: %w", err)
	}

	// 3. Beat tracking
	res, err := beat.Track(samples, sampleRate, s.config.HopLength)
	if err != nil {
		return nil, fmt.Errorf("beat tracking failed: %w", err)
	}
	if res.TempoBPM == 0 {
		s.log.Warnf("No onset activity detected in %s", path)
	} else {
		s.log.Infof("Estimated tempo: %.1f BPM | Beats: %d", res.TempoBPM, len(res.BeatTimes))
	}

	// 4. Persist the run
	run := &models.Run{
		SourcePath: path,
		TempoBPM:   res.TempoBPM,
		SampleRate: sampleRate,
		HopLength:  s.config.HopLength,
		DurationMs: len(samples) * 1000 / sampleRate,
		BeatCount:  len(res.BeatTimes),
	}
	runID, err := s.storage.RegisterRun(run)
	if err != nil {
		return nil, fmt.Errorf("failed to register run: %w", err)
	}
	run.ID = runID

	if err := s.storage.StoreBeats(runID, res.BeatTimes); err != nil {
		s.storage.DeleteRunByID(runID) // Rollback
		return nil, fmt.Errorf("failed to store beats: %w", err)
	}

	s.log.Infof("Stored run %s", runID)
	return &models.AnalysisResult{
		Run:           *run,
		BeatTimes:     res.BeatTimes,
		OnsetEnvelope: res.OnsetEnvelope,
	}, nil
}

// AnalyzeYouTube downloads the audio track of a YouTube video and analyzes it.
func (s *beatsyncService) AnalyzeYouTube(ctx context.Context, url string) (*models.AnalysisResult, error) {
	if !utils.IsYouTubeURL(url) {
		return nil, fmt.Errorf("not a YouTube URL: %s", url)
	}

	s.log.Infof("Downloading audio from %s", url)
	path, err := audio.DownloadAudio(ctx, url, s.config.TempDir)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer utils.DeleteFile(path)

	result, err := s.AnalyzeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	result.Run.SourcePath = url
	return result, nil
}

// AlignEvents aligns caller-supplied event times against the beat timeline
// of a stored run and persists the resulting report.
func (s *beatsyncService) AlignEvents(ctx context.Context, runID string, eventTimes []float64, searchMs float64) (*models.AlignmentReport, error) {
	beats, err := s.storage.GetBeats(runID)
	if err != nil {
		return nil, err
	}

	report, err := s.AlignTimes(eventTimes, beats, searchMs)
	if err != nil {
		return nil, err
	}
	report.RunID = runID

	if err := s.storage.StoreAlignment(report); err != nil {
		return nil, fmt.Errorf("failed to store alignment: %w", err)
	}

	s.log.Infof("Aligned %d events against run %s: lag %.1f ms, median |error| %.1f ms",
		report.EventCount, runID, report.LagMs, report.MedianAbsMs)
	return report, nil
}

// AlignTimes is the storage-free alignment pass: it finds the best constant
// lag for the events, applies it and reports the corrected errors.
func (s *beatsyncService) AlignTimes(eventTimes, beatTimes []float64, searchMs float64) (*models.AlignmentReport, error) {
	if searchMs == 0 {
		searchMs = s.config.SearchRangeMs
	}

	lagMs, err := align.BestLag(eventTimes, beatTimes, searchMs)
	if err != nil {
		return nil, err
	}

	shifted := make([]float64, len(eventTimes))
	for i, t := range eventTimes {
		shifted[i] = t + lagMs/1000.0
	}
	nearest, errsMs := align.NearestBeats(shifted, beatTimes)

	return &models.AlignmentReport{
		LagMs:        lagMs,
		MedianAbsMs:  align.MedianAbs(errsMs),
		MeanSignedMs: align.Mean(errsMs),
		EventCount:   len(eventTimes),
		NearestBeats: nearest,
		ErrorsMs:     errsMs,
	}, nil
}

func (s *beatsyncService) GetRun(runID string) (*models.Run, error) {
	if runID == "" {
		return nil, errors.New("run ID is required")
	}
	return s.storage.GetRunByID(runID)
}

func (s *beatsyncService) GetBeats(runID string) ([]float64, error) {
	if runID == "" {
		return nil, errors.New("run ID is required")
	}
	return s.storage.GetBeats(runID)
}

func (s *beatsyncService) ListRuns() ([]models.Run, error) {
	return s.storage.ListRuns()
}

func (s *beatsyncService) DeleteRun(runID string) error {
	if runID == "" {
		return errors.New("run ID is required")
	}
	if _, err := s.storage.GetRunByID(runID); err != nil {
		return err
	}
	return s.storage.DeleteRunByID(runID)
}

func (s *beatsyncService) Close() error {
	return s.storage.Close()
}
