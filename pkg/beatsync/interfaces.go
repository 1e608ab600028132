package beatsync

import (
	"context"

	"github.com/kavyagupta/BeatSync/pkg/models"
)

// Service is the public surface of the temporal-alignment engine: beat
// analysis of audio sources, alignment of event sequences against stored or
// caller-supplied beat timelines, and run management.
type Service interface {
	AnalyzeFile(ctx context.Context, path string) (*models.AnalysisResult, error)
	AnalyzeYouTube(ctx context.Context, url string) (*models.AnalysisResult, error)
	AlignEvents(ctx context.Context, runID string, eventTimes []float64, searchMs float64) (*models.AlignmentReport, error)
	AlignTimes(eventTimes, beatTimes []float64, searchMs float64) (*models.AlignmentReport, error)
	GetRun(runID string) (*models.Run, error)
	GetBeats(runID string) ([]float64, error)
	ListRuns() ([]models.Run, error)
	DeleteRun(runID string) error
	Close() error
}

type Storage interface {
	RegisterRun(run *models.Run) (string, error)
	StoreBeats(runID string, beatTimes []float64) error
	GetRunByID(runID string) (*models.Run, error)
	GetBeats(runID string) ([]float64, error)
	ListRuns() ([]models.Run, error)
	DeleteRunByID(runID string) error
	StoreAlignment(report *models.AlignmentReport) error
	ListAlignments(runID string) ([]models.AlignmentReport, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
