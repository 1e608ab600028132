package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kavyagupta/BeatSync/pkg/models"
)

const DefaultDBFile = "beatsync.sqlite3"
const errDBClientNil = "db client is nil"

// DBClient persists analysis runs, their beat timelines and alignment
// reports in a SQLite database via GORM.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Run struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	SourcePath string `gorm:"index:idx_run_source"`
	TempoBPM   float64
	SampleRate int
	HopLength  int
	DurationMs int
	BeatCount  int
	CreatedAt  time.Time
}

type Beat struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	RunID   string `gorm:"type:varchar(36);index:idx_beat_run"`
	Seq     int
	TimeSec float64
}

type Alignment struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	RunID        string `gorm:"type:varchar(36);index:idx_alignment_run"`
	LagMs        float64
	MedianAbsMs  float64
	MeanSignedMs float64
	EventCount   int
	CreatedAt    time.Time
}

// NewDBClient opens the database at BEATSYNC_DB_PATH, falling back to
// DefaultDBFile in the working directory.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("BEATSYNC_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Run{}, &Beat{}, &Alignment{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RegisterRun stores a new run row and returns its generated ID.
func (c *DBClient) RegisterRun(run *models.Run) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	row := Run{
		ID:         uuid.NewString(),
		SourcePath: run.SourcePath,
		TempoBPM:   run.TempoBPM,
		SampleRate: run.SampleRate,
		HopLength:  run.HopLength,
		DurationMs: run.DurationMs,
		BeatCount:  run.BeatCount,
	}
	if err := c.DB.Create(&row).Error; err != nil {
		return "", fmt.Errorf("creating run: %w", err)
	}
	return row.ID, nil
}

// StoreBeats writes the full beat timeline of a run in one transaction.
func (c *DBClient) StoreBeats(runID string, beatTimes []float64) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	if len(beatTimes) == 0 {
		return nil
	}

	rows := make([]Beat, len(beatTimes))
	for i, t := range beatTimes {
		rows[i] = Beat{RunID: runID, Seq: i, TimeSec: t}
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("creating beats: %w", err)
		}
		return nil
	})
}

func (c *DBClient) GetRunByID(runID string) (*models.Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var row Run
	if err := c.DB.First(&row, "id = ?", runID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	run := toDomainRun(&row)
	return &run, nil
}

// GetBeats returns the beat timeline of a run in sequence order.
func (c *DBClient) GetBeats(runID string) ([]float64, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []Beat
	if err := c.DB.Where("run_id = ?", runID).Order("seq asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying beats: %w", err)
	}
	beats := make([]float64, len(rows))
	for i, r := range rows {
		beats[i] = r.TimeSec
	}
	return beats, nil
}

func (c *DBClient) ListRuns() ([]models.Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []Run
	if err := c.DB.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	runs := make([]models.Run, len(rows))
	for i := range rows {
		runs[i] = toDomainRun(&rows[i])
	}
	return runs, nil
}

// DeleteRunByID removes a run along with its beats and alignments.
func (c *DBClient) DeleteRunByID(runID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", runID).Delete(&Beat{}).Error; err != nil {
			return fmt.Errorf("deleting beats: %w", err)
		}
		if err := tx.Where("run_id = ?", runID).Delete(&Alignment{}).Error; err != nil {
			return fmt.Errorf("deleting alignments: %w", err)
		}
		if err := tx.Delete(&Run{}, "id = ?", runID).Error; err != nil {
			return fmt.Errorf("deleting run: %w", err)
		}
		return nil
	})
}

func (c *DBClient) StoreAlignment(report *models.AlignmentReport) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	row := Alignment{
		RunID:        report.RunID,
		LagMs:        report.LagMs,
		MedianAbsMs:  report.MedianAbsMs,
		MeanSignedMs: report.MeanSignedMs,
		EventCount:   report.EventCount,
	}
	if err := c.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("creating alignment: %w", err)
	}
	return nil
}

func (c *DBClient) ListAlignments(runID string) ([]models.AlignmentReport, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []Alignment
	if err := c.DB.Where("run_id = ?", runID).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing alignments: %w", err)
	}
	reports := make([]models.AlignmentReport, len(rows))
	for i, r := range rows {
		reports[i] = models.AlignmentReport{
			RunID:        r.RunID,
			LagMs:        r.LagMs,
			MedianAbsMs:  r.MedianAbsMs,
			MeanSignedMs: r.MeanSignedMs,
			EventCount:   r.EventCount,
		}
	}
	return reports, nil
}

func toDomainRun(row *Run) models.Run {
	return models.Run{
		ID:         row.ID,
		SourcePath: row.SourcePath,
		TempoBPM:   row.TempoBPM,
		SampleRate: row.SampleRate,
		HopLength:  row.HopLength,
		DurationMs: row.DurationMs,
		BeatCount:  row.BeatCount,
	}
}
