package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kavyagupta/BeatSync/pkg/models"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test_beatsync.sqlite3")

	client, err := NewDBClientWithPath(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
	})

	return client, dbPath
}

func registerTestRun(t *testing.T, client *DBClient) string {
	t.Helper()

	runID, err := client.RegisterRun(&models.Run{
		SourcePath: "videos/example.mp4",
		TempoBPM:   121.5,
		SampleRate: 22050,
		HopLength:  512,
		DurationMs: 30000,
		BeatCount:  3,
	})
	if err != nil {
		t.Fatalf("RegisterRun failed: %v", err)
	}
	return runID
}

func TestNewDBClientFromEnv(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "env_beatsync.sqlite3")

	oldPath := os.Getenv("BEATSYNC_DB_PATH")
	os.Setenv("BEATSYNC_DB_PATH", dbPath)
	t.Cleanup(func() {
		if oldPath == "" {
			os.Unsetenv("BEATSYNC_DB_PATH")
		} else {
			os.Setenv("BEATSYNC_DB_PATH", oldPath)
		}
	})

	client, err := NewDBClient()
	if err != nil {
		t.Fatalf("NewDBClient failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if client.DB == nil {
		t.Fatal("Expected non-nil GORM DB handle")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

func TestRegisterAndGetRun(t *testing.T) {
	client, _ := setupTestDB(t)

	runID := registerTestRun(t, client)
	if runID == "" {
		t.Fatal("Expected non-empty run ID")
	}

	run, err := client.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID failed: %v", err)
	}
	if run.ID != runID {
		t.Errorf("run ID = %s, want %s", run.ID, runID)
	}
	if run.TempoBPM != 121.5 {
		t.Errorf("tempo = %f, want 121.5", run.TempoBPM)
	}
	if run.SourcePath != "videos/example.mp4" {
		t.Errorf("source = %s, want videos/example.mp4", run.SourcePath)
	}
}

func TestGetRunNotFound(t *testing.T) {
	client, _ := setupTestDB(t)

	if _, err := client.GetRunByID("missing-id"); err == nil {
		t.Error("expected error for unknown run ID")
	}
}

func TestStoreAndGetBeats(t *testing.T) {
	client, _ := setupTestDB(t)
	runID := registerTestRun(t, client)

	beats := []float64{0.464399, 0.951020, 1.439093}
	if err := client.StoreBeats(runID, beats); err != nil {
		t.Fatalf("StoreBeats failed: %v", err)
	}

	got, err := client.GetBeats(runID)
	if err != nil {
		t.Fatalf("GetBeats failed: %v", err)
	}
	if len(got) != len(beats) {
		t.Fatalf("got %d beats, want %d", len(got), len(beats))
	}
	for i := range beats {
		if got[i] != beats[i] {
			t.Errorf("beat %d = %f, want %f (order must be preserved)", i, got[i], beats[i])
		}
	}
}

func TestStoreBeatsEmpty(t *testing.T) {
	client, _ := setupTestDB(t)
	runID := registerTestRun(t, client)

	if err := client.StoreBeats(runID, nil); err != nil {
		t.Fatalf("StoreBeats with empty timeline failed: %v", err)
	}

	got, err := client.GetBeats(runID)
	if err != nil {
		t.Fatalf("GetBeats failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d beats, want 0", len(got))
	}
}

func TestListRuns(t *testing.T) {
	client, _ := setupTestDB(t)

	first := registerTestRun(t, client)
	second := registerTestRun(t, client)

	runs, err := client.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	ids := map[string]bool{}
	for _, r := range runs {
		ids[r.ID] = true
	}
	if !ids[first] || !ids[second] {
		t.Errorf("listed runs %v missing registered IDs %s, %s", ids, first, second)
	}
}

func TestDeleteRunCascades(t *testing.T) {
	client, _ := setupTestDB(t)
	runID := registerTestRun(t, client)

	if err := client.StoreBeats(runID, []float64{0.5, 1.0}); err != nil {
		t.Fatalf("StoreBeats failed: %v", err)
	}
	if err := client.StoreAlignment(&models.AlignmentReport{
		RunID: runID, LagMs: -50, MedianAbsMs: 2.5, MeanSignedMs: -1.0, EventCount: 10,
	}); err != nil {
		t.Fatalf("StoreAlignment failed: %v", err)
	}

	if err := client.DeleteRunByID(runID); err != nil {
		t.Fatalf("DeleteRunByID failed: %v", err)
	}

	if _, err := client.GetRunByID(runID); err == nil {
		t.Error("run still present after delete")
	}
	beats, err := client.GetBeats(runID)
	if err != nil {
		t.Fatalf("GetBeats failed: %v", err)
	}
	if len(beats) != 0 {
		t.Errorf("%d beats survived the delete", len(beats))
	}
	aligns, err := client.ListAlignments(runID)
	if err != nil {
		t.Fatalf("ListAlignments failed: %v", err)
	}
	if len(aligns) != 0 {
		t.Errorf("%d alignments survived the delete", len(aligns))
	}
}

func TestStoreAndListAlignments(t *testing.T) {
	client, _ := setupTestDB(t)
	runID := registerTestRun(t, client)

	report := &models.AlignmentReport{
		RunID:        runID,
		LagMs:        -45.0,
		MedianAbsMs:  3.2,
		MeanSignedMs: -0.8,
		EventCount:   24,
	}
	if err := client.StoreAlignment(report); err != nil {
		t.Fatalf("StoreAlignment failed: %v", err)
	}

	got, err := client.ListAlignments(runID)
	if err != nil {
		t.Fatalf("ListAlignments failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d alignments, want 1", len(got))
	}
	if got[0].LagMs != -45.0 || got[0].EventCount != 24 {
		t.Errorf("alignment roundtrip mismatch: %+v", got[0])
	}
}
