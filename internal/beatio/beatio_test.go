package beatio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReadBeatsRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beats", "sample.beats.csv")
	tempo := 128.1234
	beats := []float64{0.5, 1.0, 1.5, 2.0}

	if err := WriteBeats(path, tempo, beats); err != nil {
		t.Fatalf("WriteBeats failed: %v", err)
	}

	gotTempo, gotBeats, err := ReadBeats(path)
	if err != nil {
		t.Fatalf("ReadBeats failed: %v", err)
	}
	if gotTempo != tempo {
		t.Errorf("tempo = %f, want %f", gotTempo, tempo)
	}
	if len(gotBeats) != len(beats) {
		t.Fatalf("got %d beats, want %d", len(gotBeats), len(beats))
	}
	for i := range beats {
		if gotBeats[i] != beats[i] {
			t.Errorf("beat %d = %f, want %f", i, gotBeats[i], beats[i])
		}
	}
}

func TestWriteBeatsPrecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "precision.beats.csv")

	if err := WriteBeats(path, 123.45678, []float64{1.23456789}); err != nil {
		t.Fatalf("WriteBeats failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	content := string(data)

	// tempo rounds to 4 decimals, beat times to 6
	if !strings.Contains(content, "tempo_bpm,123.4568") {
		t.Errorf("missing 4-decimal tempo row in:\n%s", content)
	}
	if !strings.Contains(content, "1.234568") {
		t.Errorf("missing 6-decimal beat row in:\n%s", content)
	}
}

func TestWriteBeatsEmptyTimeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.beats.csv")

	if err := WriteBeats(path, 0, nil); err != nil {
		t.Fatalf("WriteBeats failed: %v", err)
	}

	tempo, beats, err := ReadBeats(path)
	if err != nil {
		t.Fatalf("ReadBeats failed: %v", err)
	}
	if tempo != 0 || len(beats) != 0 {
		t.Errorf("got tempo %f with %d beats, want zeroes", tempo, len(beats))
	}
}

func TestReadBeatsRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("1.0\n2.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := ReadBeats(path); err == nil {
		t.Error("expected error for CSV without tempo_bpm header")
	}
}

func TestReadEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte("event_time_s\n1.5\n2.25\n3.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	events, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	want := []float64{1.5, 2.25, 3.0}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %f, want %f", i, events[i], want[i])
		}
	}
}

func TestReadEventsWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte("0.5\n1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	events, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(events) != 2 || events[0] != 0.5 || events[1] != 1.0 {
		t.Errorf("unexpected events: %v", events)
	}
}

func TestReadEventsRejectsBadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte("1.0\nnot-a-number\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadEvents(path); err == nil {
		t.Error("expected error for non-numeric row past the header")
	}
}
