// Package beatio reads and writes the two-section beats CSV format: a
// header row carrying the tempo, a section marker, then one beat timestamp
// per row. Tempo is written with 4 decimals and beat times with 6, which
// downstream tooling depends on.
package beatio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// WriteBeats writes tempo and beat timestamps to path, creating parent
// directories as needed.
func WriteBeats(path string, tempoBPM float64, beatTimes []float64) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating beats dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"tempo_bpm", fmt.Sprintf("%.4f", tempoBPM)})
	w.Write([]string{"beat_time_s"})
	for _, t := range beatTimes {
		w.Write([]string{fmt.Sprintf("%.6f", t)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing beats csv: %w", err)
	}
	return f.Close()
}

// ReadBeats parses a beats CSV written by WriteBeats.
func ReadBeats(path string) (tempoBPM float64, beatTimes []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // header row has two fields, beat rows one
	rows, err := r.ReadAll()
	if err != nil {
		return 0, nil, fmt.Errorf("reading beats csv: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) < 2 || rows[0][0] != "tempo_bpm" {
		return 0, nil, fmt.Errorf("%s: missing tempo_bpm header", path)
	}

	tempoBPM, err = strconv.ParseFloat(rows[0][1], 64)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: bad tempo value %q: %w", path, rows[0][1], err)
	}

	beatTimes = make([]float64, 0, len(rows))
	for _, row := range rows[1:] {
		if len(row) == 0 || row[0] == "beat_time_s" {
			continue
		}
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: bad beat time %q: %w", path, row[0], err)
		}
		beatTimes = append(beatTimes, t)
	}
	return tempoBPM, beatTimes, nil
}
