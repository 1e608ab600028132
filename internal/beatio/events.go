package beatio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// ReadEvents parses a one-column CSV of event timestamps in seconds (e.g.
// exported foot-strike times). A single non-numeric header row is tolerated.
func ReadEvents(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading events csv: %w", err)
	}

	events := make([]float64, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("%s: bad event time %q: %w", path, row[0], err)
		}
		events = append(events, t)
	}
	return events, nil
}
