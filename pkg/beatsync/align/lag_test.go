package align

import (
	"math"
	"testing"
)

func TestBestLagEmptyInputs(t *testing.T) {
	beats := []float64{1.0, 2.0}

	lag, err := BestLag(nil, beats, 300)
	if err != nil || lag != 0.0 {
		t.Errorf("empty events: got (%f, %v), want (0, nil)", lag, err)
	}

	lag, err = BestLag([]float64{1.0}, nil, 300)
	if err != nil || lag != 0.0 {
		t.Errorf("empty beats: got (%f, %v), want (0, nil)", lag, err)
	}
}

func TestBestLagInvalidSearchRange(t *testing.T) {
	if _, err := BestLag([]float64{1.0}, []float64{1.0}, 0); err != ErrBadSearchRange {
		t.Errorf("search 0: got %v, want ErrBadSearchRange", err)
	}
	if _, err := BestLag([]float64{1.0}, []float64{1.0}, -5); err != ErrBadSearchRange {
		t.Errorf("search -5: got %v, want ErrBadSearchRange", err)
	}
}

func TestBestLagWithinRange(t *testing.T) {
	beats := []float64{0.5, 1.0, 1.5, 2.0, 2.5}
	events := []float64{0.1, 0.7, 1.9, 2.2}

	for _, search := range []float64{50, 300, 1000} {
		lag, err := BestLag(events, beats, search)
		if err != nil {
			t.Fatalf("BestLag(search=%f) failed: %v", search, err)
		}
		if lag < -search || lag > search {
			t.Errorf("lag %f outside [-%f, %f]", lag, search, search)
		}
	}
}

func TestBestLagCorrectsConstantOffset(t *testing.T) {
	beats := []float64{1.0, 2.0, 3.0, 4.0}
	events := []float64{1.05, 2.05, 3.05, 4.05} // all 50 ms late

	lag, err := BestLag(events, beats, 100)
	if err != nil {
		t.Fatalf("BestLag failed: %v", err)
	}
	if math.Abs(lag+50.0) > 5.0 {
		t.Errorf("lag = %f, want near -50 (within one grid step)", lag)
	}

	shifted := make([]float64, len(events))
	for i, e := range events {
		shifted[i] = e + lag/1000.0
	}
	_, errs := NearestBeats(shifted, beats)
	if med := MedianAbs(errs); med > 5.0 {
		t.Errorf("median |error| after correction = %f ms, want <= 5", med)
	}
}

func TestBestLagAlreadyAligned(t *testing.T) {
	beats := []float64{1.0, 2.0, 3.0}
	events := []float64{1.0, 2.0, 3.0}

	lag, err := BestLag(events, beats, 300)
	if err != nil {
		t.Fatalf("BestLag failed: %v", err)
	}
	if lag != 0.0 {
		t.Errorf("lag on perfectly aligned input = %f, want 0", lag)
	}
}

func TestMedianAbs(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{-7}, 7},
		{"odd", []float64{3, -1, 2}, 2},
		{"even", []float64{-4, 1, 2, 3}, 2.5},
	}
	for _, tt := range tests {
		if got := MedianAbs(tt.xs); got != tt.want {
			t.Errorf("%s: MedianAbs = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %f, want 0", got)
	}
	if got := Mean([]float64{1, 2, 3}); got != 2 {
		t.Errorf("Mean = %f, want 2", got)
	}
	if got := Mean([]float64{-10, 10}); got != 0 {
		t.Errorf("Mean = %f, want 0", got)
	}
}
