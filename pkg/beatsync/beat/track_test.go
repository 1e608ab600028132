package beat

import (
	"math"
	"testing"
)

// clickTrack synthesizes a percussive click train at the given tempo: short
// exponentially decaying 1 kHz bursts on every beat.
func clickTrack(durationSec, bpm float64, sampleRate int) []float64 {
	n := int(durationSec * float64(sampleRate))
	samples := make([]float64, n)
	interval := 60.0 / bpm
	for t := 0.0; t < durationSec; t += interval {
		start := int(t * float64(sampleRate))
		for i := 0; i < 512 && start+i < n; i++ {
			decay := math.Exp(-float64(i) / 64.0)
			samples[start+i] += decay * math.Sin(2*math.Pi*1000*float64(i)/float64(sampleRate))
		}
	}
	return samples
}

func TestOnsetStrengthLength(t *testing.T) {
	sampleRate := 22050
	hop := 512
	samples := clickTrack(1.0, 120, sampleRate)

	env, err := OnsetStrength(samples, sampleRate, hop)
	if err != nil {
		t.Fatalf("OnsetStrength failed: %v", err)
	}

	want := len(samples)/hop + 1
	if len(env) != want {
		t.Errorf("envelope length = %d, want %d", len(env), want)
	}
	for i, v := range env {
		if v < 0 {
			t.Errorf("envelope[%d] = %f, want non-negative", i, v)
		}
	}
}

func TestOnsetStrengthEmpty(t *testing.T) {
	env, err := OnsetStrength(nil, 22050, 512)
	if err != nil {
		t.Fatalf("OnsetStrength on empty input failed: %v", err)
	}
	if len(env) != 0 {
		t.Errorf("expected empty envelope, got %d frames", len(env))
	}
}

func TestOnsetStrengthInvalidParams(t *testing.T) {
	samples := []float64{0.1, 0.2, 0.3}

	if _, err := OnsetStrength(samples, 0, 512); err != ErrBadSampleRate {
		t.Errorf("sample rate 0: got %v, want ErrBadSampleRate", err)
	}
	if _, err := OnsetStrength(samples, -1, 512); err != ErrBadSampleRate {
		t.Errorf("sample rate -1: got %v, want ErrBadSampleRate", err)
	}
	if _, err := OnsetStrength(samples, 22050, 0); err != ErrBadHopLength {
		t.Errorf("hop 0: got %v, want ErrBadHopLength", err)
	}
}

func TestTrackClickTrack(t *testing.T) {
	sampleRate := 22050
	hop := 512
	samples := clickTrack(8.0, 120, sampleRate)

	res, err := Track(samples, sampleRate, hop)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	// Tempo should land near 120 BPM; lag quantization at this frame rate
	// allows a few BPM of slack.
	if res.TempoBPM < 100 || res.TempoBPM > 145 {
		t.Errorf("tempo = %.1f BPM, want near 120", res.TempoBPM)
	}

	if len(res.BeatTimes) < 8 {
		t.Errorf("got %d beats over 8 s at 120 BPM, want at least 8", len(res.BeatTimes))
	}
	for i := 1; i < len(res.BeatTimes); i++ {
		if res.BeatTimes[i] < res.BeatTimes[i-1] {
			t.Fatalf("beat times not non-decreasing at %d: %f < %f", i, res.BeatTimes[i], res.BeatTimes[i-1])
		}
	}
	for i, bt := range res.BeatTimes {
		if bt < 0 {
			t.Errorf("beat time %d is negative: %f", i, bt)
		}
	}

	want := len(samples)/hop + 1
	if len(res.OnsetEnvelope) != want {
		t.Errorf("onset envelope length = %d, want %d", len(res.OnsetEnvelope), want)
	}
}

func TestTrackSilence(t *testing.T) {
	samples := make([]float64, 2*22050)

	res, err := Track(samples, 22050, 512)
	if err != nil {
		t.Fatalf("Track on silence failed: %v", err)
	}
	if res.TempoBPM != 0 {
		t.Errorf("tempo on silence = %f, want 0", res.TempoBPM)
	}
	if len(res.BeatTimes) != 0 {
		t.Errorf("got %d beats on silence, want 0", len(res.BeatTimes))
	}
}

func TestTrackEmpty(t *testing.T) {
	res, err := Track(nil, 22050, 512)
	if err != nil {
		t.Fatalf("Track on empty input failed: %v", err)
	}
	if res.TempoBPM != 0 || len(res.BeatTimes) != 0 {
		t.Errorf("expected degenerate zero result, got tempo %f with %d beats", res.TempoBPM, len(res.BeatTimes))
	}
}

func TestTrackDeterministic(t *testing.T) {
	samples := clickTrack(4.0, 100, 22050)

	first, err := Track(samples, 22050, 512)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	second, err := Track(samples, 22050, 512)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	if first.TempoBPM != second.TempoBPM {
		t.Errorf("tempo differs across runs: %f vs %f", first.TempoBPM, second.TempoBPM)
	}
	if len(first.BeatTimes) != len(second.BeatTimes) {
		t.Fatalf("beat count differs across runs: %d vs %d", len(first.BeatTimes), len(second.BeatTimes))
	}
	for i := range first.BeatTimes {
		if first.BeatTimes[i] != second.BeatTimes[i] {
			t.Errorf("beat %d differs across runs: %f vs %f", i, first.BeatTimes[i], second.BeatTimes[i])
		}
	}
}
