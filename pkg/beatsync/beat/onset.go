package beat

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Analysis defaults.
const (
	DefaultHopLength = 512
	windowSize       = 2048
)

var (
	ErrBadSampleRate = errors.New("beat: sample rate must be positive")
	ErrBadHopLength  = errors.New("beat: hop length must be positive")
)

// hann returns a Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// OnsetStrength computes a frame-wise onset strength envelope: the half-wave
// rectified flux of the log-magnitude spectrum between consecutive analysis
// frames, averaged over frequency bins. Frames are centered on multiples of
// hopLength with zero padding at the edges, so the envelope has
// floor(len(samples)/hopLength)+1 entries. All values are non-negative; the
// first frame has no predecessor and is always 0.
//
// An empty sample buffer yields an empty envelope. Non-positive sampleRate
// or hopLength is a precondition violation and returns an error.
func OnsetStrength(samples []float64, sampleRate, hopLength int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, ErrBadSampleRate
	}
	if hopLength <= 0 {
		return nil, ErrBadHopLength
	}
	if len(samples) == 0 {
		return nil, nil
	}

	nFrames := len(samples)/hopLength + 1
	half := windowSize / 2
	win := hann(windowSize)

	env := make([]float64, nFrames)
	frame := make([]float64, windowSize)
	prev := make([]float64, half)

	for t := 0; t < nFrames; t++ {
		start := t*hopLength - half
		for i := 0; i < windowSize; i++ {
			j := start + i
			if j >= 0 && j < len(samples) {
				frame[i] = samples[j] * win[i]
			} else {
				frame[i] = 0
			}
		}

		spectrum := fft.FFTReal(frame)

		var flux float64
		for k := 0; k < half; k++ {
			// log compression keeps loud passages from dominating the flux
			mag := math.Log1p(1000 * cmplx.Abs(spectrum[k]))
			if t > 0 {
				if d := mag - prev[k]; d > 0 {
					flux += d
				}
			}
			prev[k] = mag
		}
		if t > 0 {
			env[t] = flux / float64(half)
		}
	}

	return env, nil
}
