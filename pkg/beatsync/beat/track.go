package beat

import "math"

// Tracker tunables. The tempo prior is log-normal around startBPM; tightness
// penalizes inter-beat intervals that stray from the chosen tempo's period.
const (
	startBPM  = 120.0
	tightness = 100.0
	minBPM    = 30.0
	maxBPM    = 300.0
)

// Result is the output of one beat-tracking pass over a waveform.
type Result struct {
	TempoBPM      float64   // Single global tempo estimate; 0 for silent input
	BeatTimes     []float64 // Seconds from start of waveform, non-decreasing
	OnsetEnvelope []float64 // One onset strength value per analysis frame
}

// Track converts a mono waveform into a tempo estimate and a beat timeline.
// It computes the onset strength envelope, picks the best global tempo from
// the prior-weighted autocorrelation of that envelope, and places beats with
// a cumulative-score dynamic program that trades local onset evidence
// against deviation from the ideal inter-beat interval.
//
// An empty or all-silent waveform yields TempoBPM 0 and no beats; that is a
// valid degenerate result, not an error. Octave errors (tempo detected at a
// multiple or divisor of the true tempo) are a known limitation of
// onset-based tracking and are not corrected here.
func Track(samples []float64, sampleRate, hopLength int) (Result, error) {
	env, err := OnsetStrength(samples, sampleRate, hopLength)
	if err != nil {
		return Result{}, err
	}
	if len(env) == 0 {
		return Result{}, nil
	}

	tempo := estimateTempo(env, sampleRate, hopLength)
	if tempo <= 0 {
		return Result{OnsetEnvelope: env}, nil
	}

	frames := trackBeats(env, tempo, sampleRate, hopLength)
	beats := make([]float64, len(frames))
	for i, f := range frames {
		beats[i] = float64(f) * float64(hopLength) / float64(sampleRate)
	}

	return Result{TempoBPM: tempo, BeatTimes: beats, OnsetEnvelope: env}, nil
}

// estimateTempo picks the lag maximizing the mean-removed autocorrelation of
// the onset envelope, weighted by a log-normal prior centered on startBPM.
// Returns 0 when the envelope carries no onset activity or is too short to
// cover a single beat period.
func estimateTempo(env []float64, sampleRate, hopLength int) float64 {
	framesPerSec := float64(sampleRate) / float64(hopLength)

	var total float64
	for _, v := range env {
		total += v
	}
	if total == 0 {
		return 0
	}

	minLag := int(math.Ceil(framesPerSec * 60.0 / maxBPM))
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(framesPerSec * 60.0 / minBPM)
	if maxLag > len(env)-1 {
		maxLag = len(env) - 1
	}
	if maxLag < minLag {
		return 0
	}

	mean := total / float64(len(env))
	x := make([]float64, len(env))
	for i, v := range env {
		x[i] = v - mean
	}

	bestLag := 0
	bestScore := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		var ac float64
		for i := lag; i < len(x); i++ {
			ac += x[i] * x[i-lag]
		}
		bpm := 60.0 * framesPerSec / float64(lag)
		prior := math.Exp(-0.5 * math.Pow(math.Log2(bpm/startBPM), 2))
		if score := ac * prior; score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 0
	}

	return 60.0 * framesPerSec / float64(bestLag)
}

// trackBeats runs the cumulative-score recursion over the onset envelope and
// backtracks the beat frame indices from the strongest ending. Candidate
// predecessors for each frame span half to twice the ideal beat period.
func trackBeats(env []float64, tempoBPM float64, sampleRate, hopLength int) []int {
	n := len(env)
	framesPerSec := float64(sampleRate) / float64(hopLength)
	period := 60.0 * framesPerSec / tempoBPM
	if period < 1 {
		period = 1
	}

	norm := normalize(env)

	cumScore := make([]float64, n)
	backlink := make([]int, n)

	lo := int(math.Round(period / 2))
	if lo < 1 {
		lo = 1
	}
	hi := int(math.Round(period * 2))

	for i := 0; i < n; i++ {
		best := math.Inf(-1)
		bestJ := -1
		for d := lo; d <= hi; d++ {
			j := i - d
			if j < 0 {
				break
			}
			txn := math.Log(float64(d) / period)
			score := cumScore[j] - tightness*txn*txn
			if score > best {
				best = score
				bestJ = j
			}
		}
		cumScore[i] = norm[i]
		if bestJ >= 0 {
			cumScore[i] += best
		}
		backlink[i] = bestJ
	}

	// Strongest cumulative score within the final beat period is the tail.
	tail := n - int(math.Round(period))
	if tail < 0 {
		tail = 0
	}
	end := tail
	for i := tail; i < n; i++ {
		if cumScore[i] > cumScore[end] {
			end = i
		}
	}

	var frames []int
	for i := end; i >= 0; i = backlink[i] {
		frames = append(frames, i)
	}
	for l, r := 0, len(frames)-1; l < r; l, r = l+1, r-1 {
		frames[l], frames[r] = frames[r], frames[l]
	}
	return frames
}

// normalize scales the envelope to unit standard deviation so the tightness
// penalty is comparable across recordings of different loudness.
func normalize(env []float64) []float64 {
	var mean float64
	for _, v := range env {
		mean += v
	}
	mean /= float64(len(env))

	var variance float64
	for _, v := range env {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(env)))

	out := make([]float64, len(env))
	if std == 0 {
		copy(out, env)
		return out
	}
	for i, v := range env {
		out[i] = v / std
	}
	return out
}
