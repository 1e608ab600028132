package models

// Run is one completed beat analysis of a single audio source.
type Run struct {
	ID         string  // Database ID (UUID)
	SourcePath string  // Original input file or URL
	TempoBPM   float64 // Estimated global tempo; 0 for silent input
	SampleRate int     // Analysis sample rate in Hz
	HopLength  int     // Analysis frame stride in samples
	DurationMs int     // Length of the analyzed audio in milliseconds
	BeatCount  int     // Number of detected beats
}

// AnalysisResult pairs a stored run with its full beat timeline. The onset
// envelope is carried for diagnostic reuse and is not persisted.
type AnalysisResult struct {
	Run           Run
	BeatTimes     []float64 // Seconds from start of audio, non-decreasing
	OnsetEnvelope []float64 // One value per analysis frame
}

// AlignmentReport summarizes one lag-corrected alignment pass of an event
// sequence against a beat timeline.
type AlignmentReport struct {
	RunID        string    // Empty for storage-free alignments
	LagMs        float64   // Constant shift applied to the events
	MedianAbsMs  float64   // Median |error| after applying the lag
	MeanSignedMs float64   // Mean signed error after applying the lag (negative = ahead of beat)
	EventCount   int
	NearestBeats []float64 // Nearest beat per lag-corrected event
	ErrorsMs     []float64 // Signed error per lag-corrected event
}
