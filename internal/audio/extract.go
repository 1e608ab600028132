package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/kavyagupta/BeatSync/pkg/utils"
)

// DefaultSampleRate is the analysis rate the extractor resamples to.
const DefaultSampleRate = 22050

type ExtractConfig struct {
	SampleRate int // e.g. 11025, 22050, 44100
}

// ExtractMonoWAV converts any audio or video input that ffmpeg can read to a
// mono 16-bit PCM WAV at the configured sample rate and saves it to
// outputDir, keeping the input's base name with a .wav extension.
func ExtractMonoWAV(
	ctx context.Context,
	inputPath string,
	outputDir string,
	cfg ExtractConfig,
) (string, error) {

	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}

	// Defensive timeout
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}

	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	outputPath := filepath.Join(outputDir, stem+".wav")

	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-vn", // drop any video stream
		"-ac", "1", // mono
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %v (%s)", err, out)
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}
