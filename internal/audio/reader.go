package audio

import (
	"errors"
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ReadWAV decodes a PCM WAV file into mono float64 samples normalized to
// [-1, 1] and returns the sample rate. Stereo input is downmixed by
// averaging the two channels.
func ReadWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("no audio data in %s", path)
	}

	samples, err := toMonoFloat64(buf)
	if err != nil {
		return nil, 0, err
	}
	return samples, buf.Format.SampleRate, nil
}

// toMonoFloat64 converts an integer PCM buffer to mono samples in [-1, 1].
func toMonoFloat64(buf *gaudio.IntBuffer) ([]float64, error) {
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int(1)<<(uint(bitDepth)-1))

	switch buf.Format.NumChannels {
	case 1:
		out := make([]float64, len(buf.Data))
		for i, v := range buf.Data {
			out[i] = float64(v) * scale
		}
		return out, nil
	case 2:
		frames := len(buf.Data) / 2
		out := make([]float64, frames)
		for i := 0; i < frames; i++ {
			l := float64(buf.Data[2*i]) * scale
			r := float64(buf.Data[2*i+1]) * scale
			out[i] = (l + r) * 0.5
		}
		return out, nil
	default:
		return nil, errors.New("unsupported channel count: only mono/stereo supported")
	}
}
