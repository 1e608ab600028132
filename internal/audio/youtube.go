package audio

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lrstanley/go-ytdlp"

	"github.com/kavyagupta/BeatSync/pkg/utils"
)

// DownloadAudio fetches the audio track of a YouTube video into outputDir as
// a WAV file named after the video ID, and returns its path.
func DownloadAudio(ctx context.Context, url, outputDir string) (string, error) {
	id, err := utils.ExtractYouTubeID(url)
	if err != nil {
		return "", err
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	dl := ytdlp.New().
		NoPlaylist().
		ExtractAudio().
		AudioFormat("wav").
		Output(filepath.Join(outputDir, "%(id)s.%(ext)s"))

	if _, err := dl.Run(ctx, url); err != nil {
		return "", fmt.Errorf("yt-dlp download failed: %w", err)
	}

	return filepath.Join(outputDir, id+".wav"), nil
}
