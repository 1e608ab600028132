package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ExtractYouTubeID pulls the video ID out of the common YouTube URL shapes
// (youtu.be short links, /watch?v=, /embed/, /v/).
func ExtractYouTubeID(youtubeURL string) (string, error) {
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	if strings.Contains(u.Host, "youtu.be") {
		id := strings.TrimPrefix(u.Path, "/")
		if idx := strings.Index(id, "?"); idx != -1 {
			id = id[:idx]
		}
		if id != "" {
			return id, nil
		}
		return "", fmt.Errorf("no video ID found in youtu.be URL")
	}

	if strings.Contains(u.Host, "youtube.com") {
		if strings.HasPrefix(u.Path, "/watch") {
			if videoID := u.Query().Get("v"); videoID != "" {
				return videoID, nil
			}
		}
		for _, prefix := range []string{"/embed/", "/v/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := strings.TrimPrefix(u.Path, prefix); id != "" {
					return id, nil
				}
			}
		}
	}

	return "", fmt.Errorf("unable to extract video ID from URL: %s", youtubeURL)
}

// IsYouTubeURL reports whether the string looks like a YouTube URL.
func IsYouTubeURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be")
}
