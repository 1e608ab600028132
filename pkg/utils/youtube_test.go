package utils

import "testing"

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ?t=10", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://example.com/watch?v=abc", "", true},
		{"not a url at all ://", "", true},
	}

	for _, tt := range tests {
		got, err := ExtractYouTubeID(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ExtractYouTubeID(%q): expected error, got %q", tt.url, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ExtractYouTubeID(%q) failed: %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractYouTubeID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestIsYouTubeURL(t *testing.T) {
	if !IsYouTubeURL("https://www.youtube.com/watch?v=abc123") {
		t.Error("youtube.com watch URL not recognized")
	}
	if !IsYouTubeURL("https://youtu.be/abc123") {
		t.Error("youtu.be URL not recognized")
	}
	if IsYouTubeURL("https://vimeo.com/12345") {
		t.Error("vimeo URL wrongly recognized as YouTube")
	}
	if IsYouTubeURL("videos/example.mp4") {
		t.Error("local path wrongly recognized as YouTube")
	}
}
