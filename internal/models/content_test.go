package models

import (
	"testing"
)

func TestDeriveMediaKind(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "png image",
			key:      "memes/funny-cat.png",
			expected: MediaKindImage,
		},
		{
			name:     "jpeg image",
			key:      "memes/dog.JPG",
			expected: MediaKindImage,
		},
		{
			name:     "mp4 video",
			key:      "memes/clip.mp4",
			expected: MediaKindVideo,
		},
		{
			name:     "uppercase video extension",
			key:      "memes/clip.MOV",
			expected: MediaKindVideo,
		},
		{
			name:     "webm video",
			key:      "clip.webm",
			expected: MediaKindVideo,
		},
		{
			name:     "no extension defaults to image",
			key:      "memes/raw-object",
			expected: MediaKindImage,
		},
		{
			name:     "empty key",
			key:      "",
			expected: MediaKindImage,
		},
		{
			name:     "dotted path with image extension",
			key:      "a.b/c.d/meme.gif",
			expected: MediaKindImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveMediaKind(tt.key); got != tt.expected {
				t.Errorf("DeriveMediaKind(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}
