package server

import "testing"

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"index.html", "text/html"},
		{"/js/app.js", "text/javascript"},
		{"/img/PHOTO.JPG", "image/jpeg"},
		{"/img/a.jpeg", "image/jpeg"},
		{"/a.gif", "image/gif"},
		{"/a.webp", "image/webp"},
		{"/a.png", "image/png"},
		{"/v.mp4", "video/mp4"},
		{"/v.webm", "video/webm"},
		{"/archive.tar.json", "application/json"},
		{"/notes.txt", "text/plain"},
		{"/data/abc.plain", "application/octet-stream"},
		{"/noext", "application/octet-stream"},
		{"/.bashrc", "application/octet-stream"},
		{"/dir.d/file", "application/octet-stream"},
		{"/trailing.", "application/octet-stream"},
		{"", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := contentTypeFor(tt.path); got != tt.want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
