//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"static-drop/internal/server"
)

type uploadResult struct {
	Success  bool   `json:"success"`
	FilePath string `json:"filePath"`
	FileURL  string `json:"fileUrl"`
	Error    string `json:"error"`
}

// TestAPIWorkflow drives upload and static serving over a real listener.
func TestAPIWorkflow(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>drop</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv, err := server.New(server.Config{Root: root, MaxUploadBytes: 1 << 20})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	public := httptest.NewServer(srv.Handler())
	defer public.Close()
	admin := httptest.NewServer(srv.AdminHandler())
	defer admin.Close()

	client := &http.Client{Timeout: 30 * time.Second}

	t.Run("Ready", func(t *testing.T) {
		resp, err := client.Get(admin.URL + "/ready")
		if err != nil {
			t.Fatalf("ready: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
	})

	t.Run("Index", func(t *testing.T) {
		resp, err := client.Get(public.URL + "/")
		if err != nil {
			t.Fatalf("index: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || string(body) != "<h1>drop</h1>" {
			t.Errorf("got %d %q", resp.StatusCode, body)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "text/html" {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	content := []byte("GIF89a-integration")
	var uploaded uploadResult
	t.Run("Upload", func(t *testing.T) {
		payload := map[string]string{
			"fileId":      "clip",
			"fileData":    "data:image/gif;base64," + base64.StdEncoding.EncodeToString(content),
			"fileName":    "clip.gif",
			"contentType": "image/gif",
		}
		body, _ := json.Marshal(payload)

		resp, err := client.Post(public.URL+"/upload", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, b)
		}
		if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !uploaded.Success || uploaded.FilePath != "/data/clip.gif" {
			t.Errorf("unexpected response: %+v", uploaded)
		}
	})

	t.Run("Download", func(t *testing.T) {
		resp, err := client.Get(public.URL + uploaded.FilePath)
		if err != nil {
			t.Fatalf("download: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if !bytes.Equal(body, content) {
			t.Errorf("body = %q, want %q", body, content)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/gif" {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		resp, err := client.Post(public.URL+"/upload", "application/json", bytes.NewReader([]byte(`{"fileId":"x"}`)))
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", resp.StatusCode)
		}
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		resp, err := client.Post(public.URL+"/upload", "application/json", bytes.NewReader([]byte(`{`)))
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", resp.StatusCode)
		}
	})

	t.Run("TooLarge", func(t *testing.T) {
		big := bytes.Repeat([]byte("A"), 1<<20)
		body, _ := json.Marshal(map[string]string{"fileId": "big", "fileData": string(big), "contentType": "image/png"})
		resp, err := client.Post(public.URL+"/upload", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected status 413, got %d", resp.StatusCode)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, err := client.Get(public.URL + "/data/missing.png")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", resp.StatusCode)
		}
	})
}
