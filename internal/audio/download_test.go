package audio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OggS voice"))
	}))
	defer srv.Close()

	d, err := NewDownloader(t.TempDir(), 1024, time.Second)
	if err != nil {
		t.Fatalf("new downloader: %v", err)
	}

	f, err := d.Download(context.Background(), srv.URL+"/voice/file_1.oga", "ogg")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !strings.HasSuffix(f.Path, ".ogg") || f.Size != int64(len("OggS voice")) {
		t.Fatalf("unexpected file: %+v", f)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil || string(data) != "OggS voice" {
		t.Fatalf("content = %q, err = %v", data, err)
	}

	if err := f.Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if fileExists(f.Path) {
		t.Fatal("file must be removed")
	}
	if err := f.Remove(); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestDownloadTooLargeLeavesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No Content-Length: the size is only known while copying.
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	dir := t.TempDir()
	d, _ := NewDownloader(dir, 16, time.Second)

	if _, err := d.Download(context.Background(), srv.URL, ".ogg"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("temp dir not empty: %d entries", len(entries))
	}
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d, _ := NewDownloader(dir, 0, time.Second)

	if _, err := d.Download(context.Background(), srv.URL, ".ogg"); err == nil {
		t.Fatal("expected an error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatal("failed download must not leave files")
	}
}

func TestSanitizeExt(t *testing.T) {
	for in, want := range map[string]string{"ogg": ".ogg", ".MP3": ".mp3", "": "", "../x": ""} {
		if got := sanitizeExt(in); got != want {
			t.Errorf("sanitizeExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDownloadErrorHidesURL(t *testing.T) {
	d, err := NewDownloader(t.TempDir(), 1024, time.Second)
	if err != nil {
		t.Fatalf("new downloader: %v", err)
	}

	// Nothing listens on port 1.
	url := "http://127.0.0.1:1/file/bot123456:SECRET-TOKEN/voice/file_1.oga"

	_, err = d.Download(context.Background(), url, ".ogg")
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, leak := range []string{"SECRET-TOKEN", "/file/bot", "127.0.0.1:1/"} {
		if strings.Contains(err.Error(), leak) {
			t.Fatalf("error text %q contains %q", err.Error(), leak)
		}
	}
}

func TestDownloadBadURLHidesURL(t *testing.T) {
	d, err := NewDownloader(t.TempDir(), 1024, time.Second)
	if err != nil {
		t.Fatalf("new downloader: %v", err)
	}

	_, err = d.Download(context.Background(), "http://[::1/file/botSECRET/voice.oga", ".ogg")
	if err == nil || strings.Contains(err.Error(), "SECRET") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
