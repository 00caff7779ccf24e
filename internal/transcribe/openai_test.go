package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeAudio(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "voice.ogg")
	if err := os.WriteFile(path, []byte("OggS fake opus payload"), 0o600); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{APIKey: "  "}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestOpenAITranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("language"); got != "ru" {
			t.Errorf("language = %q", got)
		}

		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "voice.ogg" || !strings.HasPrefix(string(data), "OggS") {
			t.Errorf("unexpected upload %q (%d bytes)", hdr.Filename, len(data))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":" Привет, мир. "}`)
	}))
	defer srv.Close()

	c, err := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Language: "ru", Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	text, err := c.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "Привет, мир." {
		t.Fatalf("text = %q", text)
	}
}

func TestOpenAIErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":{"message":"Incorrect API key"}}`, wantMsg: "Incorrect API key"},
		{name: "plain error", status: http.StatusBadGateway, body: `bad gateway`, wantMsg: "status 502"},
		{name: "empty text", status: http.StatusOK, body: `{"text":"  "}`, wantErr: ErrEmptyResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c, _ := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Timeout: time.Second})
			_, err := c.Transcribe(context.Background(), writeAudio(t))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestOpenAIMissingFile(t *testing.T) {
	c, _ := NewOpenAI(OpenAIConfig{APIKey: "sk-test"})

	if _, err := c.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.ogg")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
