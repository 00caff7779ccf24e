package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

// Google transcribes short recordings with Cloud Speech-to-Text.
type Google struct {
	client   *speech.Client
	language string
}

// NewGoogle creates a Speech client from a service account file.
func NewGoogle(ctx context.Context, credentialsFile, language string) (*Google, error) {
	if strings.TrimSpace(credentialsFile) == "" {
		return nil, ErrNotConfigured
	}

	c, err := speech.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	return &Google{client: c, language: languageCode(language)}, nil
}

func (g *Google) Name() string { return "google" }

// Close releases the underlying gRPC connection.
func (g *Google) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Google) Transcribe(ctx context.Context, path string) (string, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: recognitionConfig(path, g.language),
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognize: %w", err)
	}

	parts := make([]string, 0, len(resp.GetResults()))
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}

	text := strings.Join(parts, " ")
	if text == "" {
		return "", ErrEmptyResult
	}
	return text, nil
}

func recognitionConfig(path, language string) *speechpb.RecognitionConfig {
	rc := &speechpb.RecognitionConfig{
		LanguageCode:               language,
		EnableAutomaticPunctuation: true,
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg", ".oga", ".opus":
		// Telegram voice notes are 48 kHz Opus.
		rc.Encoding = speechpb.RecognitionConfig_OGG_OPUS
		rc.SampleRateHertz = 48000
	case ".mp3":
		rc.Encoding = speechpb.RecognitionConfig_MP3
	case ".wav":
		rc.Encoding = speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		rc.Encoding = speechpb.RecognitionConfig_FLAC
	}

	return rc
}

// languageCode expands a bare language to the BCP-47 tag Speech expects.
func languageCode(lang string) string {
	lang = strings.TrimSpace(lang)
	switch {
	case lang == "":
		return "ru-RU"
	case strings.Contains(lang, "-"):
		return lang
	default:
		return strings.ToLower(lang) + "-" + strings.ToUpper(lang)
	}
}
