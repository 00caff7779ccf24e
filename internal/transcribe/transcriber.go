// Package transcribe turns recorded answers into text.
package transcribe

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("transcription is not configured")
	ErrEmptyResult   = errors.New("no speech recognized")
)

// Transcriber converts an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
	Name() string
}
