package telegram

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/talaffuz-bot/internal/audio"
	"github.com/aliskhannn/talaffuz-bot/internal/service"
	"github.com/aliskhannn/talaffuz-bot/internal/transcribe"
)

// voiceFile describes the recording attached to a message.
type voiceFile struct {
	ID   string
	Size int64
	Ext  string
}

func attachedVoice(m *tgbotapi.Message) (voiceFile, bool) {
	switch {
	case m.Voice != nil:
		return voiceFile{ID: m.Voice.FileID, Size: int64(m.Voice.FileSize), Ext: ".ogg"}, true
	case m.Audio != nil:
		ext := filepath.Ext(m.Audio.FileName)
		if ext == "" {
			ext = ".mp3"
		}
		return voiceFile{ID: m.Audio.FileID, Size: int64(m.Audio.FileSize), Ext: ext}, true
	}
	return voiceFile{}, false
}

// voiceHandler transcribes a recorded answer and grades it. Delivery and
// recognition failures leave the lesson pending so the learner can retry.
func (h *Handler) voiceHandler(m *tgbotapi.Message) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		userID := m.From.ID

		file, ok := attachedVoice(m)
		if !ok {
			return nil
		}

		pending, err := h.verifier.Pending(ctx, userID)
		if err != nil {
			return fmt.Errorf("check pending answer: %w", err)
		}
		if !pending {
			h.sendText(chatID, msgNoTask)
			return nil
		}

		if h.transcriber == nil {
			h.sendText(chatID, msgNoTranscriber)
			return nil
		}

		if limit := h.downloader.MaxSize(); limit > 0 && file.Size > limit {
			h.sendText(chatID, msgAudioTooLarge)
			return nil
		}

		url, err := h.bot.GetFileDirectURL(file.ID)
		if err != nil {
			h.logger.Warn("failed to resolve voice file", zap.Int64("user_id", userID), apiError(err))
			h.sendText(chatID, msgDownloadFailed)
			return nil
		}

		tmp, err := h.downloader.Download(ctx, url, file.Ext)
		if err != nil {
			if errors.Is(err, audio.ErrTooLarge) {
				h.sendText(chatID, msgAudioTooLarge)
				return nil
			}
			h.logger.Warn("failed to download voice", zap.Int64("user_id", userID), zap.Error(err))
			h.sendText(chatID, msgDownloadFailed)
			return nil
		}
		defer func() {
			if err := tmp.Remove(); err != nil {
				h.logger.Warn("failed to remove voice file", zap.String("path", tmp.Path), zap.Error(err))
			}
		}()

		text, err := h.transcriber.Transcribe(ctx, tmp.Path)
		switch {
		case errors.Is(err, transcribe.ErrNotConfigured):
			h.sendText(chatID, msgNoTranscriber)
			return nil
		case err != nil:
			h.logger.Warn("transcription failed", zap.Int64("user_id", userID), zap.Error(err))
			h.sendText(chatID, msgTranscribeError)
			return nil
		}

		return h.grade(ctx, chatID, userID, text, true)
	}
}

func (h *Handler) textHandler(userID int64, text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.grade(ctx, chatID, userID, text, false)
	}
}

func (h *Handler) grade(ctx context.Context, chatID, userID int64, candidate string, spoken bool) error {
	verdict, err := h.verifier.Verify(ctx, userID, candidate)
	if errors.Is(err, service.ErrNothingPending) {
		h.sendText(chatID, msgNoTask)
		return nil
	}
	if err != nil {
		return fmt.Errorf("verify answer: %w", err)
	}

	msg := newHTMLMessage(chatID, formatVerdict(verdict, spoken))
	msg.ReplyMarkup = buildVerdictKeyboard(verdict.Accepted)
	h.send(msg)
	return nil
}
