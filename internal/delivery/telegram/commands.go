package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/service"
)

func (h *Handler) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	userID := m.From.ID

	switch m.Command() {
	case "start":
		_ = h.withErrorHandling(h.startHandler(userID))(ctx, chatID)

	case "lesson":
		_ = h.withErrorHandling(h.lessonHandler(userID))(ctx, chatID)

	case "progress":
		_ = h.withErrorHandling(h.progressHandler(userID))(ctx, chatID)

	case "help":
		h.sendText(chatID, msgHelp)

	default:
		h.sendText(chatID, msgUnknownCommand)
	}
}

// startHandler registers the learner, rewinds the current run and shows the main menu.
func (h *Handler) startHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, err := h.session.Start(ctx, userID, chatID); err != nil {
			return fmt.Errorf("start: %w", err)
		}

		msg := newHTMLMessage(chatID, msgWelcome)
		msg.ReplyMarkup = buildMainMenuKeyboard()
		h.send(msg)
		return nil
	}
}

// lessonHandler repeats the current lesson, or issues it when none is pending.
func (h *Handler) lessonHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		out, err := h.session.Apply(ctx, userID, chatID, entities.Retry{})
		switch {
		case errors.Is(err, service.ErrNoProgress):
			h.sendText(chatID, msgNoTask)
			return nil
		case errors.Is(err, service.ErrNoLevel):
			h.sendLevelPicker(chatID)
			return nil
		case err != nil:
			return fmt.Errorf("repeat lesson: %w", err)
		}

		h.renderOutcome(chatID, out)
		return nil
	}
}

func (h *Handler) progressHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		p, err := h.session.Progress(ctx, userID)
		if errors.Is(err, service.ErrNoProgress) {
			h.sendText(chatID, msgNoTask)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get progress: %w", err)
		}

		msg := newHTMLMessage(chatID, formatProgress(p, h.session.LessonsPerLevel()))
		if p.Level == nil {
			msg.ReplyMarkup = buildLevelKeyboard()
		} else {
			msg.ReplyMarkup = buildBackKeyboard()
		}
		h.send(msg)
		return nil
	}
}
