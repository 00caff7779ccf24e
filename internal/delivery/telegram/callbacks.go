package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb.ID, "", false)
		return
	}

	action, err := decodeAction(cb.Data)
	if err != nil {
		h.logger.Warn("invalid callback data",
			zap.Int64("user_id", cb.From.ID),
			zap.String("data", cb.Data),
		)
		h.answerCallback(cb.ID, "", false)
		return
	}

	if menu, ok := action.(entities.OpenMenu); ok {
		h.answerCallback(cb.ID, "", false)
		h.showMenu(cb.Message.Chat.ID, cb.Message.MessageID, menu.Section)
		return
	}

	_ = h.withErrorHandling(h.lessonActionHandler(cb, action))(ctx, cb.Message.Chat.ID)
}

// lessonActionHandler applies a session action pressed under messageID.
func (h *Handler) lessonActionHandler(cb *tgbotapi.CallbackQuery, action entities.Action) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		messageID := cb.Message.MessageID

		out, err := h.session.Apply(ctx, cb.From.ID, chatID, action)
		switch {
		case errors.Is(err, service.ErrNoProgress):
			h.answerCallback(cb.ID, msgStateNotFound, true)
			return nil
		case errors.Is(err, service.ErrNoLevel):
			h.answerCallback(cb.ID, "", false)
			h.sendLevelPicker(chatID)
			return nil
		case err != nil:
			h.answerCallback(cb.ID, "", false)
			return fmt.Errorf("apply %T: %w", action, err)
		}

		switch out.Kind {
		case service.OutcomeLevelCompleted:
			h.answerCallback(cb.ID, msgLevelDoneToast, false)
		case service.OutcomeRetryPrompted:
			h.answerCallback(cb.ID, msgRetryToast, false)
		default:
			h.answerCallback(cb.ID, "", false)
		}

		switch a := action.(type) {
		case entities.SelectLevel:
			level := a.Level
			if out.Progress != nil && out.Progress.Level != nil {
				level = *out.Progress.Level
			}
			h.send(newHTMLEdit(chatID, messageID, formatLevelSelected(level)))
		case entities.Skip:
			h.send(newHTMLEdit(chatID, messageID, msgSkipped))
		case entities.Next:
			h.send(newHTMLEdit(chatID, messageID, msgNextLesson))
		}

		h.renderOutcome(chatID, out)
		return nil
	}
}

// showMenu replaces the pressed message with a menu section.
func (h *Handler) showMenu(chatID int64, messageID int, section entities.MenuSection) {
	var (
		text string
		kb   tgbotapi.InlineKeyboardMarkup
	)

	switch section {
	case entities.MenuLessons:
		text, kb = msgChooseLevel, buildLevelKeyboard()
	case entities.MenuVocab:
		text, kb = formatVocabulary(), buildBackKeyboard()
	case entities.MenuSettings:
		text, kb = msgSettings, buildBackKeyboard()
	case entities.MenuFeedback:
		text, kb = msgFeedback, buildBackKeyboard()
	case entities.MenuShare:
		text, kb = formatShare(h.botUsername), buildBackKeyboard()
	default:
		text, kb = msgMainMenu, buildMainMenuKeyboard()
	}

	edit := newHTMLEdit(chatID, messageID, text)
	edit.ReplyMarkup = &kb

	// Audio messages and very old messages cannot be edited.
	if _, err := h.bot.Send(edit); err != nil {
		h.logger.Debug("menu edit failed, sending new message", apiError(err))
		msg := newHTMLMessage(chatID, text)
		msg.ReplyMarkup = kb
		h.send(msg)
	}
}

func (h *Handler) sendLevelPicker(chatID int64) {
	msg := newHTMLMessage(chatID, msgChooseLevel)
	msg.ReplyMarkup = buildLevelKeyboard()
	h.send(msg)
}

// answerCallback removes the user's "clock", optionally with a toast or an alert.
func (h *Handler) answerCallback(id, text string, alert bool) {
	answer := tgbotapi.NewCallback(id, text)
	if alert {
		answer = tgbotapi.NewCallbackWithAlert(id, text)
	}
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Warn("callback answer error", apiError(err))
	}
}
