package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/service"
)

func (h *Handler) renderOutcome(chatID int64, out *service.Outcome) {
	switch out.Kind {
	case service.OutcomeLessonIssued:
		h.sendLesson(chatID, out.Lesson, out.Total)

	case service.OutcomeRetryPrompted:
		msg := newHTMLMessage(chatID, formatRetry(out.Lesson))
		msg.ReplyMarkup = buildLessonKeyboard()
		h.send(msg)

	case service.OutcomeLevelCompleted:
		msg := newHTMLMessage(chatID, formatCompletion(out.FinalScore, out.Total))
		msg.ReplyMarkup = buildMainMenuKeyboard()
		h.send(msg)
	}
}

// sendLesson sends the reference audio with the text as caption, or the
// text alone when there is no audio, followed by the lesson keyboard.
func (h *Handler) sendLesson(chatID int64, lesson *entities.Lesson, total int) {
	caption := formatLessonCaption(lesson, total)

	if !h.sendLessonAudio(chatID, lesson, caption) {
		h.send(newHTMLMessage(chatID, caption))
	}

	prompt := tgbotapi.NewMessage(chatID, msgLessonPrompt)
	prompt.ReplyMarkup = buildLessonKeyboard()
	h.send(prompt)
}

func (h *Handler) sendLessonAudio(chatID int64, lesson *entities.Lesson, caption string) bool {
	if lesson.AudioURL == "" {
		return false
	}

	h.send(tgbotapi.NewMessage(chatID, msgAudioNotice))

	a := tgbotapi.NewAudio(chatID, tgbotapi.FileURL(lesson.AudioURL))
	a.Caption = caption
	a.ParseMode = tgbotapi.ModeHTML

	if _, err := h.bot.Send(a); err != nil {
		h.logger.Warn("failed to send lesson audio",
			zap.String("level", lesson.Level.String()),
			zap.Int("position", lesson.Position),
			apiError(err),
		)
		return false
	}
	return true
}
