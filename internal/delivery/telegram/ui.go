package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
)

func menuButton() tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData("🏠 Menyu", buildMenuCallback(entities.MenuMain))
}

// buildMainMenuKeyboard builds the main menu.
func buildMainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Darslarni boshlash", buildMenuCallback(entities.MenuLessons)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 Lug'at", buildMenuCallback(entities.MenuVocab)),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Sozlamalar", buildMenuCallback(entities.MenuSettings)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Fikr qoldirish", buildMenuCallback(entities.MenuFeedback)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤝 Do'stlarga ulashish", buildMenuCallback(entities.MenuShare)),
		),
	)
}

var levelEmoji = map[entities.Level]string{
	entities.LevelEasy:   "🟢",
	entities.LevelMedium: "🟡",
	entities.LevelHard:   "🔴",
}

// buildLevelKeyboard builds the level picker, one level per row.
func buildLevelKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entities.Levels)+1)
	for _, l := range entities.Levels {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(levelEmoji[l]+" "+levelLabel(l), buildLevelCallback(l)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(menuButton()))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildLessonKeyboard is attached to an issued lesson and to a rejected answer.
func buildLessonKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Qayta urinib ko'rish", buildLessonCallback(lessonRetry)),
			tgbotapi.NewInlineKeyboardButtonData("⏭ Tashlab ketish", buildLessonCallback(lessonSkip)),
		),
		tgbotapi.NewInlineKeyboardRow(menuButton()),
	)
}

// buildAcceptedKeyboard is attached to an accepted answer.
func buildAcceptedKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➡️ Keyingi so'z", buildLessonCallback(lessonNext)),
		),
		tgbotapi.NewInlineKeyboardRow(menuButton()),
	)
}

// buildBackKeyboard leads back to the main menu.
func buildBackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(menuButton()),
	)
}

func buildVerdictKeyboard(accepted bool) tgbotapi.InlineKeyboardMarkup {
	if accepted {
		return buildAcceptedKeyboard()
	}
	return buildLessonKeyboard()
}
