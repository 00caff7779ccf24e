// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/service"
)

// Menu texts.
const (
	msgWelcome     = "Salom! Men rus tilini o'rganishda yordam beradigan AI botman.\n\nQuyidagi bo'limlardan birini tanlang:"
	msgMainMenu    = "Asosiy menyu:"
	msgChooseLevel = "Darajani tanlang:"
	msgSettings    = "Sozlamalar:\nHozircha sozlamalar mavjud emas. Keyinchalik qo'shiladi."
	msgFeedback    = "Fikr bildirish: Iltimos, fikr va takliflaringizni yozing. Keyinchalik biz ularni qayta ishlaymiz."
	msgHelp        = "Buyruqlar:\n\n/start - asosiy menyu\n/lesson - joriy so'zni qayta yuborish\n/progress - natijalaringiz\n/help - yordam\n\nSo'zni eshiting va ovozli xabar yuboring. Matn yozib javob berish ham mumkin."
)

// Lesson flow texts.
const (
	msgAudioNotice     = "Audio yuborilyapti..."
	msgLessonPrompt    = "Agar talaffuzni tekshashni xohlasangiz, ovozli xabar yuboring. Yoki biror tugmani bosing."
	msgRetryPrompt     = "Iltimos, ovozli xabar yuboring (so'zni takrorlang)."
	msgRetryToast      = "Qayta yuborish uchun ovozli xabar yuboring."
	msgSkipped         = "So'z tashlab ketildi. Keyingi so'z yuborilyapti..."
	msgNextLesson      = "Keyingi so'zga o'tilyapti..."
	msgLevelCompleted  = "🎉 Tabriklaymiz! Siz darajani yakunladingiz. /start orqali qayta boshlash mumkin."
	msgLevelDoneToast  = "Siz bu darajani tugatdingiz!"
	msgStateNotFound   = "Sizning holatingiz topilmadi."
	msgNoTask          = "Hozir topshiriq yo'q. /start orqali darsni boshlang."
	msgVoiceAccepted   = "✅ Siz to'g'ri talaffuz qildingiz!"
	msgVoiceRejected   = "❌ Talaffuzingiz yaxshi emas, iltimos qayta urinib ko'ring yoki tashlab ketish tugmasini bosing."
	msgTextAccepted    = "✅ Matn to'g'ri! (text-fallback)."
	msgTextRejected    = "❌ Matn noaniq. Iltimos yana urinib ko'ring yoki tashlab keting."
	msgDownloadFailed  = "Ovoz yuklanmadi, qaytadan urinib ko'ring."
	msgAudioTooLarge   = "Ovozli xabar juda katta. Iltimos, qisqaroq yozib yuboring."
	msgNoTranscriber   = "Afsuski, serverda OpenAI API kaliti o'rnatilmagan. Iltimos matnni to'g'ridan-to'g'ri yozing yoki admindan kalit qo'yishni so'rang."
	msgTranscribeError = "Transkripsiya xatosi yuz berdi. Keyinroq qayta urinib ko'ring."
	msgBusy            = "Iltimos, biroz kuting. Oldingi xabarlaringiz hali ishlanmoqda."
)

// Error messages.
const (
	msgInternalError  = "Nimadir xato ketdi. Keyinroq urinib ko'ring."
	msgUnknownCommand = "Noma'lum buyruq. /help orqali buyruqlar ro'yxatini ko'ring."
)

// vocabulary is the static sample shown in the vocabulary section.
var vocabulary = [][2]string{
	{"привет", "salom"},
	{"спасибо", "rahmat"},
	{"пожалуйста", "iltimos"},
	{"до свидания", "xayr"},
	{"да", "ha"},
	{"нет", "yo'q"},
	{"извините", "kechirasiz"},
	{"я", "men"},
	{"ты", "sen"},
	{"хорошо", "yaxshi"},
}

var levelLabels = map[entities.Level]string{
	entities.LevelEasy:   "Oson",
	entities.LevelMedium: "O'rtacha",
	entities.LevelHard:   "Qiyin",
}

func levelLabel(l entities.Level) string {
	if label, ok := levelLabels[l]; ok {
		return label
	}
	return l.String()
}

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

func newHTMLEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	return edit
}

func formatVocabulary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lug'at: (%d ta misol)\n\n", len(vocabulary))
	for _, pair := range vocabulary {
		fmt.Fprintf(&b, "%s - %s\n", html.EscapeString(pair[0]), html.EscapeString(pair[1]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatShare(botUsername string) string {
	return "Do'stlaringizga ulashish uchun havola:\nhttps://t.me/" + botUsername
}

func formatLevelSelected(l entities.Level) string {
	return fmt.Sprintf("Tanlandi: %s. Dars boshlanmoqda...", strings.ToUpper(levelLabel(l)))
}

// formatLessonCaption renders the lesson text; the text itself is escaped.
func formatLessonCaption(lesson *entities.Lesson, total int) string {
	return fmt.Sprintf(
		"<b>Daraja:</b> %s, so'z #%d/%d\n\nMatn:\n<b>%s</b>\n\nIltimos, audio eshiting va so'zni takrorlab, ovozli xabar yuboring.",
		strings.ToUpper(levelLabel(lesson.Level)),
		lesson.Position,
		total,
		html.EscapeString(lesson.Text),
	)
}

func formatRetry(lesson *entities.Lesson) string {
	return fmt.Sprintf("%s\n\n<b>%s</b>", msgRetryPrompt, html.EscapeString(lesson.Text))
}

func formatCompletion(finalScore, total int) string {
	return fmt.Sprintf("%s\n\nNatija: %d/%d", msgLevelCompleted, finalScore, total)
}

// formatVerdict renders the grading result for a voice or a typed answer.
func formatVerdict(v *service.Verdict, spoken bool) string {
	var head string
	switch {
	case spoken && v.Accepted:
		head = msgVoiceAccepted
	case spoken:
		head = msgVoiceRejected
	case v.Accepted:
		head = msgTextAccepted
	default:
		head = msgTextRejected
	}

	if !spoken {
		return head
	}
	return fmt.Sprintf(
		"%s\n\nSiz aytdingiz: <i>%s</i>\nO'xshashlik: %.0f%%",
		head,
		html.EscapeString(v.Candidate),
		v.Score*100,
	)
}

func formatProgress(p *entities.UserProgress, total int) string {
	if p.Level == nil {
		return "Siz hali darajani tanlamadingiz.\n\n" + msgChooseLevel
	}

	done := p.Position - 1
	if p.State() == entities.StateAnswered {
		done = p.Position
	}

	return fmt.Sprintf(
		"📊 Sizning natijalaringiz\n\nDaraja: %s\n%s\nSo'z: %d/%d\nTo'g'ri javoblar: %d",
		levelLabel(*p.Level),
		buildProgressBar(done, total, 20),
		p.Position,
		total,
		p.CorrectCount,
	)
}

func buildProgressBar(current, total, length int) string {
	if total == 0 {
		return strings.Repeat("░", length)
	}

	filled := int(float64(current) / float64(total) * float64(length))
	if filled > length {
		filled = length
	}

	empty := length - filled
	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("[%s]", bar)
}
