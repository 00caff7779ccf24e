package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/talaffuz-bot/internal/audio"
	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
	"github.com/aliskhannn/talaffuz-bot/internal/service"
)

// BotAPI is the part of *tgbotapi.BotAPI the handler uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type SessionService interface {
	Start(ctx context.Context, userID, chatID int64) (*entities.UserProgress, error)
	Apply(ctx context.Context, userID, chatID int64, action entities.Action) (*service.Outcome, error)
	Progress(ctx context.Context, userID int64) (*entities.UserProgress, error)
	LessonsPerLevel() int
}

type AnswerVerifier interface {
	Pending(ctx context.Context, userID int64) (bool, error)
	Verify(ctx context.Context, userID int64, candidate string) (*service.Verdict, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

type AudioDownloader interface {
	Download(ctx context.Context, url, ext string) (*audio.TempFile, error)
	MaxSize() int64
}

type UpdateRecorder interface {
	UpdateHandled(kind string)
}

// Update kinds reported to the UpdateRecorder.
const (
	kindCallback = "callback"
	kindCommand  = "command"
	kindVoice    = "voice"
	kindText     = "text"
	kindOther    = "other"
)

type Handler struct {
	bot         BotAPI
	logger      *zap.Logger
	session     SessionService
	verifier    AnswerVerifier
	transcriber Transcriber // nil when speech recognition is not configured
	downloader  AudioDownloader
	recorder    UpdateRecorder
	botUsername string
	pollTimeout int
	dispatcher  *Dispatcher
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	session SessionService,
	verifier AnswerVerifier,
	transcriber Transcriber,
	downloader AudioDownloader,
	recorder UpdateRecorder,
	botUsername string,
	pollTimeout int,
) *Handler {
	if pollTimeout <= 0 {
		pollTimeout = 60
	}

	h := &Handler{
		bot:         bot,
		logger:      logger,
		session:     session,
		verifier:    verifier,
		transcriber: transcriber,
		downloader:  downloader,
		recorder:    recorder,
		botUsername: botUsername,
		pollTimeout: pollTimeout,
	}
	h.dispatcher = NewDispatcher(h.handleUpdate, defaultUserQueue)

	return h
}

// Run polls updates until ctx is done. Updates already queued for a user are
// finished before Run returns.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	h.registerCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = h.pollTimeout

	updates := h.bot.GetUpdatesChan(u)
	defer func() {
		h.bot.StopReceivingUpdates()
		h.logger.Info("waiting for queued updates", zap.Int("users", h.dispatcher.Active()))
		h.dispatcher.Close()
	}()

	// Queued work must not be cut off by the shutdown signal.
	workCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.dispatch(workCtx, update)
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, update tgbotapi.Update) {
	from := update.SentFrom()
	if from == nil {
		h.logger.Debug("update without sender", zap.Int("update_id", update.UpdateID))
		return
	}

	err := h.dispatcher.Dispatch(ctx, from.ID, update)
	if errors.Is(err, ErrUserQueueFull) {
		h.logger.Warn("user queue full, update dropped", zap.Int64("user_id", from.ID))
		if chat := update.FromChat(); chat != nil {
			h.send(tgbotapi.NewMessage(chat.ID, msgBusy))
		}
		return
	}
	if err != nil {
		h.logger.Warn("update not dispatched", zap.Int64("user_id", from.ID), zap.Error(err))
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.record(kindCallback)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		h.logger.Debug("update without message and callback")
		h.record(kindOther)
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", msg.Chat.ID),
		zap.Int64("user_id", msg.From.ID),
	)

	chatID := msg.Chat.ID

	switch {
	case msg.IsCommand():
		h.record(kindCommand)
		h.handleCommand(ctx, msg)

	case msg.Voice != nil || msg.Audio != nil:
		h.record(kindVoice)
		_ = h.withErrorHandling(h.voiceHandler(msg))(ctx, chatID)

	case msg.Text != "":
		h.record(kindText)
		_ = h.withErrorHandling(h.textHandler(msg.From.ID, msg.Text))(ctx, chatID)

	default:
		h.record(kindOther)
	}
}

func (h *Handler) record(kind string) {
	if h.recorder != nil {
		h.recorder.UpdateHandled(kind)
	}
}

func (h *Handler) registerCommands() {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Asosiy menyu"},
		tgbotapi.BotCommand{Command: "lesson", Description: "Joriy so'z"},
		tgbotapi.BotCommand{Command: "progress", Description: "Natijalar"},
		tgbotapi.BotCommand{Command: "help", Description: "Yordam"},
	)
	if _, err := h.bot.Request(cfg); err != nil {
		h.logger.Warn("failed to register bot commands", apiError(err))
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(newHTMLMessage(chatID, text))
}

func (h *Handler) sendError(chatID int64, err string) {
	msg := newHTMLMessage(chatID, err)
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			apiError(err),
		)
	}
}

// apiError logs a Bot API failure without the request URL, which holds the
// bot token.
func apiError(err error) zap.Field {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return zap.Error(err)
}
