// Package channel connects the bot to Telegram: it polls for updates,
// normalises them onto the bus and implements domain.Messenger.
package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kawainime/TelegramGemini/internal/domain"
	"github.com/kawainime/TelegramGemini/internal/format"
)

const (
	telegramMaxMsgLen      = 4000
	telegramMaxSendRetries = 3
	defaultPollTimeout     = 30
)

// botAPI is the subset of *tgbotapi.BotAPI the channel uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Telegram receives updates by long polling and sends replies.
type Telegram struct {
	token       string
	pollTimeout int
	dropPending bool
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
	bot         botAPI
	self        domain.BotIdentity
}

var _ domain.Messenger = (*Telegram)(nil)

type TelegramConfig struct {
	Token              string
	PollTimeout        int  // seconds
	DropPendingUpdates bool // skip updates queued while the bot was offline
	Logger             *slog.Logger
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Telegram{
		token:       cfg.Token,
		pollTimeout: cfg.PollTimeout,
		dropPending: cfg.DropPendingUpdates,
		logger:      cfg.Logger,
		sleep:       sleepCtx,
	}
}

// Connect authenticates with Telegram and returns the bot's own identity.
func (t *Telegram) Connect() (domain.BotIdentity, error) {
	if err := tgbotapi.SetLogger(botLogger{t.logger}); err != nil {
		t.logger.Warn("telegram library logger not replaced", "err", err)
	}
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return domain.BotIdentity{}, fmt.Errorf("telegram bot init: %w", domain.RedactError(err))
	}
	t.bot = bot
	t.self = domain.BotIdentity{ID: bot.Self.ID, Username: bot.Self.UserName}
	t.logger.Info("telegram bot connected", "username", t.self.Username, "id", t.self.ID)
	return t.self, nil
}

// Start polls for updates and publishes them to bus until ctx is cancelled.
// Connect must have been called.
func (t *Telegram) Start(ctx context.Context, bus domain.MessageBus) error {
	if t.bot == nil {
		return errors.New("telegram: Start called before Connect")
	}

	offset := 0
	if t.dropPending {
		offset = t.skipPending()
	}

	u := tgbotapi.NewUpdate(offset)
	u.Timeout = t.pollTimeout
	u.AllowedUpdates = []string{"message", "callback_query"}
	updates := t.bot.GetUpdatesChan(u)

	t.logger.Info("telegram polling started", "offset", offset)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("telegram channel stopping")
			t.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			upd, ok := normalize(update, t.self.ID)
			if !ok {
				t.logger.Debug("telegram update ignored", "update_id", update.UpdateID)
				continue
			}
			bus.Publish(upd)
		}
	}
}

// skipPending returns the offset just past the newest queued update.
func (t *Telegram) skipPending() int {
	pending, err := t.bot.GetUpdates(tgbotapi.UpdateConfig{Offset: -1, Limit: 1})
	if err != nil {
		t.logger.Warn("could not read pending updates, processing them", "err", domain.RedactError(err))
		return 0
	}
	if len(pending) == 0 {
		return 0
	}
	last := pending[len(pending)-1].UpdateID
	t.logger.Info("dropping pending updates", "last_update_id", last)
	return last + 1
}

// SendText sends msg, splitting it into chunks when it exceeds Telegram's
// length limit. HTML is split without breaking tags or entities. Only the
// first chunk is reply-linked and only the last one carries the buttons.
func (t *Telegram) SendText(ctx context.Context, msg domain.TextMessage) error {
	var chunks []string
	if msg.ParseMode == domain.ParseHTML {
		chunks = format.SplitHTML(msg.Text, telegramMaxMsgLen)
	} else {
		chunks = splitMessage(msg.Text, telegramMaxMsgLen)
	}
	for i, chunk := range chunks {
		out := tgbotapi.NewMessage(msg.ChatID, chunk)
		out.ParseMode = msg.ParseMode
		out.DisableWebPagePreview = msg.DisablePreview
		if i == 0 {
			out.ReplyToMessageID = msg.ReplyTo
		}
		if i == len(chunks)-1 && len(msg.Buttons) > 0 {
			out.ReplyMarkup = keyboard(msg.Buttons)
		}
		if err := t.sendChunk(ctx, out); err != nil {
			return err
		}
	}
	return nil
}

// sendChunk sends one message with retry and rate limit handling. An HTML
// parse error is retried once as plain text.
func (t *Telegram) sendChunk(ctx context.Context, msg tgbotapi.MessageConfig) error {
	var err error
	for attempt := 0; attempt <= telegramMaxSendRetries; attempt++ {
		_, err = t.bot.Send(msg)
		if err == nil {
			return nil
		}
		err = domain.RedactError(err)

		if msg.ParseMode != "" && strings.Contains(err.Error(), "can't parse entities") {
			t.logger.Warn("telegram parse error, retrying as plain text", "err", err, "parse_mode", msg.ParseMode)
			msg.Text = format.PlainText(msg.Text)
			msg.ParseMode = ""
			continue
		}

		wait, retry := retryDelay(err, attempt)
		if !retry || attempt == telegramMaxSendRetries {
			break
		}
		t.logger.Warn("telegram send error, retrying", "err", err, "backoff", wait, "attempt", attempt+1)
		if err := t.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return fmt.Errorf("telegram send: %w", err)
}

// retryDelay decides whether a failed send is retried and how long to wait.
// Rate limits honour retry_after; other API errors are final.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			if apiErr.RetryAfter > 0 {
				return time.Duration(apiErr.RetryAfter) * time.Second, true
			}
			return time.Duration(attempt+1) * 3 * time.Second, true
		case apiErr.Code >= 500:
			return time.Duration(attempt+1) * time.Second, true
		}
		return 0, false
	}
	if strings.Contains(err.Error(), "Too Many Requests") {
		return time.Duration(attempt+1) * 3 * time.Second, true
	}
	// Transport errors.
	return time.Duration(attempt+1) * time.Second, true
}

func (t *Telegram) SendPhoto(ctx context.Context, msg domain.PhotoMessage) error {
	var file tgbotapi.RequestFileData
	switch {
	case msg.Path != "":
		file = tgbotapi.FilePath(msg.Path)
	case msg.URL != "":
		file = tgbotapi.FileURL(msg.URL)
	default:
		return errors.New("telegram send photo: no path or url")
	}

	out := tgbotapi.NewPhoto(msg.ChatID, file)
	out.ReplyToMessageID = msg.ReplyTo
	out.Caption = msg.Caption
	out.ParseMode = msg.ParseMode
	if len(msg.Buttons) > 0 {
		out.ReplyMarkup = keyboard(msg.Buttons)
	}

	var err error
	for attempt := 0; attempt <= telegramMaxSendRetries; attempt++ {
		if _, err = t.bot.Send(out); err == nil {
			return nil
		}
		err = domain.RedactError(err)
		wait, retry := retryDelay(err, attempt)
		if !retry || attempt == telegramMaxSendRetries {
			break
		}
		t.logger.Warn("telegram photo send error, retrying", "err", err, "backoff", wait, "attempt", attempt+1)
		if err := t.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return fmt.Errorf("telegram send photo: %w", err)
}

func (t *Telegram) EditText(_ context.Context, chatID int64, messageID int, text, parseMode string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = parseMode
	if _, err := t.bot.Send(edit); err != nil {
		return fmt.Errorf("telegram edit message: %w", domain.RedactError(err))
	}
	return nil
}

func (t *Telegram) AnswerCallback(_ context.Context, callbackID string) error {
	if _, err := t.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("telegram answer callback: %w", domain.RedactError(err))
	}
	return nil
}

func (t *Telegram) SendChatAction(_ context.Context, chatID int64, action string) error {
	if _, err := t.bot.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		return fmt.Errorf("telegram chat action: %w", domain.RedactError(err))
	}
	return nil
}

func (t *Telegram) FileURL(_ context.Context, fileID string) (string, error) {
	url, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("telegram file url: %w", domain.RedactError(err))
	}
	return url, nil
}

func keyboard(rows [][]domain.Button) tgbotapi.InlineKeyboardMarkup {
	var kb [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var buttons []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		kb = append(kb, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}

// splitMessage cuts text into chunks of at most maxLen bytes, preferring a
// newline in the second half of a chunk and never splitting a UTF-8 sequence.
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}
	var chunks []string
	for len(text) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		next := cut
		if nl := strings.LastIndex(text[:cut], "\n"); nl >= maxLen/2 {
			cut, next = nl, nl+1
		}
		chunks = append(chunks, text[:cut])
		text = text[next:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// botLogger routes the library's own polling errors to slog with the token
// masked.
type botLogger struct {
	logger *slog.Logger
}

func (l botLogger) Println(v ...any) {
	l.logger.Warn(domain.RedactToken(strings.TrimSuffix(fmt.Sprintln(v...), "\n")), "source", "telegram-bot-api")
}

func (l botLogger) Printf(format string, v ...any) {
	l.logger.Warn(domain.RedactToken(fmt.Sprintf(format, v...)), "source", "telegram-bot-api")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
