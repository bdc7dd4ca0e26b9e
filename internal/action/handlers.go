// Package action carries out routed actions: it calls Gemini, formats the
// result and replies through the messenger.
package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kawainime/TelegramGemini/internal/config"
	"github.com/kawainime/TelegramGemini/internal/domain"
)

const defaultTimeout = 120 * time.Second

// Downloader fetches the bytes behind a file URL.
type Downloader interface {
	Download(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// Config holds the collaborators and settings of the handlers.
type Config struct {
	Messenger  domain.Messenger
	Text       domain.TextGenerator
	Images     domain.ImageGenerator
	Personas   domain.PersonaStore
	Downloader Downloader

	AdminID       int64 // 0 disables /setpersona
	AdminUsername string
	Support       config.SupportConfig
	WebSearch     bool
	TempDir       string        // generated images; "" = os.TempDir()
	Timeout       time.Duration // per AI call and download
	Logger        *slog.Logger
}

// Handlers executes actions. It is safe for concurrent use.
type Handlers struct {
	msgr       domain.Messenger
	text       domain.TextGenerator
	images     domain.ImageGenerator
	personas   domain.PersonaStore
	downloader Downloader

	adminID       int64
	adminUsername string
	support       config.SupportConfig
	webSearch     bool
	tempDir       string
	timeout       time.Duration
	logger        *slog.Logger
}

func New(cfg Config) *Handlers {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = defaultAdminUsername
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handlers{
		msgr:          cfg.Messenger,
		text:          cfg.Text,
		images:        cfg.Images,
		personas:      cfg.Personas,
		downloader:    cfg.Downloader,
		adminID:       cfg.AdminID,
		adminUsername: cfg.AdminUsername,
		support:       cfg.Support,
		webSearch:     cfg.WebSearch,
		tempDir:       cfg.TempDir,
		timeout:       cfg.Timeout,
		logger:        cfg.Logger,
	}
}

// Execute runs the action decided for an inbound message. User-facing
// failures are replied to before the error is returned for logging.
func (h *Handlers) Execute(ctx context.Context, msg domain.InboundMessage, act domain.Action) error {
	switch a := act.(type) {
	case domain.AnswerQuestion:
		return h.answer(ctx, msg, a)
	case domain.GenerateImage:
		return h.generate(ctx, msg, a)
	case domain.EditImage:
		return h.edit(ctx, msg, a)
	case domain.ShowGuide:
		return h.guide(ctx, msg.ChatID, msg.MessageID, 0, a)
	case domain.ShowSupportInfo:
		return h.supportInfo(ctx, msg.ChatID)
	case domain.ConfirmSupport:
		return h.confirmSupport(ctx, msg.ChatID, msg.SenderID)
	case domain.ShowPersona:
		return h.showPersona(ctx, msg)
	case domain.SetPersona:
		return h.setPersona(ctx, msg, a)
	case domain.ValidationError:
		return h.replyHTML(ctx, msg, a.Message)
	case domain.NoAction:
		return nil
	}
	return fmt.Errorf("unsupported action %q", act.Kind())
}

// ExecuteCallback acknowledges a button press and runs its action.
func (h *Handlers) ExecuteCallback(ctx context.Context, cb domain.CallbackQuery, act domain.Action) error {
	ackErr := h.msgr.AnswerCallback(ctx, cb.ID)
	if ackErr != nil {
		ackErr = fmt.Errorf("answer callback: %w", ackErr)
	}

	var err error
	switch a := act.(type) {
	case domain.ShowGuide:
		err = h.guide(ctx, cb.ChatID, 0, cb.MessageID, a)
	case domain.ConfirmSupport:
		err = h.confirmSupport(ctx, cb.ChatID, cb.SenderID)
	case domain.NoAction:
	default:
		err = fmt.Errorf("unsupported callback action %q", act.Kind())
	}
	return errors.Join(ackErr, err)
}

func (h *Handlers) log(ctx context.Context) *slog.Logger {
	return domain.LoggerFrom(ctx, h.logger)
}

// reply sends plain text linked to msg.
func (h *Handlers) reply(ctx context.Context, msg domain.InboundMessage, text string) error {
	return h.msgr.SendText(ctx, domain.TextMessage{ChatID: msg.ChatID, ReplyTo: msg.MessageID, Text: text})
}

// replyHTML sends HTML linked to msg without link previews.
func (h *Handlers) replyHTML(ctx context.Context, msg domain.InboundMessage, text string) error {
	return h.msgr.SendText(ctx, domain.TextMessage{
		ChatID:         msg.ChatID,
		ReplyTo:        msg.MessageID,
		Text:           text,
		ParseMode:      domain.ParseHTML,
		DisablePreview: true,
	})
}

// chatAction shows a typing/uploading indicator. Failure only costs the
// indicator.
func (h *Handlers) chatAction(ctx context.Context, chatID int64, action string) {
	if err := h.msgr.SendChatAction(ctx, chatID, action); err != nil {
		h.log(ctx).Debug("chat action failed", "action", action, "err", err)
	}
}

// apologise replies with a fixed message and returns cause for logging.
func (h *Handlers) apologise(ctx context.Context, msg domain.InboundMessage, text string, cause error) error {
	if err := h.reply(ctx, msg, text); err != nil {
		return errors.Join(cause, fmt.Errorf("send apology: %w", err))
	}
	return cause
}
