package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/kawainime/TelegramGemini/internal/domain"
	"github.com/kawainime/TelegramGemini/internal/format"
)

func (h *Handlers) showPersona(ctx context.Context, msg domain.InboundMessage) error {
	persona, err := h.personas.Read(ctx)
	if err != nil {
		return h.apologise(ctx, msg, personaReadFailed, fmt.Errorf("read persona: %w", err))
	}
	if persona == "" {
		return h.reply(ctx, msg, personaNoneText)
	}
	return h.replyHTML(ctx, msg, fmt.Sprintf(personaCurrentFmt, format.Escape(persona)))
}

// setPersona updates the persona. Only the configured admin may use it;
// "hapus" clears it and an empty argument shows usage.
func (h *Handlers) setPersona(ctx context.Context, msg domain.InboundMessage, a domain.SetPersona) error {
	logger := h.log(ctx)
	if h.adminID == 0 {
		logger.Warn("persona update rejected", "user_id", msg.SenderID, "err", domain.ErrNotConfigured)
		return h.reply(ctx, msg, personaNotConfig)
	}
	if msg.SenderID != h.adminID {
		logger.Warn("persona update rejected", "user_id", msg.SenderID, "err", domain.ErrPermissionDenied)
		return h.reply(ctx, msg, personaDenied)
	}

	arg := strings.TrimSpace(a.Argument)
	switch {
	case arg == "":
		current, err := h.personas.Read(ctx)
		if err != nil {
			return h.apologise(ctx, msg, personaReadFailed, fmt.Errorf("read persona: %w", err))
		}
		shown := personaUnsetLabel
		if current != "" {
			shown = "---\n" + format.Escape(current) + "\n---"
		}
		return h.replyHTML(ctx, msg, fmt.Sprintf(personaUsageFmt, shown))

	case strings.EqualFold(arg, personaClearWord):
		if err := h.personas.Write(ctx, ""); err != nil {
			return h.apologise(ctx, msg, personaClearFailed, fmt.Errorf("clear persona: %w", err))
		}
		logger.Info("persona cleared", "user_id", msg.SenderID)
		return h.reply(ctx, msg, personaCleared)

	default:
		if err := h.personas.Write(ctx, arg); err != nil {
			return h.apologise(ctx, msg, personaWriteFailed, fmt.Errorf("write persona: %w", err))
		}
		logger.Info("persona updated", "user_id", msg.SenderID, "length", len(arg))
		return h.reply(ctx, msg, personaUpdated)
	}
}
