package action

import (
	"context"
	"fmt"

	"github.com/kawainime/TelegramGemini/internal/domain"
)

// supportButtons has one URL button per configured donation link and always
// ends with the confirmation button.
func (h *Handlers) supportButtons() [][]domain.Button {
	var rows [][]domain.Button
	links := []struct{ label, url string }{
		{"❤️ Saweria", h.support.SaweriaLink},
		{"💖 Trakteer", h.support.TrakteerLink},
		{"⭐ Karyakarsa", h.support.KaryakarsaLink},
	}
	for _, l := range links {
		if l.url != "" {
			rows = append(rows, []domain.Button{{Text: l.label, URL: l.url}})
		}
	}
	return append(rows, []domain.Button{{Text: "✉️ Saya Sudah Dukung", Data: domain.CallbackConfirmSupport}})
}

func (h *Handlers) supportInfo(ctx context.Context, chatID int64) error {
	text := supportIntro + "\n\n" + h.support.Message
	buttons := h.supportButtons()

	if h.support.QRISImageURL != "" {
		err := h.msgr.SendPhoto(ctx, domain.PhotoMessage{
			ChatID:    chatID,
			URL:       h.support.QRISImageURL,
			Caption:   text,
			ParseMode: domain.ParseHTML,
			Buttons:   buttons,
		})
		if err == nil {
			return nil
		}
		h.log(ctx).Warn("sending QRIS photo failed, falling back to text", "err", err)
	}

	err := h.msgr.SendText(ctx, domain.TextMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: domain.ParseHTML,
		Buttons:   buttons,
	})
	if err != nil {
		return fmt.Errorf("send support info: %w", err)
	}
	return nil
}

func (h *Handlers) confirmSupport(ctx context.Context, chatID, userID int64) error {
	err := h.msgr.SendText(ctx, domain.TextMessage{
		ChatID:    chatID,
		Text:      fmt.Sprintf(supportConfirmFmt, userID, h.adminUsername),
		ParseMode: domain.ParseHTML,
	})
	if err != nil {
		return fmt.Errorf("send support confirmation: %w", err)
	}
	return nil
}
