package action

import (
	"context"
	"fmt"

	"github.com/kawainime/TelegramGemini/internal/domain"
)

var (
	welcomeButtons = [][]domain.Button{
		{{Text: "✍️ INGIN BERTANYA", Data: domain.CallbackAskNew}},
		{{Text: "🖼️ BUATKAN GAMBAR", Data: domain.CallbackImageNew}},
	}
	promptButtons = [][]domain.Button{
		{{Text: "✍️ Tanya AI", Data: domain.CallbackAskEdit}},
		{{Text: "🖼️ Buat Gambar", Data: domain.CallbackImageEdit}},
	}
)

// guide renders a guide topic. replyTo links the guide to a message;
// editID, when non-zero and g.Edit is set, is the message to replace.
func (h *Handlers) guide(ctx context.Context, chatID int64, replyTo, editID int, g domain.ShowGuide) error {
	out := domain.TextMessage{ChatID: chatID, ReplyTo: replyTo}
	switch g.Topic {
	case domain.GuideWelcome:
		out.Text = welcomeText
		out.Buttons = welcomeButtons
	case domain.GuidePrompt:
		out.Text = promptText
		out.Buttons = promptButtons
	case domain.GuideAsk:
		out.Text = askGuideText
		out.ParseMode = domain.ParseHTML
	case domain.GuideImage:
		out.Text = imageGuideText
		out.ParseMode = domain.ParseHTML
	default:
		return fmt.Errorf("unknown guide topic %q", g.Topic)
	}

	if g.Edit && editID != 0 {
		err := h.msgr.EditText(ctx, chatID, editID, out.Text, out.ParseMode)
		if err == nil {
			return nil
		}
		h.log(ctx).Warn("editing guide message failed, sending a new one", "topic", g.Topic, "err", err)
	}

	if err := h.msgr.SendText(ctx, out); err != nil {
		return fmt.Errorf("send guide %s: %w", g.Topic, err)
	}
	return nil
}
