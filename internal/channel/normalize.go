package channel

import (
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kawainime/TelegramGemini/internal/domain"
)

// normalize converts a Telegram update into a domain update. It reports false
// for updates the bot does not handle: edited messages, channel posts, messages
// without a sender and chats other than private, group or supergroup.
func normalize(upd tgbotapi.Update, botID int64) (domain.Update, bool) {
	switch {
	case upd.CallbackQuery != nil:
		cb, ok := normalizeCallback(upd.CallbackQuery)
		if !ok {
			return domain.Update{}, false
		}
		return domain.Update{Callback: cb}, true
	case upd.Message != nil:
		msg, ok := normalizeMessage(upd.Message, botID)
		if !ok {
			return domain.Update{}, false
		}
		return domain.Update{Message: msg}, true
	}
	return domain.Update{}, false
}

func normalizeMessage(m *tgbotapi.Message, botID int64) (*domain.InboundMessage, bool) {
	if m.Chat == nil || m.From == nil {
		return nil, false
	}
	kind, ok := chatKind(m.Chat.Type)
	if !ok {
		return nil, false
	}

	out := &domain.InboundMessage{
		ChatID:      m.Chat.ID,
		ChatKind:    kind,
		SenderID:    m.From.ID,
		MessageID:   m.MessageID,
		Text:        strings.TrimSpace(m.Text),
		Caption:     strings.TrimSpace(m.Caption),
		Attachments: attachments(m),
		Timestamp:   time.Unix(int64(m.Date), 0),
	}
	for _, u := range m.NewChatMembers {
		out.JoinedMembers = append(out.JoinedMembers, u.ID)
	}

	if r := m.ReplyToMessage; r != nil {
		target := &domain.ReplyTarget{
			Text:        strings.TrimSpace(r.Text),
			Attachments: attachments(r),
		}
		if r.From != nil {
			target.SenderID = r.From.ID
			target.FromBot = r.From.ID == botID
		}
		out.ReplyTo = target
	}
	return out, true
}

func normalizeCallback(q *tgbotapi.CallbackQuery) (*domain.CallbackQuery, bool) {
	if q.Message == nil || q.Message.Chat == nil {
		return nil, false
	}
	cb := &domain.CallbackQuery{
		ID:        q.ID,
		ChatID:    q.Message.Chat.ID,
		MessageID: q.Message.MessageID,
		Data:      q.Data,
	}
	if q.From != nil {
		cb.SenderID = q.From.ID
	}
	return cb, true
}

func chatKind(t string) (domain.ChatKind, bool) {
	switch t {
	case "private":
		return domain.ChatPrivate, true
	case "group", "supergroup":
		return domain.ChatGroup, true
	}
	return "", false
}

// attachments returns the image carried by m: the largest photo size, or a
// document whose MIME type is an image.
func attachments(m *tgbotapi.Message) []domain.Attachment {
	if n := len(m.Photo); n > 0 {
		return []domain.Attachment{{FileID: m.Photo[n-1].FileID, MIMEType: "image/jpeg"}}
	}
	if d := m.Document; d != nil && strings.HasPrefix(d.MimeType, "image/") {
		return []domain.Attachment{{FileID: d.FileID, MIMEType: d.MimeType}}
	}
	return nil
}
