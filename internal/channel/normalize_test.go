package channel

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/kawainime/TelegramGemini/internal/domain"
)

const botID = 999

func privateChat() *tgbotapi.Chat { return &tgbotapi.Chat{ID: 42, Type: "private"} }

func TestNormalize_PrivateText(t *testing.T) {
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: 5},
		Chat:      privateChat(),
		Date:      1700000000,
		Text:      "  /tanya hello \n",
	}}

	got, ok := normalize(upd, botID)
	if !ok {
		t.Fatal("expected update to be handled")
	}
	want := domain.Update{Message: &domain.InboundMessage{
		ChatID:    42,
		ChatKind:  domain.ChatPrivate,
		SenderID:  5,
		MessageID: 7,
		Text:      "/tanya hello",
		Timestamp: time.Unix(1700000000, 0),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ChatKinds(t *testing.T) {
	tests := []struct {
		chatType string
		want     domain.ChatKind
		ok       bool
	}{
		{"private", domain.ChatPrivate, true},
		{"group", domain.ChatGroup, true},
		{"supergroup", domain.ChatGroup, true},
		{"channel", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.chatType, func(t *testing.T) {
			upd := tgbotapi.Update{Message: &tgbotapi.Message{
				From: &tgbotapi.User{ID: 1},
				Chat: &tgbotapi.Chat{ID: -100, Type: tt.chatType},
				Text: "hi",
			}}
			got, ok := normalize(upd, botID)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got.Message.ChatKind != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got.Message.ChatKind)
			}
		})
	}
}

func TestNormalize_Ignored(t *testing.T) {
	tests := map[string]tgbotapi.Update{
		"edited message":      {EditedMessage: &tgbotapi.Message{Chat: privateChat(), From: &tgbotapi.User{ID: 1}}},
		"no sender":           {Message: &tgbotapi.Message{Chat: privateChat()}},
		"callback no message": {CallbackQuery: &tgbotapi.CallbackQuery{ID: "x"}},
		"empty":               {},
	}
	for name, upd := range tests {
		t.Run(name, func(t *testing.T) {
			if _, ok := normalize(upd, botID); ok {
				t.Fatal("expected update to be ignored")
			}
		})
	}
}

func TestNormalize_Attachments(t *testing.T) {
	tests := []struct {
		name string
		msg  tgbotapi.Message
		want []domain.Attachment
	}{
		{
			name: "largest photo size",
			msg: tgbotapi.Message{Photo: []tgbotapi.PhotoSize{
				{FileID: "small", Width: 90}, {FileID: "large", Width: 1280},
			}},
			want: []domain.Attachment{{FileID: "large", MIMEType: "image/jpeg"}},
		},
		{
			name: "image document",
			msg:  tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", MimeType: "image/png"}},
			want: []domain.Attachment{{FileID: "doc", MIMEType: "image/png"}},
		},
		{
			name: "non-image document",
			msg:  tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", MimeType: "application/pdf"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			msg.From = &tgbotapi.User{ID: 1}
			msg.Chat = privateChat()
			msg.Caption = " edit this "

			got, ok := normalize(tgbotapi.Update{Message: &msg}, botID)
			if !ok {
				t.Fatal("expected update to be handled")
			}
			if diff := cmp.Diff(tt.want, got.Message.Attachments); diff != "" {
				t.Fatalf("attachments mismatch (-want +got):\n%s", diff)
			}
			if got.Message.Caption != "edit this" {
				t.Fatalf("expected trimmed caption, got %q", got.Message.Caption)
			}
		})
	}
}

func TestNormalize_ReplyTarget(t *testing.T) {
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 5},
		Chat: &tgbotapi.Chat{ID: -1, Type: "supergroup"},
		Text: "why?",
		ReplyToMessage: &tgbotapi.Message{
			From:  &tgbotapi.User{ID: botID, IsBot: true},
			Text:  " Jawaban: 42 ",
			Photo: []tgbotapi.PhotoSize{{FileID: "p1"}},
		},
	}}

	got, ok := normalize(upd, botID)
	if !ok {
		t.Fatal("expected update to be handled")
	}
	want := &domain.ReplyTarget{
		SenderID:    botID,
		FromBot:     true,
		Text:        "Jawaban: 42",
		Attachments: []domain.Attachment{{FileID: "p1", MIMEType: "image/jpeg"}},
	}
	if diff := cmp.Diff(want, got.Message.ReplyTo); diff != "" {
		t.Fatalf("reply mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ReplyFromOtherBot(t *testing.T) {
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		From:           &tgbotapi.User{ID: 5},
		Chat:           privateChat(),
		ReplyToMessage: &tgbotapi.Message{From: &tgbotapi.User{ID: 123, IsBot: true}, Text: "x"},
	}}
	got, _ := normalize(upd, botID)
	if got.Message.ReplyTo.FromBot {
		t.Fatal("a reply to another bot must not count as a reply to this bot")
	}
}

func TestNormalize_NewChatMembers(t *testing.T) {
	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		From:           &tgbotapi.User{ID: 5},
		Chat:           &tgbotapi.Chat{ID: -1, Type: "group"},
		NewChatMembers: []tgbotapi.User{{ID: 8}, {ID: botID}},
	}}
	got, _ := normalize(upd, botID)
	if diff := cmp.Diff([]int64{8, botID}, got.Message.JoinedMembers); diff != "" {
		t.Fatalf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Callback(t *testing.T) {
	upd := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 5},
		Message: &tgbotapi.Message{MessageID: 77, Chat: privateChat()},
		Data:    domain.CallbackAskEdit,
	}}
	got, ok := normalize(upd, botID)
	if !ok {
		t.Fatal("expected callback to be handled")
	}
	want := domain.Update{Callback: &domain.CallbackQuery{
		ID: "cb1", ChatID: 42, MessageID: 77, SenderID: 5, Data: domain.CallbackAskEdit,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
