package domain

import "context"

// Parse modes understood by the messaging platform.
const (
	ParseHTML = "HTML"
)

// Chat actions shown while a reply is being prepared.
const (
	ChatActionTyping      = "typing"
	ChatActionUploadPhoto = "upload_photo"
)

// Button is an inline keyboard button. Exactly one of Data or URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// TextMessage is an outbound text message.
type TextMessage struct {
	ChatID         int64
	ReplyTo        int // 0 = not reply-linked
	Text           string
	ParseMode      string
	DisablePreview bool
	Buttons        [][]Button
}

// PhotoMessage is an outbound photo, read from a local file or fetched by the
// platform from a URL.
type PhotoMessage struct {
	ChatID    int64
	ReplyTo   int
	Path      string
	URL       string
	Caption   string
	ParseMode string
	Buttons   [][]Button
}

// Messenger is the outbound side of the chat platform.
type Messenger interface {
	SendText(ctx context.Context, msg TextMessage) error
	SendPhoto(ctx context.Context, msg PhotoMessage) error
	EditText(ctx context.Context, chatID int64, messageID int, text, parseMode string) error
	AnswerCallback(ctx context.Context, callbackID string) error
	SendChatAction(ctx context.Context, chatID int64, action string) error
	FileURL(ctx context.Context, fileID string) (string, error)
}

// MessageBus carries inbound updates from channels to the dispatcher.
type MessageBus interface {
	Publish(upd Update)
	Subscribe() <-chan Update
	Close()
}
