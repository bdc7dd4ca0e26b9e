package domain

import "time"

// ChatKind distinguishes one-to-one chats from group chats.
type ChatKind string

const (
	ChatPrivate ChatKind = "private"
	ChatGroup   ChatKind = "group" // group and supergroup
)

// Attachment is an image the platform can hand back on request.
type Attachment struct {
	FileID   string `json:"file_id"`
	MIMEType string `json:"mime_type"`
}

// ReplyTarget describes the message an inbound message replies to.
type ReplyTarget struct {
	SenderID    int64
	FromBot     bool // sent by this bot
	Text        string
	Attachments []Attachment
}

// HasText reports whether the replied-to message carried text.
func (r *ReplyTarget) HasText() bool {
	return r != nil && r.Text != ""
}

// HasAttachment reports whether the replied-to message carried an image.
func (r *ReplyTarget) HasAttachment() bool {
	return r != nil && len(r.Attachments) > 0
}

// InboundMessage is a platform message normalised for classification.
// Text and Caption are already trimmed.
type InboundMessage struct {
	ChatID        int64
	ChatKind      ChatKind
	SenderID      int64
	MessageID     int
	Text          string
	Caption       string
	Attachments   []Attachment
	ReplyTo       *ReplyTarget
	JoinedMembers []int64
	Timestamp     time.Time
}

// HasAttachment reports whether the message itself carries an image.
func (m InboundMessage) HasAttachment() bool {
	return len(m.Attachments) > 0
}

// CallbackQuery is an inline keyboard button press.
type CallbackQuery struct {
	ID        string
	ChatID    int64
	MessageID int
	SenderID  int64
	Data      string
}

// Update is a single event delivered through the bus. Exactly one field is set.
type Update struct {
	Message  *InboundMessage
	Callback *CallbackQuery
}

// ChatID returns the chat the update belongs to.
func (u Update) ChatID() int64 {
	switch {
	case u.Message != nil:
		return u.Message.ChatID
	case u.Callback != nil:
		return u.Callback.ChatID
	}
	return 0
}

// BotIdentity is the bot's own account, used for mention and reply detection.
type BotIdentity struct {
	ID       int64
	Username string
}
