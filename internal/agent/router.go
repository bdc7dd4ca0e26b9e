package agent

import (
	"strings"

	"github.com/kawainime/TelegramGemini/internal/domain"
)

// input is the per-message view the rule predicates read.
type input struct {
	msg domain.InboundMessage
	bot domain.BotIdentity

	textCmd    *ChatCommand // parsed from Text
	captionCmd *ChatCommand // parsed from Caption
	mentioned  bool
}

// cmd is the command carried by the message, from the text or else the caption.
func (in input) cmd() *ChatCommand {
	if in.textCmd != nil {
		return in.textCmd
	}
	return in.captionCmd
}

// content is the caption or, when there is none, the text.
func (in input) content() string {
	if in.msg.Caption != "" {
		return in.msg.Caption
	}
	return in.msg.Text
}

// rule is one predicate/action pair. Rules are evaluated in order and the
// first whose predicate holds decides the action.
type rule struct {
	name string
	when func(in input) bool
	then func(in input) domain.Action
}

// Classify decides the single action for an inbound message. It performs no
// I/O and is safe for concurrent use.
func Classify(msg domain.InboundMessage, bot domain.BotIdentity) domain.Action {
	act, _ := classify(msg, bot)
	return act
}

// classify also returns the name of the rule that matched, for logging.
func classify(msg domain.InboundMessage, bot domain.BotIdentity) (domain.Action, string) {
	in := input{
		msg:        msg,
		bot:        bot,
		textCmd:    ParseCommand(msg.Text, bot.Username),
		captionCmd: ParseCommand(msg.Caption, bot.Username),
	}
	if bot.Username != "" {
		in.mentioned = findMention(msg.Text, bot.Username) >= 0 || findMention(msg.Caption, bot.Username) >= 0
	}

	if joinRule.when(in) {
		return joinRule.then(in), joinRule.name
	}

	var rules []rule
	switch msg.ChatKind {
	case domain.ChatPrivate:
		rules = privateRules
	case domain.ChatGroup:
		rules = groupRules
	default:
		return domain.NoAction{}, "unsupported_chat"
	}

	for _, r := range rules {
		if r.when(in) {
			return r.then(in), r.name
		}
	}
	return domain.NoAction{}, "fallthrough"
}

var joinRule = rule{
	name: "bot_joined",
	when: func(in input) bool {
		for _, id := range in.msg.JoinedMembers {
			if id == in.bot.ID {
				return true
			}
		}
		return false
	},
	then: func(input) domain.Action { return domain.ShowGuide{Topic: domain.GuideWelcome} },
}

var privateRules = []rule{
	{
		name: "edit_with_instruction",
		when: func(in input) bool {
			_, hasImage := pickAttachment(in.msg)
			text, caption := in.msg.Text, in.msg.Caption
			return hasImage && in.content() != "" &&
				!strings.HasPrefix(text, "/") && !strings.HasPrefix(caption, "/")
		},
		then: func(in input) domain.Action {
			img, _ := pickAttachment(in.msg)
			return domain.EditImage{Image: img, Prompt: in.content()}
		},
	},
	{
		name: "command",
		when: func(in input) bool { return in.cmd().Known() },
		then: func(in input) domain.Action { return commandAction(in.cmd(), in.msg) },
	},
	{
		name: "unaddressed",
		when: func(in input) bool {
			return in.msg.ReplyTo == nil || in.msg.ReplyTo.SenderID == in.msg.SenderID
		},
		then: func(in input) domain.Action {
			if in.content() == "" && !in.msg.HasAttachment() {
				return domain.NoAction{}
			}
			return domain.ShowGuide{Topic: domain.GuidePrompt}
		},
	},
	{
		name: "reply_to_user_text",
		when: func(in input) bool {
			r := in.msg.ReplyTo
			return r != nil && !r.FromBot && r.HasText() && in.msg.Text != ""
		},
		then: func(in input) domain.Action {
			return domain.AnswerQuestion{Question: in.msg.Text, PriorContext: in.msg.ReplyTo.Text}
		},
	},
	{
		name: "reply_to_bot_text",
		when: func(in input) bool {
			r := in.msg.ReplyTo
			return r != nil && r.FromBot && r.HasText() && in.msg.Text != ""
		},
		then: func(in input) domain.Action {
			return domain.AnswerQuestion{Question: in.msg.Text, PriorContext: priorContext(in.msg.ReplyTo)}
		},
	},
}

// Group rules put every attachment-bearing intent ahead of the text intents.
var groupRules = []rule{
	{
		name: "caption_image_command",
		when: func(in input) bool {
			return in.msg.HasAttachment() && in.captionCmd != nil && in.captionCmd.Name == cmdImage
		},
		then: func(in input) domain.Action {
			if in.captionCmd.Arg == "" {
				return domain.ValidationError{Message: msgCaptionEditEmpty}
			}
			return domain.EditImage{Image: in.msg.Attachments[0], Prompt: in.captionCmd.Arg}
		},
	},
	{
		name: "image_command_on_reply",
		when: func(in input) bool {
			return in.textCmd != nil && in.textCmd.Name == cmdImage && in.msg.ReplyTo.HasAttachment()
		},
		then: func(in input) domain.Action {
			if in.textCmd.Arg == "" {
				return domain.ValidationError{Message: msgReplyEditEmpty}
			}
			return domain.EditImage{Image: in.msg.ReplyTo.Attachments[0], Prompt: in.textCmd.Arg}
		},
	},
	{
		name: "reply_to_bot_image",
		when: func(in input) bool {
			r := in.msg.ReplyTo
			return r != nil && r.FromBot && r.HasAttachment() && !in.cmd().Known()
		},
		then: func(in input) domain.Action {
			prompt := removeMention(in.content(), in.bot.Username)
			if prompt == "" {
				return domain.ValidationError{Message: msgBotImageEditEmpty}
			}
			return domain.EditImage{Image: in.msg.ReplyTo.Attachments[0], Prompt: prompt}
		},
	},
	{
		name: "mention_with_image",
		when: func(in input) bool {
			if !in.mentioned || in.cmd().Known() {
				return false
			}
			_, ok := ownOrRepliedAttachment(in.msg)
			return ok
		},
		then: func(in input) domain.Action {
			img, _ := ownOrRepliedAttachment(in.msg)
			prompt := removeMention(in.msg.Caption, in.bot.Username)
			if prompt == "" {
				prompt = removeMention(in.msg.Text, in.bot.Username)
			}
			if prompt == "" {
				return domain.ValidationError{Message: msgMentionEditEmpty}
			}
			return domain.EditImage{Image: img, Prompt: prompt}
		},
	},
	{
		name: "command",
		when: func(in input) bool { return in.cmd().Known() },
		then: func(in input) domain.Action { return commandAction(in.cmd(), in.msg) },
	},
	{
		name: "reply_to_bot_text",
		when: func(in input) bool {
			r := in.msg.ReplyTo
			return r != nil && r.FromBot && r.HasText() && in.msg.Text != ""
		},
		then: func(in input) domain.Action {
			return domain.AnswerQuestion{Question: in.msg.Text, PriorContext: priorContext(in.msg.ReplyTo)}
		},
	},
	{
		name: "mention_question",
		when: func(in input) bool {
			return in.mentioned && removeMention(in.msg.Text, in.bot.Username) != ""
		},
		then: func(in input) domain.Action {
			return domain.AnswerQuestion{Question: removeMention(in.msg.Text, in.bot.Username)}
		},
	},
}

// pickAttachment chooses the image to edit: a replied-to bot image first,
// then the message's own image, then any replied-to image.
func pickAttachment(msg domain.InboundMessage) (domain.Attachment, bool) {
	if r := msg.ReplyTo; r != nil && r.FromBot && r.HasAttachment() {
		return r.Attachments[0], true
	}
	return ownOrRepliedAttachment(msg)
}

func ownOrRepliedAttachment(msg domain.InboundMessage) (domain.Attachment, bool) {
	if msg.HasAttachment() {
		return msg.Attachments[0], true
	}
	if msg.ReplyTo.HasAttachment() {
		return msg.ReplyTo.Attachments[0], true
	}
	return domain.Attachment{}, false
}

// priorContext is the replied-to text, without the answer label when the
// bot wrote it.
func priorContext(r *domain.ReplyTarget) string {
	if !r.HasText() {
		return ""
	}
	if r.FromBot {
		return stripAnswerLabel(r.Text)
	}
	return r.Text
}

func stripAnswerLabel(s string) string {
	for _, label := range []string{"<b>" + answerLabel + "</b>", answerLabel} {
		if strings.HasPrefix(s, label) {
			return strings.TrimLeft(strings.TrimPrefix(s, label), " \n")
		}
	}
	return s
}

// findMention returns the byte offset of the first "@username" in s, matched
// case-insensitively and not followed by another username character.
func findMention(s, username string) int {
	if username == "" {
		return -1
	}
	needle := "@" + username
	for i := 0; i+len(needle) <= len(s); i++ {
		if s[i] != '@' || !strings.EqualFold(s[i:i+len(needle)], needle) {
			continue
		}
		if end := i + len(needle); end < len(s) && isUsernameByte(s[end]) {
			continue
		}
		return i
	}
	return -1
}

// removeMention drops the first mention of the bot from s and trims the rest.
func removeMention(s, username string) string {
	i := findMention(s, username)
	if i < 0 {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[:i] + s[i+len(username)+1:])
}

func isUsernameByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
