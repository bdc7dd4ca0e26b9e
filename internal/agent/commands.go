package agent

import (
	"strings"
	"unicode"

	"github.com/kawainime/TelegramGemini/internal/domain"
)

// Command names the bot answers to.
const (
	cmdStart      = "start"
	cmdHelp       = "help"
	cmdAsk        = "tanya"
	cmdImage      = "gambar"
	cmdGetPersona = "getpersona"
	cmdSetPersona = "setpersona"
	cmdSupport    = "dukung"
)

var knownCommands = map[string]bool{
	cmdStart:      true,
	cmdHelp:       true,
	cmdAsk:        true,
	cmdImage:      true,
	cmdGetPersona: true,
	cmdSetPersona: true,
	cmdSupport:    true,
}

// ChatCommand is a parsed slash command.
type ChatCommand struct {
	Name string // as typed, without "/" and "@bot" suffix
	Arg  string // remainder of the text, trimmed
	Raw  string
}

// Known reports whether the bot handles this command.
func (c *ChatCommand) Known() bool {
	return c != nil && knownCommands[c.Name]
}

// ParseCommand parses text starting with "/" into a ChatCommand. A
// "/cmd@name" suffix must name this bot; commands for other bots return nil.
// Command names are case-sensitive, as in the Bot API; only the bot username
// compares case-insensitively. Returns nil if the text is not a command.
func ParseCommand(text, botUsername string) *ChatCommand {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return nil
	}

	head, rest := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, rest = text[:i], text[i:]
	}

	name := strings.TrimPrefix(head, "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		if !strings.EqualFold(name[at+1:], botUsername) {
			return nil
		}
		name = name[:at]
	}
	if name == "" {
		return nil
	}

	return &ChatCommand{
		Name: name,
		Arg:  strings.TrimSpace(rest),
		Raw:  text,
	}
}

// commandAction maps a known command to its action. The reply-chain supplies
// context for /tanya and the source image for /gambar.
func commandAction(cmd *ChatCommand, msg domain.InboundMessage) domain.Action {
	switch cmd.Name {
	case cmdStart, cmdHelp:
		return domain.ShowGuide{Topic: domain.GuideWelcome}
	case cmdSupport:
		return domain.ShowSupportInfo{}
	case cmdGetPersona:
		return domain.ShowPersona{}
	case cmdSetPersona:
		return domain.SetPersona{Argument: cmd.Arg}

	case cmdAsk:
		if cmd.Arg != "" {
			return domain.AnswerQuestion{Question: cmd.Arg, PriorContext: priorContext(msg.ReplyTo)}
		}
		if msg.ReplyTo.HasText() {
			return domain.AnswerQuestion{Question: priorContext(msg.ReplyTo)}
		}
		return domain.ValidationError{Message: msgEmptyQuestion}

	case cmdImage:
		if cmd.Arg == "" {
			if msg.ReplyTo.HasAttachment() {
				return domain.ValidationError{Message: msgEditPromptRequired}
			}
			return domain.ValidationError{Message: msgEmptyImagePrompt}
		}
		if img, ok := pickAttachment(msg); ok {
			return domain.EditImage{Image: img, Prompt: cmd.Arg}
		}
		return domain.GenerateImage{Prompt: cmd.Arg}
	}
	return domain.NoAction{}
}
