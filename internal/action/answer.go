package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/kawainime/TelegramGemini/internal/domain"
	"github.com/kawainime/TelegramGemini/internal/format"
)

func (h *Handlers) answer(ctx context.Context, msg domain.InboundMessage, a domain.AnswerQuestion) error {
	h.chatAction(ctx, msg.ChatID, domain.ChatActionTyping)

	persona, err := h.personas.Read(ctx)
	if err != nil {
		h.log(ctx).Warn("persona unavailable, answering without it", "err", err)
		persona = ""
	}
	prompt := BuildPrompt(persona, a.PriorContext, a.Question)

	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	resp, err := h.text.GenerateText(callCtx, prompt, h.webSearch)
	if err != nil {
		return h.apologise(ctx, msg, answerFailedText, fmt.Errorf("answer question: %w", err))
	}

	answer := strings.Join(resp.Texts(), " ")
	if answer == "" {
		answer = noAnswerText
	}

	err = h.msgr.SendText(ctx, domain.TextMessage{
		ChatID:    msg.ChatID,
		ReplyTo:   msg.MessageID,
		Text:      answerHeader + format.TelegramHTML(answer),
		ParseMode: domain.ParseHTML,
	})
	if err != nil {
		return fmt.Errorf("send answer: %w", err)
	}
	return nil
}
