package action

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kawainime/TelegramGemini/internal/domain"
	"github.com/kawainime/TelegramGemini/internal/format"
)

func (h *Handlers) generate(ctx context.Context, msg domain.InboundMessage, a domain.GenerateImage) error {
	h.chatAction(ctx, msg.ChatID, domain.ChatActionUploadPhoto)

	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	resp, err := h.images.GenerateImage(callCtx, a.Prompt, nil)
	if err != nil {
		return h.apologise(ctx, msg, generateFailedText, fmt.Errorf("generate image: %w", err))
	}
	if err := h.emit(ctx, msg, resp, noImageText); err != nil {
		return h.apologise(ctx, msg, generateFailedText, fmt.Errorf("generate image: %w", err))
	}
	return nil
}

func (h *Handlers) edit(ctx context.Context, msg domain.InboundMessage, a domain.EditImage) error {
	prompt := strings.TrimSpace(a.Prompt)
	if prompt == "" {
		h.log(ctx).Debug("edit rejected", "err", domain.ErrEmptyPrompt)
		return h.reply(ctx, msg, emptyEditPrompt)
	}

	h.chatAction(ctx, msg.ChatID, domain.ChatActionUploadPhoto)

	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	source, err := h.fetchAttachment(callCtx, a.Image)
	if err != nil {
		return h.apologise(ctx, msg, editFailedText, fmt.Errorf("edit image: %w", err))
	}
	resp, err := h.images.GenerateImage(callCtx, prompt, source)
	if err != nil {
		return h.apologise(ctx, msg, editFailedText, fmt.Errorf("edit image: %w", err))
	}
	if err := h.emit(ctx, msg, resp, noEditResultText); err != nil {
		return h.apologise(ctx, msg, editFailedText, fmt.Errorf("edit image: %w", err))
	}
	return nil
}

// fetchAttachment resolves a Telegram file to inline image bytes.
func (h *Handlers) fetchAttachment(ctx context.Context, att domain.Attachment) (*domain.InlineImage, error) {
	url, err := h.msgr.FileURL(ctx, att.FileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}
	data, contentType, err := h.downloader.Download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}

	mime := att.MIMEType
	if mime == "" && strings.HasPrefix(contentType, "image/") {
		mime = contentType
	}
	if mime == "" {
		mime = "image/jpeg"
	}
	return &domain.InlineImage{Data: data, MIMEType: mime}, nil
}

// emit sends every part of resp in order: text parts as separate replies,
// image parts as photos. fallback is sent when no image was produced.
func (h *Handlers) emit(ctx context.Context, msg domain.InboundMessage, resp *domain.AIResponse, fallback string) error {
	images := 0
	if resp != nil {
		for _, part := range resp.Parts {
			if part.IsImage() {
				if err := h.sendImage(ctx, msg, part); err != nil {
					return err
				}
				images++
				continue
			}
			if strings.TrimSpace(part.Text) == "" {
				continue
			}
			if err := h.replyHTML(ctx, msg, format.TelegramHTML(part.Text)); err != nil {
				return fmt.Errorf("send text part: %w", err)
			}
		}
	}

	if images == 0 {
		if err := h.reply(ctx, msg, fallback); err != nil {
			return fmt.Errorf("send fallback: %w", err)
		}
	}
	return nil
}

// sendImage writes the image to a temporary file, uploads it and removes the
// file whether or not the upload succeeded.
func (h *Handlers) sendImage(ctx context.Context, msg domain.InboundMessage, part domain.Part) error {
	f, err := os.CreateTemp(h.tempDir, fmt.Sprintf("image_%d_*%s", msg.MessageID, extensionFor(part.MIMEType)))
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			h.log(ctx).Warn("temp image not removed", "path", path, "err", rmErr)
		}
	}()

	if _, err := f.Write(part.Image); err != nil {
		f.Close()
		return fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp image: %w", err)
	}

	if err := h.msgr.SendPhoto(ctx, domain.PhotoMessage{ChatID: msg.ChatID, ReplyTo: msg.MessageID, Path: path}); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

func extensionFor(mime string) string {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
