package domain

import (
	"context"
	"strings"
)

// Part is one fragment of a generated response: text or an inline image.
type Part struct {
	Text     string
	Image    []byte
	MIMEType string
}

// IsImage reports whether the part carries image bytes.
func (p Part) IsImage() bool { return len(p.Image) > 0 }

// AIResponse is an ordered sequence of parts. Text and image parts may
// interleave in any order and any number.
type AIResponse struct {
	Parts []Part
}

// Texts returns the text parts in order.
func (r *AIResponse) Texts() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, p := range r.Parts {
		if !p.IsImage() && strings.TrimSpace(p.Text) != "" {
			out = append(out, p.Text)
		}
	}
	return out
}

// ImageCount returns the number of image parts.
func (r *AIResponse) ImageCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, p := range r.Parts {
		if p.IsImage() {
			n++
		}
	}
	return n
}

// InlineImage is an image sent to the model alongside a prompt.
type InlineImage struct {
	Data     []byte
	MIMEType string
}

// TextGenerator answers a prompt with text, optionally grounded by web search.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, webSearch bool) (*AIResponse, error)
}

// ImageGenerator produces interleaved text and image parts from a prompt and an
// optional source image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, source *InlineImage) (*AIResponse, error)
}
