// Package provider implements the generative capabilities on top of the
// Gemini API and fetches attachments for image edits.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/kawainime/TelegramGemini/internal/domain"
	"github.com/kawainime/TelegramGemini/internal/metrics"
)

// contentGenerator is the subset of *genai.Models used for generation.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiConfig struct {
	APIKey     string
	TextModel  string
	ImageModel string

	RequestsPerMinute float64 // 0 = unlimited
	Burst             int

	Logger *slog.Logger
}

// Gemini serves both domain.TextGenerator and domain.ImageGenerator.
type Gemini struct {
	client     *genai.Client
	models     contentGenerator
	textModel  string
	imageModel string
	limiter    *requestLimiter
	logger     *slog.Logger
}

var (
	_ domain.TextGenerator  = (*Gemini)(nil)
	_ domain.ImageGenerator = (*Gemini)(nil)
)

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	g := newGemini(client.Models, cfg)
	g.client = client
	return g, nil
}

func newGemini(models contentGenerator, cfg GeminiConfig) *Gemini {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{
		models:     models,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		limiter:    newRequestLimiter(cfg.RequestsPerMinute, cfg.Burst),
		logger:     logger,
	}
}

// GenerateText asks the text model a single-turn question, optionally
// grounded with Google Search.
func (g *Gemini) GenerateText(ctx context.Context, prompt string, webSearch bool) (*domain.AIResponse, error) {
	var cfg *genai.GenerateContentConfig
	if webSearch {
		cfg = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	return g.generate(ctx, "text", g.textModel, contents, cfg)
}

// GenerateImage asks the image model for text and image output. When source
// is set the image is sent inline after the prompt so the model edits it.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string, source *domain.InlineImage) (*domain.AIResponse, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if source != nil {
		mime := source.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, genai.NewPartFromBytes(source.Data, mime))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	return g.generate(ctx, "image", g.imageModel, contents, cfg)
}

func (g *Gemini) generate(ctx context.Context, capability, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*domain.AIResponse, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("gemini %s: waiting for rate limit: %w", capability, err)
	}
	metrics.AIRequest(capability).Inc()
	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, model, contents, cfg)
	metrics.AILatency(capability).Since(start)
	if err != nil {
		metrics.AIError(capability).Inc()
		return nil, fmt.Errorf("gemini %s (%s): %w", capability, model, err)
	}

	out := toResponse(resp)
	g.logger.Debug("gemini response",
		"capability", capability,
		"model", model,
		"parts", len(out.Parts),
		"images", out.ImageCount(),
		"duration", time.Since(start),
	)
	return out, nil
}

// toResponse flattens the first candidate into domain parts, keeping order
// and dropping thought summaries.
func toResponse(resp *genai.GenerateContentResponse) *domain.AIResponse {
	out := &domain.AIResponse{}
	if resp == nil || len(resp.Candidates) == 0 {
		return out
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return out
	}
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		switch {
		case p.InlineData != nil && len(p.InlineData.Data) > 0:
			out.Parts = append(out.Parts, domain.Part{
				Image:    p.InlineData.Data,
				MIMEType: p.InlineData.MIMEType,
			})
		case p.Text != "":
			out.Parts = append(out.Parts, domain.Part{Text: p.Text})
		}
	}
	return out
}

// Healthy checks that both configured models are reachable with the key.
func (g *Gemini) Healthy(ctx context.Context) error {
	if g.client == nil {
		return errors.New("gemini: client not initialised")
	}
	var errs []error
	for _, model := range []string{g.textModel, g.imageModel} {
		if _, err := g.client.Models.Get(ctx, model, nil); err != nil {
			errs = append(errs, fmt.Errorf("model %s: %w", model, err))
		}
	}
	return errors.Join(errs...)
}
