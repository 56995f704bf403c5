package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"landing/internal/domain"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 2 * time.Minute
)

var ErrEmptyResponse = errors.New("analyzer: empty model response")

// GeminiConfig configures the Gemini analyzer.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// HTTPClient is used for competitor page fetches; nil uses a default.
	HTTPClient *http.Client
}

// Gemini implements Analyzer and Completer on the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	fetcher *PageFetcher
	logger  *zap.Logger
}

// NewGemini creates a Gemini analyzer. An API key is required.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Gemini{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		fetcher: NewPageFetcher(cfg.HTTPClient),
		logger:  logger,
	}, nil
}

func (g *Gemini) generate(ctx context.Context, system string, parts []*genai.Part, temperature float32, jsonOut bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](temperature),
	}
	if jsonOut {
		cfg.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	g.logger.Debug("gemini call",
		zap.String("model", g.model),
		zap.Duration("took", time.Since(start)),
		zap.Int("chars", len(text)))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *Gemini) AnalyzeScreenshot(ctx context.Context, img Image, hint string) (domain.Analysis, error) {
	mime := img.MIMEType
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(img.Data, mime),
		genai.NewPartFromText(screenshotUserPrompt(img, hint)),
	}
	raw, err := g.generate(ctx, screenshotSystemPrompt, parts, 0.3, true)
	if err != nil {
		return domain.Analysis{}, err
	}
	return DecodeAnalysis(raw, g.logger), nil
}

// AnalyzeURL fetches the page text first. A failed fetch is logged and the
// model falls back to general knowledge of the URL.
func (g *Gemini) AnalyzeURL(ctx context.Context, url, hint string) (domain.Analysis, error) {
	page, err := g.fetcher.Fetch(ctx, url)
	if err != nil {
		g.logger.Warn("competitor page fetch failed", zap.String("url", url), zap.Error(err))
		page = nil
	}
	parts := []*genai.Part{genai.NewPartFromText(urlUserPrompt(url, page, hint))}
	raw, err := g.generate(ctx, urlSystemPrompt, parts, 0.3, true)
	if err != nil {
		return domain.Analysis{}, err
	}
	a := DecodeAnalysis(raw, g.logger)
	a.SourceURL = url
	return a, nil
}

func (g *Gemini) AnalyzeDescription(ctx context.Context, brief Brief) (domain.Analysis, error) {
	parts := []*genai.Part{genai.NewPartFromText(descriptionUserPrompt(brief))}
	raw, err := g.generate(ctx, descriptionSystemPrompt, parts, 0.7, true)
	if err != nil {
		return domain.Analysis{}, err
	}
	a := DecodeAnalysis(raw, g.logger)
	if a.TargetAudience == "" {
		a.TargetAudience = brief.Target
	}
	if a.Style == "" {
		a.Style = brief.Style
	}
	return a, nil
}

// Complete implements Completer for free-form assistant requests.
func (g *Gemini) Complete(ctx context.Context, system, user string) (string, error) {
	return g.generate(ctx, system, []*genai.Part{genai.NewPartFromText(user)}, 0.7, false)
}
