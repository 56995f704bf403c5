package synth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"landing/internal/analyzer"
	"landing/internal/domain"
)

// DefaultMaxScreenshots caps a screenshot batch.
const DefaultMaxScreenshots = 5

var ErrNoInput = errors.New("no input to synthesize from")

// ValidationError reports an input problem detected before any analyzer call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Result is the outcome of one synthesis run.
type Result struct {
	Document domain.Document `json:"document"`
	Analysis domain.Analysis `json:"analysis"`
}

// Pipeline drives analyzer calls and turns their output into a Document.
type Pipeline struct {
	analyzer       analyzer.Analyzer
	maxScreenshots int
	logger         *zap.Logger
}

// NewPipeline creates a Pipeline. maxScreenshots <= 0 uses DefaultMaxScreenshots.
func NewPipeline(a analyzer.Analyzer, maxScreenshots int, logger *zap.Logger) *Pipeline {
	if maxScreenshots <= 0 {
		maxScreenshots = DefaultMaxScreenshots
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{analyzer: a, maxScreenshots: maxScreenshots, logger: logger}
}

// FromScreenshots analyzes each screenshot sequentially in input order, merges
// the analyses and converts the result. The first analyzer failure aborts the
// batch and nothing is merged. Once started the batch is not interrupted by
// cancellation of ctx; analyzer timeouts still apply.
func (p *Pipeline) FromScreenshots(ctx context.Context, shots []analyzer.Image, hint string) (*Result, error) {
	if len(shots) == 0 {
		return nil, ErrNoInput
	}
	if len(shots) > p.maxScreenshots {
		return nil, invalid("screenshots", fmt.Sprintf("at most %d screenshots, got %d", p.maxScreenshots, len(shots)))
	}
	for i, s := range shots {
		if len(s.Data) == 0 {
			return nil, invalid(fmt.Sprintf("screenshots[%d]", i), "empty image")
		}
	}

	ctx = context.WithoutCancel(ctx)
	analyses := make([]domain.Analysis, 0, len(shots))
	for i, s := range shots {
		p.logger.Info("analyzing screenshot", zap.Int("index", i+1), zap.Int("of", len(shots)), zap.String("name", s.Name))
		a, err := p.analyzer.AnalyzeScreenshot(ctx, s, hint)
		if err != nil {
			return nil, fmt.Errorf("analyze screenshot %d/%d: %w", i+1, len(shots), err)
		}
		analyses = append(analyses, a)
	}

	merged := Merge(analyses)
	return &Result{
		Document: Convert(merged, ConvertOptions{Palette: merged.Colors, Screenshots: len(shots)}),
		Analysis: merged,
	}, nil
}

// FromURL analyzes a competitor page.
func (p *Pipeline) FromURL(ctx context.Context, rawURL, hint string) (*Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrNoInput
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalid("url", "must be an absolute http(s) URL")
	}

	p.logger.Info("analyzing url", zap.String("url", rawURL))
	a, err := p.analyzer.AnalyzeURL(context.WithoutCancel(ctx), rawURL, hint)
	if err != nil {
		return nil, fmt.Errorf("analyze url: %w", err)
	}
	if a.SourceURL == "" {
		a.SourceURL = rawURL
	}
	return &Result{
		Document: Convert(a, ConvertOptions{Palette: a.Colors}),
		Analysis: a,
	}, nil
}

// FromDescription synthesizes a page from a business brief. Business type
// and target are required.
func (p *Pipeline) FromDescription(ctx context.Context, brief analyzer.Brief) (*Result, error) {
	brief.BusinessType = strings.TrimSpace(brief.BusinessType)
	brief.Target = strings.TrimSpace(brief.Target)
	if brief.BusinessType == "" {
		return nil, invalid("businessType", "required")
	}
	if brief.Target == "" {
		return nil, invalid("target", "required")
	}

	p.logger.Info("analyzing description", zap.String("businessType", brief.BusinessType))
	a, err := p.analyzer.AnalyzeDescription(context.WithoutCancel(ctx), brief)
	if err != nil {
		return nil, fmt.Errorf("analyze description: %w", err)
	}
	return &Result{
		Document: Convert(a, ConvertOptions{Palette: a.Colors}),
		Analysis: a,
	}, nil
}
