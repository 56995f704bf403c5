package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"landing/internal/analyzer"
	"landing/internal/domain"
	"landing/internal/synth"
)

// ─────────────────────────────────────────────────────────────
// Synthesis Service: analyzer output into persisted pages
// ─────────────────────────────────────────────────────────────

const EventSynthesisDone = "synth:done"

// SynthesisService runs the synthesis pipeline and stores the result as a page.
type SynthesisService struct {
	pipeline *synth.Pipeline
	pages    *PageService
	emitter  EventEmitter
	logger   *zap.Logger
}

func NewSynthesisService(p *synth.Pipeline, pages *PageService, emitter EventEmitter, logger *zap.Logger) *SynthesisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = &MockEmitter{}
	}
	return &SynthesisService{pipeline: p, pages: pages, emitter: emitter, logger: logger}
}

// Synthesized is a new page plus the analysis it came from.
type Synthesized struct {
	Page     *domain.Page    `json:"page"`
	Analysis domain.Analysis `json:"analysis"`
}

func (s *SynthesisService) FromScreenshots(ctx context.Context, title string, shots []analyzer.Image, hint string) (*Synthesized, error) {
	if err := checkTitle(title); err != nil {
		return nil, err
	}
	res, err := s.pipeline.FromScreenshots(ctx, shots, hint)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, title, "synth:screenshots", res)
}

func (s *SynthesisService) FromURL(ctx context.Context, title, url, hint string) (*Synthesized, error) {
	if err := checkTitle(title); err != nil {
		return nil, err
	}
	res, err := s.pipeline.FromURL(ctx, url, hint)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, title, "synth:url", res)
}

func (s *SynthesisService) FromDescription(ctx context.Context, title string, brief analyzer.Brief) (*Synthesized, error) {
	if title == "" {
		title = strings.TrimSpace(brief.BusinessType)
	}
	if err := checkTitle(title); err != nil {
		return nil, err
	}
	res, err := s.pipeline.FromDescription(ctx, brief)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, title, "synth:description", res)
}

// Resynthesize analyzes url again and stores the result as a new revision of
// an existing page.
func (s *SynthesisService) Resynthesize(ctx context.Context, pageID, url, hint string) (*domain.Page, error) {
	res, err := s.pipeline.FromURL(ctx, url, hint)
	if err != nil {
		return nil, err
	}
	return s.pages.Mutate(ctx, pageID, "watch: "+url, func(domain.Document) (domain.Document, error) {
		return res.Document, nil
	})
}

func (s *SynthesisService) store(ctx context.Context, title, template string, res *synth.Result) (*Synthesized, error) {
	if title == "" {
		title = derivedTitle(res.Document.Meta.Title)
	}
	p, err := s.pages.CreateFromDocument(ctx, title, template, res.Document, "synthesized from "+res.Document.Meta.AnalyzedFrom)
	if err != nil {
		return nil, fmt.Errorf("store synthesized page: %w", err)
	}
	s.logger.Info("page synthesized",
		zap.String("page", p.ID),
		zap.String("from", res.Document.Meta.AnalyzedFrom),
		zap.Int("blocks", len(res.Document.Blocks)))
	s.emitter.Emit(ctx, EventSynthesisDone, p.ID)
	return &Synthesized{Page: p, Analysis: res.Analysis}, nil
}

// checkTitle rejects a caller-supplied title before any analyzer call. An
// empty title is derived from the analysis later.
func checkTitle(title string) error {
	if title == "" {
		return nil
	}
	if _, err := validTitle(title); err != nil {
		return &synth.ValidationError{Field: "title", Message: err.Error()}
	}
	return nil
}

// derivedTitle fits an analyzer-provided title into the page title bounds.
func derivedTitle(title string) string {
	title = strings.TrimSpace(title)
	if r := []rune(title); len(r) > maxTitleRunes {
		title = strings.TrimSpace(string(r[:maxTitleRunes]))
	}
	if utf8.RuneCountInString(title) < minTitleRunes {
		return synth.DefaultTitle
	}
	return title
}
