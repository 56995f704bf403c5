package synth

import (
	"fmt"

	"landing/internal/catalog"
	"landing/internal/domain"
	"landing/internal/ident"
)

const (
	DefaultBackground = "#0f172a"
	DefaultTitle      = "Landing Page"
	formAnchor        = "#form"
	genericAnchor     = "#"
)

// ConvertOptions carries the optional inputs of Convert.
type ConvertOptions struct {
	// Palette overrides the block background; only the first entry is used.
	Palette []string
	// Screenshots is the number of screenshots the analysis came from, used
	// for provenance when the analysis has no source URL.
	Screenshots int
}

// Convert maps an analysis into a Document, one block per section in order.
// Only the first CTA of a section is kept. A lead-capture form is appended
// when no section produced one.
func Convert(a domain.Analysis, opts ConvertOptions) domain.Document {
	bg := DefaultBackground
	if len(opts.Palette) > 0 && opts.Palette[0] != "" {
		bg = opts.Palette[0]
	}

	blocks := make([]domain.Block, 0, len(a.Sections)+1)
	hasForm := false
	for _, sec := range a.Sections {
		b := sectionBlock(sec, bg)
		if b.Type == domain.BlockTypeForm {
			hasForm = true
		}
		blocks = append(blocks, b)
	}
	if !hasForm {
		blocks = append(blocks, domain.Block{
			ID:       ident.NextID(string(domain.BlockTypeForm)),
			Type:     domain.BlockTypeForm,
			Settings: catalog.LeadCaptureForm(),
		})
	}
	return domain.Document{Blocks: blocks, Meta: deriveMeta(a, opts.Screenshots)}
}

func sectionBlock(sec domain.Section, bg string) domain.Block {
	t := sec.Type
	if t == "" {
		t = domain.BlockTypeText
	}
	settings := domain.Settings{
		"title":           sec.Title,
		"subtitle":        sec.Subtitle,
		"backgroundColor": bg,
	}
	if len(sec.CTAs) > 0 {
		cta := sec.CTAs[0]
		settings["ctaText"] = cta.Label
		if cta.ActionType == "form" {
			settings["ctaLink"] = formAnchor
		} else {
			settings["ctaLink"] = genericAnchor
		}
	}
	if sec.Features != nil {
		settings["items"] = domain.CloneValue(sec.Features)
	}
	return domain.Block{ID: ident.NextID(string(t)), Type: t, Settings: settings}
}

func deriveMeta(a domain.Analysis, screenshots int) domain.Meta {
	m := domain.Meta{Title: a.TargetAudience}
	if m.Title == "" {
		m.Title = DefaultTitle
	}
	style, tone := a.Style, a.Tone
	if style == "" {
		style = FallbackStyle
	}
	if tone == "" {
		tone = FallbackTone
	}
	m.Description = fmt.Sprintf("Stile: %s, tono: %s", style, tone)
	switch {
	case a.SourceURL != "":
		m.AnalyzedFrom = a.SourceURL
	case screenshots == 1:
		m.AnalyzedFrom = "1 screenshot"
	case screenshots > 1:
		m.AnalyzedFrom = fmt.Sprintf("%d screenshots", screenshots)
	default:
		m.AnalyzedFrom = "description"
	}
	return m
}
