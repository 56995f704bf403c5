// Package analyzer turns screenshots, competitor URLs and business briefs into
// domain.Analysis values by calling a vision/text model.
package analyzer

import (
	"context"

	"go.uber.org/zap"

	"landing/internal/aiparse"
	"landing/internal/domain"
)

// Image is one screenshot payload.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Brief is a short business description used to synthesize a page from scratch.
type Brief struct {
	BusinessType string `json:"businessType"`
	Target       string `json:"target"`
	Goal         string `json:"goal,omitempty"`
	Style        string `json:"style,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Analyzer is the external content analyzer. Implementations own their
// timeouts; callers only see an Analysis or an error.
type Analyzer interface {
	AnalyzeScreenshot(ctx context.Context, img Image, hint string) (domain.Analysis, error)
	AnalyzeURL(ctx context.Context, url, hint string) (domain.Analysis, error)
	AnalyzeDescription(ctx context.Context, brief Brief) (domain.Analysis, error)
}

// Completer sends one system + user prompt pair and returns the raw reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// DecodeAnalysis extracts an Analysis from raw model output. Output that does
// not parse into an analysis object degrades to an empty Analysis, which still
// converts into a valid document.
func DecodeAnalysis(raw string, logger *zap.Logger) domain.Analysis {
	r := aiparse.Parse(raw)
	if r.Fallback() {
		logger.Warn("analyzer output not structured, using empty analysis", zap.Int("bytes", len(raw)))
		return domain.Analysis{}
	}
	var a domain.Analysis
	if err := r.Decode(&a); err != nil {
		logger.Warn("analyzer output has unexpected shape, using empty analysis", zap.Error(err))
		return domain.Analysis{}
	}
	return a
}
