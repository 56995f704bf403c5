package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"landing/internal/analyzer"
	"landing/internal/service"
)

func (s *Server) registerSynthesisTools() {
	s.mcp.AddTool(mcp.NewTool("synthesize_from_url",
		mcp.WithDescription("Analyze a competitor landing page and create a new draft page modelled on it"),
		mcp.WithString("url", mcp.Description("http(s) URL to analyze"), mcp.Required()),
		mcp.WithString("title", mcp.Description("Title of the new page (optional, derived from the analysis)")),
		mcp.WithString("hint", mcp.Description("Extra guidance for the analyzer (optional)")),
	), s.handleSynthesizeURL)

	s.mcp.AddTool(mcp.NewTool("synthesize_from_description",
		mcp.WithDescription("Create a new draft page from a short business description"),
		mcp.WithString("businessType", mcp.Description("What the business is, e.g. 'palestra'"), mcp.Required()),
		mcp.WithString("target", mcp.Description("Target audience"), mcp.Required()),
		mcp.WithString("goal", mcp.Description("Conversion goal (optional)")),
		mcp.WithString("style", mcp.Description("Visual style (optional)")),
		mcp.WithString("notes", mcp.Description("Anything else worth knowing (optional)")),
		mcp.WithString("title", mcp.Description("Title of the new page (optional, defaults to businessType)")),
	), s.handleSynthesizeDescription)

	s.mcp.AddTool(mcp.NewTool("synthesize_from_screenshots",
		mcp.WithDescription("Analyze screenshots of landing pages and merge them into a new draft page"),
		mcp.WithString("paths", mcp.Description("Comma-separated local image file paths"), mcp.Required()),
		mcp.WithString("title", mcp.Description("Title of the new page (optional, derived from the analysis)")),
		mcp.WithString("hint", mcp.Description("Extra guidance for the analyzer (optional)")),
	), s.handleSynthesizeScreenshots)
}

type synthesisResult struct {
	Page     pageSummary    `json:"page"`
	Blocks   []blockSummary `json:"blocks"`
	Style    string         `json:"style,omitempty"`
	Tone     string         `json:"tone,omitempty"`
	Sections int            `json:"analyzedSections"`
}

func (s *Server) synthesized(res *service.Synthesized) (*mcp.CallToolResult, error) {
	s.setActivePage(res.Page.ID)
	return jsonResult(synthesisResult{
		Page:     summarizePage(*res.Page),
		Blocks:   summarizeBlocks(res.Page.Document.Blocks),
		Style:    res.Analysis.Style,
		Tone:     res.Analysis.Tone,
		Sections: len(res.Analysis.Sections),
	})
}

func (s *Server) handleSynthesizeURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return nil, err
	}
	res, err := s.synth.FromURL(ctx, req.GetString("title", ""), url, req.GetString("hint", ""))
	if err != nil {
		return nil, fmt.Errorf("synthesize from url: %w", err)
	}
	return s.synthesized(res)
}

func (s *Server) handleSynthesizeDescription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	brief := analyzer.Brief{
		BusinessType: req.GetString("businessType", ""),
		Target:       req.GetString("target", ""),
		Goal:         req.GetString("goal", ""),
		Style:        req.GetString("style", ""),
		Notes:        req.GetString("notes", ""),
	}
	res, err := s.synth.FromDescription(ctx, req.GetString("title", ""), brief)
	if err != nil {
		return nil, fmt.Errorf("synthesize from description: %w", err)
	}
	return s.synthesized(res)
}

func (s *Server) handleSynthesizeScreenshots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("paths")
	if err != nil {
		return nil, err
	}
	shots, err := analyzer.LoadImages(splitIDs(raw))
	if err != nil {
		return nil, err
	}
	res, err := s.synth.FromScreenshots(ctx, req.GetString("title", ""), shots, req.GetString("hint", ""))
	if err != nil {
		return nil, fmt.Errorf("synthesize from screenshots: %w", err)
	}
	return s.synthesized(res)
}
