package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	pagesURI     = "landing://pages"
	templatesURI = "landing://templates"
	pageURIHead  = "landing://page/"
	pageURITail  = "/blocks"
)

func (s *Server) registerResources() {
	// ── landing://pages ────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		pagesURI,
		"All Pages",
		mcp.WithResourceDescription("Every landing page with its status and block count"),
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	// ── landing://templates ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		templatesURI,
		"Page Templates",
		mcp.WithResourceDescription("Templates available to create_page and apply_template"),
		mcp.WithMIMEType("application/json"),
	), s.handleTemplatesResource)

	// ── landing://page/{pageId}/blocks ─────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageURIHead+"{pageId}"+pageURITail,
			"Blocks of a Page",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handlePageBlocksResource,
	)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	pages, err := s.pages.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]pageSummary, len(pages))
	for i, p := range pages {
		out[i] = summarizePage(p)
	}
	return jsonContents(pagesURI, out)
}

func (s *Server) handleTemplatesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(templatesURI, s.catalog.List())
}

func (s *Server) handlePageBlocksResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := pageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}
	p, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, p.Document.Blocks)
}

// pageIDFromURI extracts the id from "landing://page/{id}/blocks".
func pageIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, pageURIHead)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, pageURITail)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
