package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"landing/internal/catalog"
)

func (s *Server) registerTemplateTools() {
	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the page templates with the block types each one contains"),
	), s.handleListTemplates)

	s.mcp.AddTool(mcp.NewTool("list_block_types",
		mcp.WithDescription("List every block type with its display name and default settings"),
	), s.handleListBlockTypes)

	s.mcp.AddTool(mcp.NewTool("apply_template",
		mcp.WithDescription("🛑 DESTRUCTIVE: Replace all blocks of a page with a template. Requires user approval."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("template", mcp.Description("Template id"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleApplyTemplate)
}

func (s *Server) handleListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.catalog.List())
}

func (s *Server) handleListBlockTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var specs []catalog.BlockSpec
	for _, t := range catalog.Types() {
		if spec, ok := catalog.Lookup(t); ok {
			specs = append(specs, spec)
		}
	}
	return jsonResult(specs)
}

func (s *Server) handleApplyTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	templateID, err := req.RequireString("template")
	if err != nil {
		return nil, err
	}
	tpl, err := s.catalog.Get(templateID)
	if err != nil {
		return nil, err
	}
	p, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Replace the %d blocks of %q with template %s (%d blocks)",
		len(p.Document.Blocks), p.Title, tpl.Name, len(tpl.Blocks))
	if res, ok := s.requireApproval(ctx, "apply_template", desc,
		approvalMeta(map[string]any{"pageId": pageID, "template": templateID})); !ok {
		return res, nil
	}
	p, err = s.pages.ApplyTemplate(ctx, pageID, templateID)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizeBlocks(p.Document.Blocks))
}

// ── History ────────────────────────────────────────────────

type revisionSummary struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId,omitempty"`
	Label     string    `json:"label"`
	Blocks    int       `json:"blocks"`
	Current   bool      `json:"current,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("page_history",
		mcp.WithDescription("List the revisions of a page, oldest first, marking the current one"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handlePageHistory)

	s.mcp.AddTool(mcp.NewTool("restore_revision",
		mcp.WithDescription("🛑 DESTRUCTIVE: Put a page back to an earlier revision. Requires user approval."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("revisionId", mcp.Description("Revision ID from page_history"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRestoreRevision)
}

func (s *Server) handlePageHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	h, err := s.pages.History(ctx, pageID)
	if err != nil {
		return nil, err
	}
	out := make([]revisionSummary, len(h.Revisions))
	for i, r := range h.Revisions {
		out[i] = revisionSummary{
			ID:        r.ID,
			Label:     r.Label,
			Blocks:    len(r.Snapshot.Blocks),
			Current:   r.ID == h.CurrentID,
			CreatedAt: r.CreatedAt,
		}
		if r.ParentID != nil {
			out[i].ParentID = *r.ParentID
		}
	}
	return jsonResult(out)
}

func (s *Server) handleRestoreRevision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	revisionID, err := req.RequireString("revisionId")
	if err != nil {
		return nil, err
	}
	if res, ok := s.requireApproval(ctx, "restore_revision",
		fmt.Sprintf("Restore page %s to revision %s", pageID, revisionID),
		approvalMeta(map[string]any{"pageId": pageID, "revisionId": revisionID})); !ok {
		return res, nil
	}
	p, err := s.pages.Restore(ctx, pageID, revisionID)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizeBlocks(p.Document.Blocks))
}
