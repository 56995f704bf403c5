package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"landing/internal/domain"
)

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all landing pages, most recently edited first"),
	), s.handleListPages)

	// ── create_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a draft landing page from a template and make it the active page"),
		mcp.WithString("title",
			mcp.Description("Page title (3-100 characters)"),
			mcp.Required(),
		),
		mcp.WithString("template",
			mcp.Description("Template id (see list_templates). Defaults to blank."),
		),
	), s.handleCreatePage)

	// ── set_active_page ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_page",
		mcp.WithDescription("Set the active page for subsequent tool calls. Tools that accept pageId will default to this."),
		mcp.WithString("pageId",
			mcp.Description("ID of the page to make active"),
			mcp.Required(),
		),
	), s.handleSetActivePage)

	// ── get_page ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_page",
		mcp.WithDescription("Get a page with its full document (blocks and settings)"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleGetPage)

	// ── rename_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_page",
		mcp.WithDescription("Change the title of a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("title", mcp.Description("New title"), mcp.Required()),
	), s.handleRenamePage)

	// ── set_page_status ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_page_status",
		mcp.WithDescription("Publish or unpublish a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("status",
			mcp.Description("draft or published"),
			mcp.Enum(string(domain.PageStatusDraft), string(domain.PageStatusPublished)),
			mcp.Required(),
		),
	), s.handleSetPageStatus)

	// ── delete_page (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a page and its history. Requires user approval."),
		mcp.WithString("pageId", mcp.Description("Page ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeletePage)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.pages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	out := make([]pageSummary, len(pages))
	for i, p := range pages {
		out[i] = summarizePage(p)
	}
	return jsonResult(out)
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return nil, err
	}
	p, err := s.pages.CreateFromTemplate(ctx, title, req.GetString("template", ""))
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.setActivePage(p.ID)
	return jsonResult(p)
}

func (s *Server) handleSetActivePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := req.RequireString("pageId")
	if err != nil {
		return nil, err
	}
	if _, err := s.pages.Get(ctx, pageID); err != nil {
		return nil, err
	}
	s.setActivePage(pageID)
	return textResult(fmt.Sprintf("Active page set to %s", pageID)), nil
}

func (s *Server) handleGetPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	p, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return jsonResult(p)
}

func (s *Server) handleRenamePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	title, err := req.RequireString("title")
	if err != nil {
		return nil, err
	}
	p, err := s.pages.Rename(ctx, pageID, title)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizePage(*p))
}

func (s *Server) handleSetPageStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	status, err := req.RequireString("status")
	if err != nil {
		return nil, err
	}
	p, err := s.pages.SetStatus(ctx, pageID, domain.PageStatus(status))
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizePage(*p))
}

func (s *Server) handleDeletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := req.RequireString("pageId")
	if err != nil {
		return nil, err
	}
	p, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if res, ok := s.requireApproval(ctx, "delete_page", fmt.Sprintf("Delete page %q (%d blocks)", p.Title, len(p.Document.Blocks)),
		approvalMeta(map[string]any{"pageId": pageID})); !ok {
		return res, nil
	}
	if err := s.pages.Delete(ctx, pageID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.activePageID == pageID {
		s.activePageID = ""
	}
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Page %s deleted", pageID)), nil
}
