package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"landing/internal/catalog"
	"landing/internal/domain"
	"landing/internal/editor"
)

func blockTypeList() string {
	types := catalog.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func (s *Server) registerBlockTools() {
	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List the blocks of a page in display order, optionally filtered by type"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("type", mcp.Description("Filter by block type (optional)")),
	), s.handleListBlocks)

	// ── get_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_block",
		mcp.WithDescription("Get one block with all of its settings"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleGetBlock)

	// ── add_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Append a block with default settings. Optional settings are merged over the defaults."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("type",
			mcp.Description("Block type: "+blockTypeList()),
			mcp.Required(),
		),
		mcp.WithString("settings", mcp.Description(`Settings as a JSON object, e.g. {"title":"..."} (optional)`)),
	), s.handleAddBlock)

	// ── update_block_settings ──────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block_settings",
		mcp.WithDescription("Shallow-merge settings into a block. Keys not given are left as they are."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("settings", mcp.Description("Partial settings as a JSON object"), mcp.Required()),
	), s.handleUpdateBlockSettings)

	// ── duplicate_block ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Insert a copy of a block right after it"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleDuplicateBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block one position up or down"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("direction",
			mcp.Description("up or down"),
			mcp.Enum(string(editor.Up), string(editor.Down)),
			mcp.Required(),
		),
	), s.handleMoveBlock)

	// ── reorder_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_blocks",
		mcp.WithDescription("Set the full block order. Must list every block id exactly once."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockIds", mcp.Description("Comma-separated block IDs in the new order"), mcp.Required()),
	), s.handleReorderBlocks)

	// ── remove_block (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_block",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove a block. Requires user approval."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockId", mcp.Description("Block ID to remove"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveBlock)

	// ── remove_blocks (destructive) ────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_blocks",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove several blocks at once. Requires user approval."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockIds", mcp.Description("Comma-separated block IDs"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveBlocks)
}

// pageBlock loads the page and one of its blocks.
func (s *Server) pageBlock(ctx context.Context, req mcp.CallToolRequest) (*domain.Page, domain.Block, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, domain.Block{}, err
	}
	blockID, err := req.RequireString("blockId")
	if err != nil {
		return nil, domain.Block{}, err
	}
	p, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, domain.Block{}, err
	}
	b, ok := p.Document.Block(blockID)
	if !ok {
		return nil, domain.Block{}, fmt.Errorf("block %s not found on page %s", blockID, pageID)
	}
	return p, b, nil
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	p, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	filter := domain.BlockType(req.GetString("type", ""))
	out := make([]blockSummary, 0, len(p.Document.Blocks))
	for _, b := range p.Document.Blocks {
		if filter != "" && b.Type != filter {
			continue
		}
		out = append(out, summarizeBlock(b))
	}
	return jsonResult(out)
}

func (s *Server) handleGetBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, b, err := s.pageBlock(ctx, req)
	if err != nil {
		return nil, err
	}
	return jsonResult(b)
}

func (s *Server) handleAddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	typ, err := req.RequireString("type")
	if err != nil {
		return nil, err
	}
	t := domain.BlockType(typ)
	if !catalog.Known(t) {
		return nil, fmt.Errorf("unknown block type %q (valid: %s)", typ, blockTypeList())
	}
	settings, err := parseSettings(req.GetString("settings", ""))
	if err != nil {
		return nil, err
	}
	_, b, err := s.pages.AddBlock(ctx, pageID, t, settings)
	if err != nil {
		return nil, err
	}
	return jsonResult(b)
}

func (s *Server) handleUpdateBlockSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, b, err := s.pageBlock(ctx, req)
	if err != nil {
		return nil, err
	}
	raw, err := req.RequireString("settings")
	if err != nil {
		return nil, err
	}
	partial, err := parseSettings(raw)
	if err != nil {
		return nil, err
	}
	p, err = s.pages.UpdateBlockSettings(ctx, p.ID, b.ID, partial)
	if err != nil {
		return nil, err
	}
	updated, _ := p.Document.Block(b.ID)
	return jsonResult(updated)
}

func (s *Server) handleDuplicateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, b, err := s.pageBlock(ctx, req)
	if err != nil {
		return nil, err
	}
	_, dup, err := s.pages.DuplicateBlock(ctx, p.ID, b.ID)
	if err != nil {
		return nil, err
	}
	return jsonResult(dup)
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, b, err := s.pageBlock(ctx, req)
	if err != nil {
		return nil, err
	}
	dir := editor.Direction(req.GetString("direction", ""))
	if dir != editor.Up && dir != editor.Down {
		return nil, fmt.Errorf("direction must be up or down, got %q", dir)
	}
	p, err = s.pages.MoveBlock(ctx, p.ID, b.ID, dir)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizeBlocks(p.Document.Blocks))
}

func (s *Server) handleReorderBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	raw, err := req.RequireString("blockIds")
	if err != nil {
		return nil, err
	}
	p, err := s.pages.ReorderBlocks(ctx, pageID, splitIDs(raw))
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizeBlocks(p.Document.Blocks))
}

func (s *Server) handleRemoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, b, err := s.pageBlock(ctx, req)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Remove %s block %s from %q", catalog.Name(b.Type), b.ID, p.Title)
	if res, ok := s.requireApproval(ctx, "remove_block", desc,
		approvalMeta(map[string]any{"pageId": p.ID, "blockIds": []string{b.ID}})); !ok {
		return res, nil
	}
	if _, err := s.pages.RemoveBlock(ctx, p.ID, b.ID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Block %s removed", b.ID)), nil
}

func (s *Server) handleRemoveBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	raw, err := req.RequireString("blockIds")
	if err != nil {
		return nil, err
	}
	ids := splitIDs(raw)
	if len(ids) == 0 {
		return nil, fmt.Errorf("blockIds is empty")
	}
	p, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Remove %d blocks from %q: %s", len(ids), p.Title, strings.Join(ids, ", "))
	if res, ok := s.requireApproval(ctx, "remove_blocks", desc,
		approvalMeta(map[string]any{"pageId": pageID, "blockIds": ids})); !ok {
		return res, nil
	}
	ed := s.pages.Editor()
	p, err = s.pages.Mutate(ctx, pageID, fmt.Sprintf("remove %d blocks", len(ids)), func(doc domain.Document) (domain.Document, error) {
		for _, id := range ids {
			doc = ed.Remove(doc, id)
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("%d blocks remain on page %s", len(p.Document.Blocks), pageID)), nil
}
