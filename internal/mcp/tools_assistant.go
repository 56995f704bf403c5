package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"landing/internal/aiparse"
	"landing/internal/assistant"
)

func (s *Server) registerAssistantTools() {
	s.mcp.AddTool(mcp.NewTool("assistant_apply",
		mcp.WithDescription("Apply an assistant action to a page. The text may be a JSON object or contain one "+
			"(fenced or inline); actions: update_block, update_all, add_block, add_blocks, delete_block, delete_blocks, "+
			"reorder, replace_all, message. Deleting or replacing blocks requires user approval."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("response", mcp.Description("Assistant response text"), mcp.Required()),
	), s.handleAssistantApply)

	if s.chat == nil {
		return
	}
	s.mcp.AddTool(mcp.NewTool("assistant_ask",
		mcp.WithDescription("Ask the page assistant for a change in natural language. Returns the proposed action; "+
			"set apply=true to apply it right away."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("request", mcp.Description("What to change, e.g. 'rendi il titolo più incisivo'"), mcp.Required()),
		mcp.WithString("blockId", mcp.Description("Selected block the request refers to (optional)")),
		mcp.WithBoolean("apply", mcp.Description("Apply the proposed action (default false)")),
	), s.handleAssistantAsk)
}

type assistantReply struct {
	Action  string             `json:"action"`
	Summary string             `json:"summary"`
	Message string             `json:"message,omitempty"`
	Parsed  string             `json:"parsedFrom"`
	Fields  map[string]any     `json:"proposal,omitempty"`
	Outcome *assistant.Outcome `json:"outcome,omitempty"`
}

// applyResult runs r against the page, asking for approval first when it
// would remove blocks.
func (s *Server) applyResult(ctx context.Context, pageID string, r aiparse.Result) (*mcp.CallToolResult, error) {
	reply := assistantReply{Action: r.Action, Summary: assistant.Summary(r), Message: r.Message, Parsed: r.Source.String()}
	if assistant.Destructive(r.Action) {
		if res, ok := s.requireApproval(ctx, "assistant_apply", "Assistant: "+reply.Summary,
			approvalMeta(map[string]any{"pageId": pageID, "action": r.Action})); !ok {
			return res, nil
		}
	}
	_, out, err := s.pages.ApplyAssistant(ctx, pageID, r)
	if err != nil {
		return nil, err
	}
	reply.Outcome = &out
	return jsonResult(reply)
}

func (s *Server) handleAssistantApply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	text, err := req.RequireString("response")
	if err != nil {
		return nil, err
	}
	return s.applyResult(ctx, pageID, aiparse.Parse(text))
}

func (s *Server) handleAssistantAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req)
	if err != nil {
		return nil, err
	}
	request, err := req.RequireString("request")
	if err != nil {
		return nil, err
	}
	p, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	r, err := s.chat.Ask(ctx, p.Document, req.GetString("blockId", ""), request)
	if err != nil {
		return nil, err
	}
	if req.GetBool("apply", false) && assistant.Mutating(r.Action) {
		return s.applyResult(ctx, pageID, r)
	}
	return jsonResult(assistantReply{
		Action:  r.Action,
		Summary: assistant.Summary(r),
		Message: r.Message,
		Parsed:  r.Source.String(),
		Fields:  r.Fields,
	})
}
