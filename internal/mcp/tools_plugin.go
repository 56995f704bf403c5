package mcpserver

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"landing/internal/editor"
)

// registerPluginTools registers the settings tools declared by block plugins.
// Every tool takes pageId and blockId plus the plugin's own string params, and
// only runs against blocks of the plugin's type.
func (s *Server) registerPluginTools() {
	registry := s.pages.Editor().Plugins()
	if registry == nil {
		return
	}

	registry.ForEach(func(p editor.BlockPlugin) {
		provider, ok := p.(editor.ToolProvider)
		if !ok {
			return
		}
		blockType := p.BlockType()
		for _, tool := range provider.Tools() {
			def := tool // capture for closure

			desc := fmt.Sprintf("%s (%s blocks only)", def.Description, blockType)
			opts := []mcp.ToolOption{
				mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
				mcp.WithString("blockId", mcp.Description(fmt.Sprintf("ID of a %s block", blockType)), mcp.Required()),
			}
			if def.Destructive {
				desc = "🛑 DESTRUCTIVE: " + desc + " Requires user approval."
				opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}))
			}
			names := make([]string, 0, len(def.Params))
			for name := range def.Params {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				opts = append(opts, mcp.WithString(name, mcp.Description(def.Params[name]), mcp.Required()))
			}
			opts = append([]mcp.ToolOption{mcp.WithDescription(desc)}, opts...)

			s.mcp.AddTool(mcp.NewTool(def.Name, opts...), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				page, block, err := s.pageBlock(ctx, req)
				if err != nil {
					return nil, err
				}
				if block.Type != blockType {
					return nil, fmt.Errorf("%s works on %s blocks, %s is a %s block", def.Name, blockType, block.ID, block.Type)
				}
				args := make(map[string]string, len(names))
				for _, name := range names {
					args[name] = req.GetString(name, "")
				}
				if def.Destructive {
					if res, ok := s.requireApproval(ctx, def.Name, fmt.Sprintf("%s on block %s", def.Name, block.ID),
						approvalMeta(map[string]any{"pageId": page.ID, "blockId": block.ID})); !ok {
						return res, nil
					}
				}
				page, err = s.pages.RunBlockTool(ctx, page.ID, block.ID, def, args)
				if err != nil {
					return nil, err
				}
				updated, _ := page.Document.Block(block.ID)
				return jsonResult(updated)
			})
		}
	})
}
