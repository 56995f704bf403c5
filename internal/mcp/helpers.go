package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"landing/internal/catalog"
	"landing/internal/domain"
)

func boolPtr(v bool) *bool { return &v }

// approvalMeta encodes the metadata attached to an approval request.
func approvalMeta(fields map[string]any) string {
	b, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// parseSettings decodes an optional JSON object argument.
func parseSettings(raw string) (domain.Settings, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var s domain.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("settings must be a JSON object: %w", err)
	}
	return s, nil
}

// splitIDs parses a comma-separated id list.
func splitIDs(raw string) []string {
	var ids []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

type blockSummary struct {
	ID    string           `json:"id"`
	Type  domain.BlockType `json:"type"`
	Name  string           `json:"name"`
	Glyph string           `json:"glyph"`
	Title string           `json:"title,omitempty"`
}

func summarizeBlock(b domain.Block) blockSummary {
	title, _ := b.Settings["title"].(string)
	return blockSummary{ID: b.ID, Type: b.Type, Name: catalog.Name(b.Type), Glyph: catalog.Glyph(b.Type), Title: title}
}

func summarizeBlocks(blocks []domain.Block) []blockSummary {
	out := make([]blockSummary, len(blocks))
	for i, b := range blocks {
		out[i] = summarizeBlock(b)
	}
	return out
}

type pageSummary struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Slug     string            `json:"slug"`
	Status   domain.PageStatus `json:"status"`
	Template string            `json:"template"`
	Blocks   int               `json:"blocks"`
}

func summarizePage(p domain.Page) pageSummary {
	return pageSummary{ID: p.ID, Title: p.Title, Slug: p.Slug, Status: p.Status, Template: p.Template, Blocks: len(p.Document.Blocks)}
}
