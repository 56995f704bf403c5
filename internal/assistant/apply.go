// Package assistant applies interactive-assistant results to a Document.
package assistant

import (
	"encoding/json"
	"fmt"

	"landing/internal/aiparse"
	"landing/internal/catalog"
	"landing/internal/domain"
	"landing/internal/editor"
)

const (
	ActionUpdateBlock  = "update_block"
	ActionUpdateAll    = "update_all"
	ActionAddBlock     = "add_block"
	ActionAddBlocks    = "add_blocks"
	ActionDeleteBlock  = "delete_block"
	ActionDeleteBlocks = "delete_blocks"
	ActionReorder      = "reorder"
	ActionReplaceAll   = "replace_all"
	ActionMessage      = aiparse.ActionMessage
)

// Mutating reports whether action changes the document when applied.
func Mutating(action string) bool {
	switch action {
	case ActionUpdateBlock, ActionUpdateAll, ActionAddBlock, ActionAddBlocks,
		ActionDeleteBlock, ActionDeleteBlocks, ActionReorder, ActionReplaceAll:
		return true
	}
	return false
}

// Destructive reports whether action removes or replaces existing blocks.
func Destructive(action string) bool {
	switch action {
	case ActionDeleteBlock, ActionDeleteBlocks, ActionReplaceAll:
		return true
	}
	return false
}

// Outcome describes what Apply did.
type Outcome struct {
	Action      string   `json:"action"`
	Applied     bool     `json:"applied"`
	Changed     []string `json:"changed,omitempty"` // ids of touched blocks
	Message     string   `json:"message,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Reason      string   `json:"reason,omitempty"` // why nothing was applied
}

type blockChange struct {
	BlockID  string          `json:"blockId"`
	Settings domain.Settings `json:"settings"`
}

type payload struct {
	BlockID     string                  `json:"blockId"`
	BlockIDs    []string                `json:"blockIds"`
	Changes     json.RawMessage         `json:"changes"`
	NewBlock    *catalog.TemplateBlock  `json:"newBlock"`
	NewBlocks   []catalog.TemplateBlock `json:"newBlocks"`
	NewOrder    []string                `json:"newOrder"`
	Blocks      []catalog.TemplateBlock `json:"blocks"`
	Message     string                  `json:"message"`
	Explanation string                  `json:"explanation"`
}

// Apply executes r against doc through ed. Invalid or unknown payloads never
// fail: doc is returned unchanged and the Outcome says why.
func Apply(ed *editor.Editor, doc domain.Document, r aiparse.Result) (domain.Document, Outcome) {
	out := Outcome{Action: r.Action}
	var p payload
	if err := r.Decode(&p); err != nil {
		out.Reason = err.Error()
		return doc, out
	}
	out.Explanation = p.Explanation

	switch r.Action {
	case ActionMessage:
		out.Message = p.Message
		if out.Message == "" {
			out.Message = p.Explanation
		}
		return doc, out

	case ActionUpdateBlock:
		var changes domain.Settings
		if err := json.Unmarshal(p.Changes, &changes); err != nil || p.BlockID == "" || changes == nil {
			return reject(doc, out, "update_block needs blockId and a changes object")
		}
		if doc.Index(p.BlockID) < 0 {
			return reject(doc, out, fmt.Sprintf("block %q not found", p.BlockID))
		}
		doc = ed.UpdateSettings(doc, p.BlockID, changes)
		out.Changed = []string{p.BlockID}

	case ActionUpdateAll:
		var changes []blockChange
		if err := json.Unmarshal(p.Changes, &changes); err != nil {
			return reject(doc, out, "update_all needs changes to be an array")
		}
		for _, c := range changes {
			if doc.Index(c.BlockID) < 0 {
				continue
			}
			doc = ed.UpdateSettings(doc, c.BlockID, c.Settings)
			out.Changed = append(out.Changed, c.BlockID)
		}

	case ActionAddBlock:
		if p.NewBlock == nil || p.NewBlock.Type == "" {
			return reject(doc, out, "add_block needs newBlock with a type")
		}
		var b domain.Block
		doc, b = ed.AddWithSettings(doc, p.NewBlock.Type, p.NewBlock.Settings)
		out.Changed = []string{b.ID}

	case ActionAddBlocks:
		for _, nb := range p.NewBlocks {
			if nb.Type == "" {
				continue
			}
			var b domain.Block
			doc, b = ed.AddWithSettings(doc, nb.Type, nb.Settings)
			out.Changed = append(out.Changed, b.ID)
		}

	case ActionDeleteBlock:
		if doc.Index(p.BlockID) < 0 {
			return reject(doc, out, fmt.Sprintf("block %q not found", p.BlockID))
		}
		doc = ed.Remove(doc, p.BlockID)
		out.Changed = []string{p.BlockID}

	case ActionDeleteBlocks:
		for _, id := range p.BlockIDs {
			if doc.Index(id) < 0 {
				continue
			}
			doc = ed.Remove(doc, id)
			out.Changed = append(out.Changed, id)
		}

	case ActionReorder:
		next, err := ed.ReorderIDs(doc, p.NewOrder)
		if err != nil {
			return reject(doc, out, err.Error())
		}
		doc = next
		out.Changed = next.IDs()

	case ActionReplaceAll:
		if len(p.Blocks) == 0 {
			return reject(doc, out, "replace_all needs a non-empty blocks array")
		}
		doc = ed.ReplaceBlocks(doc, p.Blocks)
		out.Changed = doc.IDs()

	default:
		return reject(doc, out, fmt.Sprintf("unknown action %q", r.Action))
	}

	out.Applied = len(out.Changed) > 0
	if !out.Applied {
		out.Reason = "nothing matched the current blocks"
	}
	return doc, out
}

func reject(doc domain.Document, out Outcome, reason string) (domain.Document, Outcome) {
	out.Applied = false
	out.Reason = reason
	return doc, out
}

// Summary renders a short human-readable preview of what r would do.
func Summary(r aiparse.Result) string {
	var p payload
	_ = r.Decode(&p)
	switch r.Action {
	case ActionUpdateBlock:
		var changes map[string]any
		_ = json.Unmarshal(p.Changes, &changes)
		keys := make([]string, 0, len(changes))
		for k := range changes {
			keys = append(keys, k)
		}
		return fmt.Sprintf("update block %s: %v", p.BlockID, keys)
	case ActionUpdateAll:
		var changes []blockChange
		_ = json.Unmarshal(p.Changes, &changes)
		return fmt.Sprintf("update %d blocks", len(changes))
	case ActionAddBlock:
		if p.NewBlock != nil {
			return fmt.Sprintf("add %s block", p.NewBlock.Type)
		}
	case ActionAddBlocks:
		return fmt.Sprintf("add %d blocks", len(p.NewBlocks))
	case ActionDeleteBlock:
		return fmt.Sprintf("delete block %s", p.BlockID)
	case ActionDeleteBlocks:
		return fmt.Sprintf("delete %d blocks", len(p.BlockIDs))
	case ActionReorder:
		return fmt.Sprintf("reorder %d blocks", len(p.NewOrder))
	case ActionReplaceAll:
		return fmt.Sprintf("replace the whole page with %d blocks", len(p.Blocks))
	case ActionMessage:
		return "message only"
	}
	return "no changes"
}
