package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"landing/internal/aiparse"
	"landing/internal/analyzer"
	"landing/internal/domain"
)

// SystemPrompt describes the action vocabulary to the model.
const SystemPrompt = `Sei un assistente esperto nella modifica di landing pages. Modifichi direttamente i blocchi della pagina.

AZIONI DISPONIBILI (rispondi con UN solo oggetto JSON):
{"action":"update_block","blockId":"ID","changes":{"title":"..."},"explanation":"..."}
{"action":"update_all","changes":[{"blockId":"ID","settings":{"ctaText":"..."}}],"explanation":"..."}
{"action":"add_block","newBlock":{"type":"faq","settings":{"title":"..."}},"explanation":"..."}
{"action":"add_blocks","newBlocks":[{"type":"faq","settings":{}},{"type":"cta","settings":{}}],"explanation":"..."}
{"action":"delete_block","blockId":"ID","explanation":"..."}
{"action":"delete_blocks","blockIds":["id1","id2"],"explanation":"..."}
{"action":"reorder","newOrder":["id1","id2","..."],"explanation":"..."}
{"action":"replace_all","blocks":[{"type":"hero","settings":{}}],"explanation":"..."}
{"action":"message","message":"..."}

REGOLE:
- Usa sempre gli ID esatti dei blocchi forniti nel contesto.
- Per update_all, "changes" deve essere un ARRAY.
- Per reorder, "newOrder" deve contenere TUTTI gli ID esattamente una volta.
- Tipi di blocco: hero, features, testimonials, pricing, cta, form, faq, countdown, gallery, video, text, divider, socialProof.
- Rispondi sempre con JSON valido.`

// BlocksContext renders the current blocks for the model, marking the
// selected block if any.
func BlocksContext(doc domain.Document, selectedID string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "BLOCCHI ATTUALI (%d totali):\n", len(doc.Blocks))
	for i, b := range doc.Blocks {
		settings, _ := json.Marshal(b.Settings)
		fmt.Fprintf(&sb, "[%d] ID: %q | Tipo: %s\n    Settings: %s\n", i+1, b.ID, b.Type, settings)
	}
	if b, ok := doc.Block(selectedID); ok {
		fmt.Fprintf(&sb, "\nBLOCCO SELEZIONATO: %q (%s)\n", b.ID, b.Type)
	} else {
		sb.WriteString("\n(Nessun blocco selezionato)\n")
	}
	return sb.String()
}

// Chat asks a model for an edit and parses its reply.
type Chat struct {
	model  analyzer.Completer
	logger *zap.Logger
}

func NewChat(model analyzer.Completer, logger *zap.Logger) *Chat {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chat{model: model, logger: logger}
}

// Ask sends the request with the page context. The reply is parsed with the
// shared response parser, so a non-JSON reply comes back as a message result.
func (c *Chat) Ask(ctx context.Context, doc domain.Document, selectedID, request string) (aiparse.Result, error) {
	if strings.TrimSpace(request) == "" {
		request = "Analizza e suggerisci miglioramenti"
	}
	user := BlocksContext(doc, selectedID) + "\nRICHIESTA UTENTE: " + request +
		"\n\nRispondi con un JSON valido. Se devi modificare più cose, usa update_all con un ARRAY di changes."

	raw, err := c.model.Complete(ctx, SystemPrompt, user)
	if err != nil {
		return aiparse.Result{}, fmt.Errorf("assistant: %w", err)
	}
	r := aiparse.Parse(raw)
	if r.Fallback() {
		c.logger.Warn("assistant reply not structured, returning as message")
	}
	return r, nil
}
