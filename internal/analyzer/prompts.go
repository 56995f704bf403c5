package analyzer

import (
	"fmt"
	"strings"
)

const analysisShape = `{
  "sections": [
    {"type": "hero", "title": "...", "subtitle": "...", "ctas": [{"label": "...", "actionType": "scroll|link|form"}]},
    {"type": "features", "title": "...", "features": [{"icon": "emoji", "title": "...", "description": "..."}]}
  ],
  "colors": ["#hex primary", "#hex secondary", "#hex background"],
  "style": "professionale|casual|luxury|sportivo",
  "tone": "...",
  "targetAudience": "...",
  "layout": "centered|split|fullwidth"
}`

const blockVocabulary = "hero, features, testimonials, pricing, cta, form, faq, countdown, gallery, video, text, divider, socialProof"

var screenshotSystemPrompt = `Sei un esperto senior di UI/UX e landing page design. Analizza la struttura visiva dello screenshot per replicarla.
Per ogni sezione visibile, dall'alto verso il basso, indica il tipo (` + blockVocabulary + `), titolo, sottotitolo, i pulsanti CTA e le eventuali feature elencate.
Estrai i 3-4 colori dominanti in HEX (primario, secondario, background).
Non copiare testo protetto: usa testi descrittivi equivalenti.
Rispondi SOLO con JSON valido con questa struttura:
` + analysisShape

var urlSystemPrompt = `Sei un esperto di landing pages. Analizza la landing page di un competitor ed estrai:
1. Struttura delle sezioni (` + blockVocabulary + `)
2. Per ogni CTA: label e tipo di azione (scroll, link, form)
3. Tono e stile della comunicazione
4. Target audience
Rispondi SOLO con JSON valido con questa struttura:
` + analysisShape

var descriptionSystemPrompt = `Sei un esperto copywriter specializzato in landing pages ad alta conversione.
Scrivi in italiano, con tono professionale ma coinvolgente, benefici concreti e specifici.
Progetta una landing page completa: scegli le sezioni (` + blockVocabulary + `) nell'ordine più efficace e scrivi titoli, sottotitoli, CTA e feature.
Rispondi SOLO con JSON valido con questa struttura:
` + analysisShape

func screenshotUserPrompt(img Image, hint string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analizza questo screenshot (%s).", img.Name)
	if hint != "" {
		fmt.Fprintf(&sb, "\n\nCONTESTO FORNITO DALL'UTENTE:\n%s", hint)
	}
	return sb.String()
}

func urlUserPrompt(url string, page *PageText, hint string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analizza questo competitor: %s", url)
	if page != nil && page.Text != "" {
		fmt.Fprintf(&sb, "\n\nTITOLO PAGINA: %s\n\nTESTO ESTRATTO DALLA PAGINA:\n%s", page.Title, page.Text)
	} else {
		sb.WriteString("\n\nSe non puoi accedere al sito, usa la tua conoscenza generale dei pattern comuni nelle landing pages del settore.")
	}
	if hint != "" {
		fmt.Fprintf(&sb, "\n\nCONTESTO FORNITO DALL'UTENTE:\n%s", hint)
	}
	return sb.String()
}

func descriptionUserPrompt(b Brief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Crea una landing page completa per:\n- Business: %s\n- Target: %s", b.BusinessType, b.Target)
	if b.Goal != "" {
		fmt.Fprintf(&sb, "\n- Obiettivo: %s", b.Goal)
	}
	if b.Style != "" {
		fmt.Fprintf(&sb, "\n- Stile: %s", b.Style)
	}
	if b.Notes != "" {
		fmt.Fprintf(&sb, "\n\nNote aggiuntive:\n%s", b.Notes)
	}
	return sb.String()
}
