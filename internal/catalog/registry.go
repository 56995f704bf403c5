// Package catalog holds the block schema registry and the landing page
// template fixtures.
package catalog

import "landing/internal/domain"

const fallbackGlyph = "📦"

// BlockSpec describes one block type of the registry.
type BlockSpec struct {
	Type     domain.BlockType `json:"type"`
	Name     string           `json:"name"`
	Glyph    string           `json:"glyph"`
	Settings domain.Settings  `json:"settings"`
}

// order is the display order of the catalog.
var order = []domain.BlockType{
	domain.BlockTypeHero,
	domain.BlockTypeFeatures,
	domain.BlockTypeTestimonials,
	domain.BlockTypePricing,
	domain.BlockTypeCTA,
	domain.BlockTypeForm,
	domain.BlockTypeFAQ,
	domain.BlockTypeCountdown,
	domain.BlockTypeGallery,
	domain.BlockTypeVideo,
	domain.BlockTypeText,
	domain.BlockTypeDivider,
	domain.BlockTypeSocialProof,
}

var specs = map[domain.BlockType]BlockSpec{
	domain.BlockTypeHero: {
		Name:  "Hero Section",
		Glyph: "🚀",
		Settings: domain.Settings{
			"variant":            "centered",
			"title":              "Trasforma il tuo corpo in 90 giorni",
			"subtitle":           "Il metodo scientifico per risultati duraturi",
			"ctaText":            "Inizia Ora",
			"ctaLink":            "#form",
			"secondaryCtaText":   "Scopri di più",
			"secondaryCtaLink":   "#features",
			"backgroundType":     "gradient",
			"backgroundGradient": "from-slate-900 via-sky-900 to-slate-900",
			"backgroundImage":    "",
			"overlay":            true,
			"overlayOpacity":     50,
			"textAlign":          "center",
			"minHeight":          "90vh",
			"showBadge":          true,
			"badgeText":          "🔥 Offerta Limitata",
		},
	},
	domain.BlockTypeFeatures: {
		Name:  "Features Grid",
		Glyph: "✨",
		Settings: domain.Settings{
			"variant":  "grid",
			"title":    "Perché scegliere noi",
			"subtitle": "Tutto ciò che serve per il tuo successo",
			"columns":  3,
			"items": []any{
				map[string]any{"icon": "🎯", "title": "Piano Personalizzato", "description": "Programma creato su misura per i tuoi obiettivi"},
				map[string]any{"icon": "📱", "title": "App Dedicata", "description": "Monitora i progressi ovunque tu sia"},
				map[string]any{"icon": "💬", "title": "Supporto 24/7", "description": "Il tuo coach sempre disponibile via chat"},
				map[string]any{"icon": "📊", "title": "Analisi Avanzate", "description": "Dati e statistiche per ottimizzare i risultati"},
				map[string]any{"icon": "🍎", "title": "Piano Alimentare", "description": "Nutrizione bilanciata e gustosa"},
				map[string]any{"icon": "🏆", "title": "Risultati Garantiti", "description": "O ti rimborsiamo al 100%"},
			},
			"backgroundColor": "bg-slate-900",
			"cardStyle":       "glass",
		},
	},
	domain.BlockTypeTestimonials: {
		Name:  "Testimonials",
		Glyph: "⭐",
		Settings: domain.Settings{
			"variant":  "carousel",
			"title":    "Cosa dicono i nostri clienti",
			"subtitle": "Storie di trasformazione reali",
			"items": []any{
				map[string]any{"name": "Marco R.", "role": "Imprenditore", "rating": 5, "text": "Ho perso 15kg in 3 mesi seguendo il programma."},
				map[string]any{"name": "Laura B.", "role": "Manager", "rating": 5, "text": "Finalmente un approccio che funziona!"},
				map[string]any{"name": "Andrea M.", "role": "Avvocato", "rating": 5, "text": "Professionalità e competenza. I risultati parlano da soli."},
			},
			"showRating":      true,
			"autoplay":        true,
			"backgroundColor": "bg-slate-800",
		},
	},
	domain.BlockTypePricing: {
		Name:  "Pricing Table",
		Glyph: "💰",
		Settings: domain.Settings{
			"variant":  "cards",
			"title":    "Scegli il tuo piano",
			"subtitle": "Investi nel tuo benessere",
			"items": []any{
				map[string]any{"name": "Starter", "price": "99", "currency": "€", "period": "/mese", "features": []any{"Piano allenamento base", "Check settimanale", "Accesso app"}, "highlighted": false, "ctaText": "Scegli Starter", "ctaLink": "#form"},
				map[string]any{"name": "Pro", "price": "199", "currency": "€", "period": "/mese", "features": []any{"Piano allenamento avanzato", "Piano alimentare", "Chat diretta col coach"}, "highlighted": true, "badge": "Più Scelto", "ctaText": "Scegli Pro", "ctaLink": "#form"},
				map[string]any{"name": "Elite", "price": "349", "currency": "€", "period": "/mese", "features": []any{"Tutto di Pro", "Videochiamate settimanali", "Supporto prioritario"}, "highlighted": false, "ctaText": "Scegli Elite", "ctaLink": "#form"},
			},
			"backgroundColor": "bg-slate-900",
		},
	},
	domain.BlockTypeCTA: {
		Name:  "Call to Action",
		Glyph: "🎯",
		Settings: domain.Settings{
			"variant":            "centered",
			"title":              "Pronto a cambiare la tua vita?",
			"subtitle":           "Unisciti a oltre 500 persone che hanno già trasformato il loro corpo",
			"ctaText":            "Prenota una Consulenza Gratuita",
			"ctaAction":          "scroll",
			"ctaLink":            "#form",
			"backgroundType":     "gradient",
			"backgroundGradient": "from-sky-600 to-cyan-500",
			"showStats":          true,
			"stats": []any{
				map[string]any{"value": "500+", "label": "Clienti Soddisfatti"},
				map[string]any{"value": "98%", "label": "Tasso di Successo"},
			},
		},
	},
	domain.BlockTypeForm: {
		Name:  "Contact Form",
		Glyph: "📝",
		Settings: domain.Settings{
			"variant":  "standard",
			"title":    "Richiedi Informazioni",
			"subtitle": "Compila il form e ti ricontatteremo entro 24 ore",
			"fields": []any{
				formField("name", "text", "Nome e Cognome", "Mario Rossi", true),
				formField("email", "email", "Email", "mario@email.com", true),
				formField("phone", "tel", "Telefono", "+39 333 1234567", true),
				map[string]any{"id": "goal", "type": "select", "label": "Il tuo obiettivo", "placeholder": "Seleziona...", "required": true,
					"options": []any{"Perdere peso", "Aumentare massa muscolare", "Tonificare", "Altro"}},
				formField("message", "textarea", "Messaggio (opzionale)", "Raccontaci di te...", false),
			},
			"submitText":        "Invia Richiesta",
			"afterSubmitAction": "message",
			"successMessage":    "Grazie! Ti contatteremo presto.",
			"privacyText":       "Inviando accetti la nostra Privacy Policy",
			"privacyLink":       "/privacy",
			"backgroundColor":   "bg-slate-800",
			"saveToLeads":       true,
			"leadSource":        "",
			"leadTags":          []any{},
		},
	},
	domain.BlockTypeFAQ: {
		Name:  "FAQ Accordion",
		Glyph: "❓",
		Settings: domain.Settings{
			"variant":  "accordion",
			"title":    "Domande Frequenti",
			"subtitle": "Trova le risposte alle tue domande",
			"items": []any{
				map[string]any{"question": "Come funziona il programma?", "answer": "Dopo una consulenza iniziale, creiamo un piano personalizzato."},
				map[string]any{"question": "Quanto tempo ci vuole per vedere risultati?", "answer": "I primi risultati sono visibili già dopo 2-3 settimane."},
				map[string]any{"question": "Cosa succede se non vedo risultati?", "answer": "Offriamo una garanzia soddisfatti o rimborsati entro 30 giorni."},
			},
			"openFirst":       true,
			"backgroundColor": "bg-slate-900",
		},
	},
	domain.BlockTypeCountdown: {
		Name:  "Countdown Timer",
		Glyph: "⏰",
		Settings: domain.Settings{
			"variant":         "banner",
			"title":           "L'offerta scade tra:",
			"endDate":         "",
			"showDays":        true,
			"showHours":       true,
			"showMinutes":     true,
			"showSeconds":     true,
			"expiredMessage":  "Offerta scaduta!",
			"backgroundColor": "bg-gradient-to-r from-red-600 to-orange-500",
			"sticky":          false,
		},
	},
	domain.BlockTypeGallery: {
		Name:  "Image Gallery",
		Glyph: "🖼️",
		Settings: domain.Settings{
			"variant":         "grid",
			"title":           "Trasformazioni Reali",
			"subtitle":        "I risultati dei nostri clienti",
			"columns":         3,
			"items":           []any{},
			"showCaptions":    true,
			"lightbox":        true,
			"backgroundColor": "bg-slate-900",
		},
	},
	domain.BlockTypeVideo: {
		Name:  "Video Section",
		Glyph: "🎬",
		Settings: domain.Settings{
			"variant":         "featured",
			"title":           "Guarda il metodo in azione",
			"subtitle":        "",
			"videoUrl":        "",
			"thumbnailUrl":    "",
			"autoplay":        false,
			"muted":           true,
			"showControls":    true,
			"aspectRatio":     "16/9",
			"backgroundColor": "bg-slate-800",
		},
	},
	domain.BlockTypeText: {
		Name:  "Text Content",
		Glyph: "📄",
		Settings: domain.Settings{
			"variant":         "standard",
			"content":         "<h2>Il tuo titolo qui</h2><p>Il tuo contenuto qui...</p>",
			"textAlign":       "left",
			"maxWidth":        "max-w-4xl",
			"backgroundColor": "bg-transparent",
			"padding":         "py-12",
		},
	},
	domain.BlockTypeDivider: {
		Name:  "Divider",
		Glyph: "➖",
		Settings: domain.Settings{
			"variant": "line",
			"color":   "border-slate-700",
			"margin":  "my-8",
		},
	},
	domain.BlockTypeSocialProof: {
		Name:  "Social Proof",
		Glyph: "📣",
		Settings: domain.Settings{
			"variant": "logos",
			"title":   "Come visto su",
			"items": []any{
				map[string]any{"type": "stat", "value": "500+", "label": "Clienti Attivi"},
				map[string]any{"type": "stat", "value": "4.9/5", "label": "Valutazione Media"},
			},
			"logos":           []any{},
			"backgroundColor": "bg-slate-800/50",
		},
	},
}

func formField(id, typ, label, placeholder string, required bool) map[string]any {
	return map[string]any{"id": id, "type": typ, "label": label, "placeholder": placeholder, "required": required}
}

// Lookup returns the registry entry for t. The returned settings are a private copy.
func Lookup(t domain.BlockType) (BlockSpec, bool) {
	s, ok := specs[t]
	if !ok {
		return BlockSpec{}, false
	}
	s.Type = t
	s.Settings = domain.CloneSettings(s.Settings)
	return s, true
}

// DefaultsFor returns a fresh copy of the default settings for t. Unknown types
// yield a minimal generic map instead of failing.
func DefaultsFor(t domain.BlockType) domain.Settings {
	if s, ok := specs[t]; ok {
		return domain.CloneSettings(s.Settings)
	}
	return domain.Settings{"title": "", "subtitle": ""}
}

// Glyph returns the display glyph of t.
func Glyph(t domain.BlockType) string {
	if s, ok := specs[t]; ok {
		return s.Glyph
	}
	return fallbackGlyph
}

// Name returns the display name of t, or the type itself when unknown.
func Name(t domain.BlockType) string {
	if s, ok := specs[t]; ok {
		return s.Name
	}
	return string(t)
}

// Known reports whether t is in the registry.
func Known(t domain.BlockType) bool {
	_, ok := specs[t]
	return ok
}

// Types returns all registered block types in display order.
func Types() []domain.BlockType {
	return append([]domain.BlockType(nil), order...)
}

// LeadCaptureForm returns the settings of the form appended to synthesized
// documents that lack one: name and email required, phone optional.
func LeadCaptureForm() domain.Settings {
	return domain.Settings{
		"variant":  "standard",
		"title":    "Richiedi Informazioni",
		"subtitle": "Compila il form e ti ricontatteremo entro 24 ore",
		"fields": []any{
			formField("name", "text", "Nome e Cognome", "Mario Rossi", true),
			formField("email", "email", "Email", "mario@email.com", true),
			formField("phone", "tel", "Telefono", "+39 333 1234567", false),
		},
		"submitText":     "Invia Richiesta",
		"successMessage": "Grazie! Ti contatteremo presto.",
		"saveToLeads":    true,
	}
}
