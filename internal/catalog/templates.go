package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"landing/internal/domain"
)

var ErrUnknownTemplate = errors.New("unknown template")

// TemplateBlock is one block of a template fixture. Fixtures carry no ids;
// ids are assigned when a template is instantiated.
type TemplateBlock struct {
	Type     domain.BlockType `json:"type" yaml:"type"`
	Settings domain.Settings  `json:"settings" yaml:"settings"`
}

// Template is a named, static Document-shaped fixture.
type Template struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Preview     string          `json:"preview" yaml:"preview"`
	Blocks      []TemplateBlock `json:"blocks" yaml:"blocks"`
}

// Summary is the light form of a Template used for listings.
type Summary struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Preview     string             `json:"preview"`
	BlockTypes  []domain.BlockType `json:"blockTypes"`
}

func (t Template) clone() Template {
	out := t
	out.Blocks = make([]TemplateBlock, len(t.Blocks))
	for i, b := range t.Blocks {
		out.Blocks[i] = TemplateBlock{Type: b.Type, Settings: domain.CloneSettings(b.Settings)}
	}
	return out
}

func (t Template) summary() Summary {
	types := make([]domain.BlockType, len(t.Blocks))
	for i, b := range t.Blocks {
		types[i] = b.Type
	}
	return Summary{ID: t.ID, Name: t.Name, Description: t.Description, Preview: t.Preview, BlockTypes: types}
}

// ─────────────────────────────────────────────────────────────
// Catalog: built-in templates plus templates loaded from disk
// ─────────────────────────────────────────────────────────────

// Catalog resolves template names. Templates loaded from a directory shadow
// built-ins with the same id. Safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	loaded map[string]Template
	logger *zap.Logger
}

// New creates a Catalog holding only the built-in templates.
func New(logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{loaded: map[string]Template{}, logger: logger}
}

// Get returns a private copy of the named template.
func (c *Catalog) Get(id string) (Template, error) {
	c.mu.RLock()
	t, ok := c.loaded[id]
	c.mu.RUnlock()
	if !ok {
		t, ok = builtins[id]
	}
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return t.clone(), nil
}

// List returns summaries of every template: built-ins first in their fixed
// order, then directory templates sorted by id.
func (c *Catalog) List() []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Summary, 0, len(builtinOrder)+len(c.loaded))
	for _, id := range builtinOrder {
		if t, ok := c.loaded[id]; ok {
			out = append(out, t.summary())
			continue
		}
		out = append(out, builtins[id].summary())
	}
	for _, id := range slices.Sorted(maps.Keys(c.loaded)) {
		if _, builtin := builtins[id]; builtin {
			continue
		}
		out = append(out, c.loaded[id].summary())
	}
	return out
}

// replaceLoaded swaps the full set of directory templates.
func (c *Catalog) replaceLoaded(set map[string]Template) {
	c.mu.Lock()
	c.loaded = set
	c.mu.Unlock()
}

// ── Built-in fixtures ──────────────────────────────────────

// block builds a fixture block from the registry defaults with overrides
// applied on top (shallow).
func block(t domain.BlockType, overrides domain.Settings) TemplateBlock {
	s := DefaultsFor(t)
	for k, v := range overrides {
		s[k] = v
	}
	return TemplateBlock{Type: t, Settings: s}
}

var builtinOrder = []string{"fitness", "coaching", "promo", "leadMagnet", "blank"}

var builtins = map[string]Template{
	"fitness": {
		ID:          "fitness",
		Name:        "Fitness Transformation",
		Description: "Landing page per programmi di trasformazione fisica",
		Preview:     "🏋️",
		Blocks: []TemplateBlock{
			block(domain.BlockTypeHero, nil),
			block(domain.BlockTypeSocialProof, nil),
			block(domain.BlockTypeFeatures, nil),
			block(domain.BlockTypeTestimonials, nil),
			block(domain.BlockTypePricing, nil),
			block(domain.BlockTypeFAQ, nil),
			block(domain.BlockTypeCTA, nil),
			block(domain.BlockTypeForm, nil),
		},
	},
	"coaching": {
		ID:          "coaching",
		Name:        "Personal Coaching",
		Description: "Per servizi di coaching online 1:1",
		Preview:     "👨‍🏫",
		Blocks: []TemplateBlock{
			block(domain.BlockTypeHero, domain.Settings{"variant": "split"}),
			block(domain.BlockTypeFeatures, domain.Settings{"columns": 2}),
			block(domain.BlockTypeVideo, nil),
			block(domain.BlockTypeTestimonials, nil),
			block(domain.BlockTypeCTA, nil),
			block(domain.BlockTypeForm, nil),
		},
	},
	"promo": {
		ID:          "promo",
		Name:        "Promo / Offerta",
		Description: "Landing page per promozioni a tempo limitato",
		Preview:     "🔥",
		Blocks: []TemplateBlock{
			block(domain.BlockTypeCountdown, domain.Settings{"sticky": true}),
			block(domain.BlockTypeHero, nil),
			block(domain.BlockTypeFeatures, nil),
			block(domain.BlockTypePricing, nil),
			block(domain.BlockTypeCountdown, nil),
			block(domain.BlockTypeForm, nil),
		},
	},
	"leadMagnet": {
		ID:          "leadMagnet",
		Name:        "Lead Magnet",
		Description: "Per download di guide gratuite e lead generation",
		Preview:     "📚",
		Blocks: []TemplateBlock{
			block(domain.BlockTypeHero, domain.Settings{
				"title":     "Scarica la Guida Gratuita",
				"subtitle":  "10 segreti per trasformare il tuo corpo",
				"ctaText":   "Scarica Ora",
				"minHeight": "70vh",
			}),
			block(domain.BlockTypeFeatures, domain.Settings{"title": "Cosa imparerai", "columns": 2}),
			block(domain.BlockTypeForm, domain.Settings{
				"title": "Ricevi la guida via email",
				"fields": []any{
					formField("name", "text", "Nome", "Il tuo nome", true),
					formField("email", "email", "Email", "La tua email", true),
				},
			}),
		},
	},
	"blank": {
		ID:          "blank",
		Name:        "Pagina Vuota",
		Description: "Inizia da zero con una pagina vuota",
		Preview:     "📄",
		Blocks:      []TemplateBlock{},
	},
}
