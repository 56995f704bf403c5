package editor

import (
	"landing/internal/catalog"
	"landing/internal/domain"
)

// Instantiate turns a template fixture into an independently owned Document.
// Every block gets a fresh id and a deep copy of its settings; meta comes from
// the caller, never from the template.
func (e *Editor) Instantiate(tpl catalog.Template, meta domain.Meta) domain.Document {
	blocks := make([]domain.Block, 0, len(tpl.Blocks))
	for _, tb := range tpl.Blocks {
		settings := domain.CloneSettings(tb.Settings)
		if settings == nil {
			settings = domain.Settings{}
		}
		b := domain.Block{ID: e.newID(string(tb.Type)), Type: tb.Type, Settings: settings}
		e.plugins.OnCreate(&b)
		blocks = append(blocks, b)
	}
	return domain.Document{Blocks: blocks, Meta: meta}
}

// InstantiateNamed resolves name in cat and instantiates it. Unknown names
// return catalog.ErrUnknownTemplate.
func (e *Editor) InstantiateNamed(cat *catalog.Catalog, name string, meta domain.Meta) (domain.Document, error) {
	tpl, err := cat.Get(name)
	if err != nil {
		return domain.Document{}, err
	}
	return e.Instantiate(tpl, meta), nil
}
