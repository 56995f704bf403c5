// Package editor implements the block collection editor: pure operations that
// take a Document and return a new one. Inputs are never modified; untouched
// blocks may share settings with the input, so callers must treat settings of
// a returned Document as read-only and go through UpdateSettings.
package editor

import (
	"errors"

	"landing/internal/catalog"
	"landing/internal/domain"
	"landing/internal/ident"
)

var ErrNotPermutation = errors.New("block order is not a permutation of the current blocks")

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Editor carries the collaborators of block creation. The zero value is not
// usable; construct with New.
type Editor struct {
	newID   func(prefix string) string
	plugins *PluginRegistry
}

type Option func(*Editor)

// WithIDFunc replaces the id generator.
func WithIDFunc(fn func(prefix string) string) Option {
	return func(e *Editor) { e.newID = fn }
}

// WithPlugins installs create-time plugins.
func WithPlugins(r *PluginRegistry) Option {
	return func(e *Editor) { e.plugins = r }
}

func New(opts ...Option) *Editor {
	e := &Editor{newID: ident.NextID}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Plugins returns the plugin registry, possibly nil.
func (e *Editor) Plugins() *PluginRegistry { return e.plugins }

// CreateBlock returns a new block of type t with fresh default settings.
func (e *Editor) CreateBlock(t domain.BlockType) domain.Block {
	b := domain.Block{ID: e.newID(string(t)), Type: t, Settings: catalog.DefaultsFor(t)}
	e.plugins.OnCreate(&b)
	return b
}

func withBlocks(doc domain.Document, blocks []domain.Block) domain.Document {
	return domain.Document{Blocks: blocks, Meta: doc.Meta}
}

func copyBlocks(blocks []domain.Block, extra int) []domain.Block {
	out := make([]domain.Block, len(blocks), len(blocks)+extra)
	copy(out, blocks)
	return out
}

// Add appends a new block of type t and returns it so the caller can focus it.
func (e *Editor) Add(doc domain.Document, t domain.BlockType) (domain.Document, domain.Block) {
	b := e.CreateBlock(t)
	blocks := append(copyBlocks(doc.Blocks, 1), b)
	return withBlocks(doc, blocks), b.Clone()
}

// AddWithSettings appends a new block of type t whose defaults are overlaid
// with settings (shallow).
func (e *Editor) AddWithSettings(doc domain.Document, t domain.BlockType, settings domain.Settings) (domain.Document, domain.Block) {
	b := e.CreateBlock(t)
	for k, v := range settings {
		b.Settings[k] = domain.CloneValue(v)
	}
	blocks := append(copyBlocks(doc.Blocks, 1), b)
	return withBlocks(doc, blocks), b.Clone()
}

// Remove drops the block with the given id. Absent ids are a no-op.
func (e *Editor) Remove(doc domain.Document, id string) domain.Document {
	if doc.Index(id) < 0 {
		return doc
	}
	blocks := make([]domain.Block, 0, len(doc.Blocks)-1)
	for _, b := range doc.Blocks {
		if b.ID != id {
			blocks = append(blocks, b)
		}
	}
	return withBlocks(doc, blocks)
}

// Duplicate inserts a deep copy of the block with the given id right after it,
// under a fresh id. ok is false, and doc is returned unchanged, if id is absent.
func (e *Editor) Duplicate(doc domain.Document, id string) (out domain.Document, dup domain.Block, ok bool) {
	i := doc.Index(id)
	if i < 0 {
		return doc, domain.Block{}, false
	}
	src := doc.Blocks[i]
	dup = domain.Block{ID: e.newID(string(src.Type)), Type: src.Type, Settings: domain.CloneSettings(src.Settings)}
	if dup.Settings == nil {
		dup.Settings = domain.Settings{}
	}

	blocks := make([]domain.Block, 0, len(doc.Blocks)+1)
	blocks = append(blocks, doc.Blocks[:i+1]...)
	blocks = append(blocks, dup)
	blocks = append(blocks, doc.Blocks[i+1:]...)
	return withBlocks(doc, blocks), dup.Clone(), true
}

// Move swaps the block with its neighbor in dir. Moving the first block up,
// the last block down, an absent id or an unknown direction is a no-op.
func (e *Editor) Move(doc domain.Document, id string, dir Direction) domain.Document {
	i := doc.Index(id)
	if i < 0 {
		return doc
	}
	j := i
	switch dir {
	case Up:
		j = i - 1
	case Down:
		j = i + 1
	}
	if j == i || j < 0 || j >= len(doc.Blocks) {
		return doc
	}
	blocks := copyBlocks(doc.Blocks, 0)
	blocks[i], blocks[j] = blocks[j], blocks[i]
	return withBlocks(doc, blocks)
}

// Reorder replaces the block sequence wholesale. seq is expected to be a
// permutation of the current blocks (see IsPermutation); it is not enforced.
func (e *Editor) Reorder(doc domain.Document, seq []domain.Block) domain.Document {
	return withBlocks(doc, copyBlocks(seq, 0))
}

// ReorderIDs reorders blocks to follow ids. ids must name every current
// block exactly once; otherwise ErrNotPermutation is returned with doc.
func (e *Editor) ReorderIDs(doc domain.Document, ids []string) (domain.Document, error) {
	if !IsPermutation(doc.IDs(), ids) {
		return doc, ErrNotPermutation
	}
	blocks := make([]domain.Block, len(ids))
	for i, id := range ids {
		blocks[i] = doc.Blocks[doc.Index(id)]
	}
	return withBlocks(doc, blocks), nil
}

// UpdateSettings shallow-merges partial into the settings of the block with
// the given id. Other blocks are untouched; absent ids are a no-op.
func (e *Editor) UpdateSettings(doc domain.Document, id string, partial domain.Settings) domain.Document {
	i := doc.Index(id)
	if i < 0 {
		return doc
	}
	blocks := copyBlocks(doc.Blocks, 0)
	target := blocks[i]
	merged := make(domain.Settings, len(target.Settings)+len(partial))
	for k, v := range target.Settings {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = domain.CloneValue(v)
	}
	blocks[i] = domain.Block{ID: target.ID, Type: target.Type, Settings: merged}
	return withBlocks(doc, blocks)
}

// ReplaceBlocks discards every block and appends new ones built from specs,
// each with a fresh id and defaults overlaid by the given settings.
func (e *Editor) ReplaceBlocks(doc domain.Document, specs []catalog.TemplateBlock) domain.Document {
	out := withBlocks(doc, make([]domain.Block, 0, len(specs)))
	for _, s := range specs {
		out, _ = e.AddWithSettings(out, s.Type, s.Settings)
	}
	return out
}

// IsPermutation reports whether next contains exactly the ids of current,
// each once, in any order.
func IsPermutation(current, next []string) bool {
	if len(current) != len(next) {
		return false
	}
	count := make(map[string]int, len(current))
	for _, id := range current {
		count[id]++
	}
	for _, id := range next {
		if count[id] == 0 {
			return false
		}
		count[id]--
	}
	return true
}
