package domain

type BlockType string

const (
	BlockTypeHero         BlockType = "hero"
	BlockTypeFeatures     BlockType = "features"
	BlockTypeTestimonials BlockType = "testimonials"
	BlockTypePricing      BlockType = "pricing"
	BlockTypeCTA          BlockType = "cta"
	BlockTypeForm         BlockType = "form"
	BlockTypeFAQ          BlockType = "faq"
	BlockTypeCountdown    BlockType = "countdown"
	BlockTypeGallery      BlockType = "gallery"
	BlockTypeVideo        BlockType = "video"
	BlockTypeText         BlockType = "text"
	BlockTypeDivider      BlockType = "divider"
	BlockTypeSocialProof  BlockType = "socialProof"
)

// Settings is the open, type-specific configuration of a block
// (title, subtitle, items, fields, ctaText, ...).
type Settings map[string]any

// Block is one typed content unit of a landing page.
type Block struct {
	ID       string    `json:"id"`
	Type     BlockType `json:"type"`
	Settings Settings  `json:"settings"`
}

// Clone returns a copy of the block whose settings share no mutable state with b.
func (b Block) Clone() Block {
	return Block{ID: b.ID, Type: b.Type, Settings: CloneSettings(b.Settings)}
}

// Meta holds page-level metadata of a Document.
type Meta struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	AnalyzedFrom string `json:"analyzedFrom"`
}

// Document is a landing page: blocks in vertical render order plus metadata.
// A Document with zero blocks is a valid empty page.
type Document struct {
	Blocks []Block `json:"blocks"`
	Meta   Meta    `json:"meta"`
}

// Clone deep-copies the document.
func (d Document) Clone() Document {
	out := Document{Meta: d.Meta}
	if d.Blocks != nil {
		out.Blocks = make([]Block, len(d.Blocks))
		for i, b := range d.Blocks {
			out.Blocks[i] = b.Clone()
		}
	}
	return out
}

// Index returns the position of the block with the given id, or -1.
func (d Document) Index(id string) int {
	for i, b := range d.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Block returns the block with the given id.
func (d Document) Block(id string) (Block, bool) {
	if i := d.Index(id); i >= 0 {
		return d.Blocks[i], true
	}
	return Block{}, false
}

// IDs returns block ids in render order.
func (d Document) IDs() []string {
	ids := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		ids[i] = b.ID
	}
	return ids
}

// Count returns how many blocks have the given type.
func (d Document) Count(t BlockType) int {
	n := 0
	for _, b := range d.Blocks {
		if b.Type == t {
			n++
		}
	}
	return n
}
