package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CTA is a call to action detected in an analyzed page.
type CTA struct {
	Label      string `json:"label"`
	ActionType string `json:"actionType,omitempty"`
}

// Section is one analyzer-detected page section.
// Features, when non-nil, is copied verbatim into the block's items.
type Section struct {
	Type     BlockType `json:"type"`
	Title    string    `json:"title,omitempty"`
	Subtitle string    `json:"subtitle,omitempty"`
	CTAs     []CTA     `json:"ctas,omitempty"`
	Features []any     `json:"features,omitempty"`
}

// UnmarshalJSON accepts "sectionTitle" as an alias for "title".
func (s *Section) UnmarshalJSON(data []byte) error {
	type plain Section
	var aux struct {
		plain
		SectionTitle string `json:"sectionTitle"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Section(aux.plain)
	if s.Title == "" {
		s.Title = aux.SectionTitle
	}
	return nil
}

// Clone deep-copies the section.
func (s Section) Clone() Section {
	out := s
	if s.CTAs != nil {
		out.CTAs = append([]CTA(nil), s.CTAs...)
	}
	if s.Features != nil {
		out.Features = CloneValue(s.Features).([]any)
	}
	return out
}

// paletteKeys is the order in which an object-shaped palette is flattened.
var paletteKeys = []string{"primary", "secondary", "background", "cardBackground", "textPrimary", "textSecondary"}

// Colors is an ordered palette. It decodes from a JSON array of strings or
// from an object keyed by role (primary, secondary, background, ...).
type Colors []string

func (c *Colors) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	switch data[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("colors: %w", err)
		}
		*c = list
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("colors: %w", err)
		}
		var list []string
		for _, k := range paletteKeys {
			if v, ok := obj[k].(string); ok && v != "" {
				list = append(list, v)
			}
		}
		*c = list
	default:
		return fmt.Errorf("colors: unexpected JSON %q", string(data[:1]))
	}
	return nil
}

// Analysis is the structured description of one analyzed source
// (a screenshot, a URL or a business brief).
type Analysis struct {
	Sections       []Section `json:"sections"`
	Colors         Colors    `json:"colors"`
	Style          string    `json:"style"`
	Tone           string    `json:"tone"`
	TargetAudience string    `json:"targetAudience"`
	Layout         string    `json:"layout"`
	SourceURL      string    `json:"sourceUrl,omitempty"`
}

// Clone deep-copies the analysis.
func (a Analysis) Clone() Analysis {
	out := a
	if a.Sections != nil {
		out.Sections = make([]Section, len(a.Sections))
		for i, s := range a.Sections {
			out.Sections[i] = s.Clone()
		}
	}
	if a.Colors != nil {
		out.Colors = append(Colors(nil), a.Colors...)
	}
	return out
}
