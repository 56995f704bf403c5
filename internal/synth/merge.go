package synth

import "landing/internal/domain"

const (
	MaxColors     = 3
	FallbackStyle = "professionale"
	FallbackTone  = "coinvolgente"
)

// Merge reduces analyses (one per screenshot, in input order) to one.
// Merge of a single analysis returns a copy of it unchanged.
func Merge(analyses []domain.Analysis) domain.Analysis {
	switch len(analyses) {
	case 0:
		return domain.Analysis{Style: FallbackStyle, Tone: FallbackTone}
	case 1:
		return analyses[0].Clone()
	}

	var colors []string
	for _, a := range analyses {
		colors = append(colors, a.Colors...)
	}

	out := domain.Analysis{
		Sections:       OrderSections(DedupeSections(analyses)),
		Colors:         MergeColors(colors),
		Style:          firstNonEmpty(analyses, func(a domain.Analysis) string { return a.Style }, FallbackStyle),
		Tone:           firstNonEmpty(analyses, func(a domain.Analysis) string { return a.Tone }, FallbackTone),
		TargetAudience: firstNonEmpty(analyses, func(a domain.Analysis) string { return a.TargetAudience }, ""),
		Layout:         firstNonEmpty(analyses, func(a domain.Analysis) string { return a.Layout }, analyses[0].Layout),
		SourceURL:      firstNonEmpty(analyses, func(a domain.Analysis) string { return a.SourceURL }, ""),
	}
	return out
}

// singleton types keep only the first occurrence across analyses.
func singleton(t domain.BlockType) bool {
	return t == domain.BlockTypeHero || t == domain.BlockTypeForm
}

// DedupeSections concatenates sections across analyses in order, dropping a
// hero or form section when a section of that type was already kept from an
// earlier analysis. Repeats inside a single analysis are kept.
func DedupeSections(analyses []domain.Analysis) []domain.Section {
	var out []domain.Section
	kept := map[domain.BlockType]bool{}
	for _, a := range analyses {
		var seen []domain.BlockType
		for _, s := range a.Sections {
			if singleton(s.Type) {
				if kept[s.Type] {
					continue
				}
				seen = append(seen, s.Type)
			}
			out = append(out, s.Clone())
		}
		for _, t := range seen {
			kept[t] = true
		}
	}
	return out
}

// OrderSections is a stable three-bucket partition: hero sections first, form
// and cta sections last, everything else in between. Relative order inside
// each bucket is preserved.
func OrderSections(sections []domain.Section) []domain.Section {
	var front, middle, back []domain.Section
	for _, s := range sections {
		switch s.Type {
		case domain.BlockTypeHero:
			front = append(front, s)
		case domain.BlockTypeForm, domain.BlockTypeCTA:
			back = append(back, s)
		default:
			middle = append(middle, s)
		}
	}
	out := make([]domain.Section, 0, len(sections))
	out = append(out, front...)
	out = append(out, middle...)
	return append(out, back...)
}

// MergeColors removes exact duplicates and empty entries, keeps first-seen
// order and truncates to MaxColors.
func MergeColors(colors []string) []string {
	out := make([]string, 0, MaxColors)
	seen := map[string]bool{}
	for _, c := range colors {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) == MaxColors {
			break
		}
	}
	return out
}

func firstNonEmpty(analyses []domain.Analysis, field func(domain.Analysis) string, fallback string) string {
	for _, a := range analyses {
		if v := field(a); v != "" {
			return v
		}
	}
	return fallback
}
