package areas

import (
	"strings"
	"unicode"

	"github.com/enricoisidori/threadscape/api/schemas"
)

// Canonical display names for the three historically renamed curriculum
// labels. Older documents carry the short forms.
const (
	LabelSpeculative   = "Speculative Design"
	LabelCommunication = "Communication Design"
	LabelInteraction   = "Interaction Design"
)

// canonical maps identity keys of the legacy spellings to current names.
// This provides a central place to absorb editor renames.
var canonical = map[string]string{
	"speculative":   LabelSpeculative,
	"communication": LabelCommunication,
	"interaction":   LabelInteraction,
}

// Field names the document property an area label was read from. Older
// editor builds wrote the area under several different spellings.
type Field string

const (
	FieldAreas     Field = "areas"
	FieldMainArea  Field = "mainArea"
	FieldMainarea  Field = "mainarea"
	FieldMainAreas Field = "mainAreas"
)

// fieldOrder fixes the fallback precedence: labels from an earlier field
// survive deduplication against later ones.
var fieldOrder = []Field{FieldAreas, FieldMainArea, FieldMainarea, FieldMainAreas}

// Source is one raw area label tagged with the field it came from, so the
// legacy-field fallback stays auditable instead of being folded away at
// parse time.
type Source struct {
	Field Field
	Label string
}

// NormalizeSources merges tagged labels in field precedence order and then
// canonicalizes them like Normalize.
func NormalizeSources(sources []Source) []string {
	raw := make([]string, 0, len(sources))
	for _, field := range fieldOrder {
		for _, src := range sources {
			if src.Field == field {
				raw = append(raw, src.Label)
			}
		}
	}
	return Normalize(raw)
}

// Key reduces a label to its identity form: lower case, with runs of
// punctuation and whitespace collapsed to single spaces.
func Key(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	pending := false
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// Normalize canonicalizes a node's raw area labels: internal whitespace is
// collapsed, the three renamed labels are mapped to their current names,
// duplicates (by identity key) are dropped with the first occurrence keeping
// its casing, and empty labels disappear. The result is stable under
// repeated application.
func Normalize(raw []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(raw))
	for _, label := range raw {
		display := strings.Join(strings.Fields(label), " ")
		if display == "" {
			continue
		}
		key := Key(display)
		if mapped, ok := canonical[key]; ok {
			display = mapped
			key = Key(mapped)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, display)
	}
	return out
}

// macroOrder fixes the evaluation order so scoring stays deterministic.
var macroOrder = []schemas.MacroCategory{
	schemas.MacroSpeculative,
	schemas.MacroCommunication,
	schemas.MacroInteraction,
}

// macroStems are the substrings scored by the classifier. The spellings
// cover both the Italian and English label families. Frozen: published
// analyses depend on this exact matching.
var macroStems = map[schemas.MacroCategory][]string{
	schemas.MacroSpeculative:   {"specul"},
	schemas.MacroCommunication: {"comunic", "communicat"},
	schemas.MacroInteraction:   {"inter"},
}

// Macro derives the macro category for a normalized area list. Each area
// string adds one point to every bucket whose stem it contains; the strictly
// highest bucket wins, a tie at the top yields mixed, and no match at all
// yields unknown.
func Macro(areas []string) schemas.MacroCategory {
	if len(areas) == 0 {
		return schemas.MacroUnknown
	}

	scores := make(map[schemas.MacroCategory]int, len(macroOrder))
	for _, area := range areas {
		lower := strings.ToLower(area)
		for _, cat := range macroOrder {
			if containsAny(lower, macroStems[cat]) {
				scores[cat]++
			}
		}
	}

	best := schemas.MacroUnknown
	bestScore := 0
	tied := false
	for _, cat := range macroOrder {
		s := scores[cat]
		if s == 0 {
			continue
		}
		switch {
		case s > bestScore:
			best, bestScore, tied = cat, s, false
		case s == bestScore:
			tied = true
		}
	}

	if bestScore == 0 {
		return schemas.MacroUnknown
	}
	if tied {
		return schemas.MacroMixed
	}
	return best
}

func containsAny(s string, stems []string) bool {
	for _, stem := range stems {
		if strings.Contains(s, stem) {
			return true
		}
	}
	return false
}
