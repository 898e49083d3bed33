package configurator

import (
	"fmt"
	"strings"
)

const clauseSeparator = " | "

// instructions assembles the kitchen note for the given variants: removed
// ingredients, free-text notes, then extra / less / none groups. Empty
// clauses are skipped.
func instructions(ctx *SessionContext, s State, variants []string) string {
	var removed, extra, less, none []string

	for _, name := range sortedKeys(s.IngredientPreferences) {
		switch s.IngredientPreferences[name] {
		case PrefNone:
			removed = append(removed, name)
		case PrefWanted:
			extra = append(extra, name)
		case PrefLess:
			less = append(less, name)
		}
	}

	notes := []string{}
	if s.Note != "" {
		notes = append(notes, s.Note)
	}

	for _, id := range variants {
		if n := s.VariantNotes[id]; n != "" {
			notes = append(notes, n)
		}
		v, _ := ctx.Catalog.Variant(id)
		for _, key := range s.slotEntries(id, FacetIngredient) {
			label := fmt.Sprintf("%s #%d %s", v.Name, key.Slot+1, key.Name)
			switch s.PackIngredient(id, key.Slot, key.Name) {
			case PrefWanted:
				extra = append(extra, label)
			case PrefLess:
				less = append(less, label)
			case PrefNone:
				none = append(none, label)
			}
		}
	}

	labels := ctx.Labels
	var clauses []string
	add := func(label string, items []string) {
		if len(items) > 0 {
			clauses = append(clauses, label+": "+strings.Join(items, ", "))
		}
	}

	add(labels.Without, removed)
	if len(notes) > 0 {
		clauses = append(clauses, strings.Join(notes, ". "))
	}
	add(labels.Extra, extra)
	add(labels.Less, less)
	add(labels.No, none)

	return strings.Join(clauses, clauseSeparator)
}
