package configurator

import (
	"sort"
	"strconv"

	"orderconfig/internal/catalog"
)

// Preference is a 4-state ingredient choice; absence means neutral.
type Preference int

const (
	PrefNeutral Preference = iota
	PrefWanted
	PrefLess
	PrefNone
)

func (p Preference) String() string {
	switch p {
	case PrefWanted:
		return "wanted"
	case PrefLess:
		return "less"
	case PrefNone:
		return "none"
	default:
		return "neutral"
	}
}

// Next walks the ring neutral -> wanted -> less -> none -> neutral.
func (p Preference) Next() Preference {
	return (p + 1) % 4
}

func ParsePreference(s string) (Preference, bool) {
	switch s {
	case "wanted":
		return PrefWanted, true
	case "less":
		return PrefLess, true
	case "none":
		return PrefNone, true
	case "neutral", "":
		return PrefNeutral, true
	}
	return PrefNeutral, false
}

// Facet names what a pack slot entry records.
type Facet int

const (
	FacetOption Facet = iota
	FacetIngredient
	FacetSupplement
)

// SlotKey addresses one cell of the pack table. Name is the ingredient or
// supplement name and stays empty for options.
type SlotKey struct {
	VariantID string
	Slot      int
	Facet     Facet
	Name      string
}

// State is the selection being configured. Operations never mutate a State
// in place; Reduce works on a clone.
type State struct {
	SelectedVariants      []string
	PricingPerVariant     map[string]catalog.Pricing
	VariantQuantities     map[string]int
	Supplements           map[string]catalog.Supplement
	IngredientPreferences map[string]Preference
	// Slots holds every per-slot pack choice: option labels, ingredient
	// preferences (Preference.String) and chosen supplements ("1").
	Slots        map[SlotKey]string
	FreeDrinks   map[string]int
	PaidDrinks   map[string]int
	Quantity     int
	Note         string
	VariantNotes map[string]string
	// DrinksTouched stops free-drink auto-assignment once the customer has
	// picked drinks themselves.
	DrinksTouched bool
}

func NewState() State {
	return State{
		PricingPerVariant:     map[string]catalog.Pricing{},
		VariantQuantities:     map[string]int{},
		Supplements:           map[string]catalog.Supplement{},
		IngredientPreferences: map[string]Preference{},
		Slots:                 map[SlotKey]string{},
		FreeDrinks:            map[string]int{},
		PaidDrinks:            map[string]int{},
		Quantity:              1,
		VariantNotes:          map[string]string{},
	}
}

func (s State) Clone() State {
	out := s
	out.SelectedVariants = append([]string(nil), s.SelectedVariants...)
	out.PricingPerVariant = cloneMap(s.PricingPerVariant)
	out.VariantQuantities = cloneMap(s.VariantQuantities)
	out.Supplements = cloneMap(s.Supplements)
	out.IngredientPreferences = cloneMap(s.IngredientPreferences)
	out.Slots = cloneMap(s.Slots)
	out.FreeDrinks = cloneMap(s.FreeDrinks)
	out.PaidDrinks = cloneMap(s.PaidDrinks)
	out.VariantNotes = cloneMap(s.VariantNotes)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s State) IsSelected(variantID string) bool {
	for _, id := range s.SelectedVariants {
		if id == variantID {
			return true
		}
	}
	return false
}

func (s *State) addVariant(variantID string) {
	if !s.IsSelected(variantID) {
		s.SelectedVariants = append(s.SelectedVariants, variantID)
	}
}

// dropVariant removes a variant with its pricing, quantity and note.
func (s *State) dropVariant(variantID string) {
	kept := s.SelectedVariants[:0]
	for _, id := range s.SelectedVariants {
		if id != variantID {
			kept = append(kept, id)
		}
	}
	s.SelectedVariants = kept
	delete(s.PricingPerVariant, variantID)
	delete(s.VariantQuantities, variantID)
}

func (s *State) clearVariants() {
	for _, id := range append([]string(nil), s.SelectedVariants...) {
		s.dropVariant(id)
	}
}

// PackOption returns the option chosen for a slot.
func (s State) PackOption(variantID string, slot int) (string, bool) {
	v, ok := s.Slots[SlotKey{VariantID: variantID, Slot: slot, Facet: FacetOption}]
	return v, ok
}

func (s State) PackIngredient(variantID string, slot int, name string) Preference {
	raw := s.Slots[SlotKey{VariantID: variantID, Slot: slot, Facet: FacetIngredient, Name: name}]
	p, _ := ParsePreference(raw)
	return p
}

func (s State) PackSupplementChosen(variantID string, slot int, name string) bool {
	_, ok := s.Slots[SlotKey{VariantID: variantID, Slot: slot, Facet: FacetSupplement, Name: name}]
	return ok
}

// slotEntries lists the pack table entries of one variant and facet in
// (slot, name) order.
func (s State) slotEntries(variantID string, facet Facet) []SlotKey {
	var keys []SlotKey
	for k := range s.Slots {
		if k.VariantID == variantID && k.Facet == facet {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Slot != keys[j].Slot {
			return keys[i].Slot < keys[j].Slot
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

// EffectiveQuantity is the sum of tracked per-variant quantities, or the
// overall quantity when none are tracked.
func (s State) EffectiveQuantity() int {
	total, tracked := 0, false
	for _, id := range s.SelectedVariants {
		if q, ok := s.VariantQuantities[id]; ok {
			total += q
			tracked = true
		}
	}
	if !tracked {
		return s.Quantity
	}
	return total
}

func (s State) lineQuantity(variantID string) int {
	if q, ok := s.VariantQuantities[variantID]; ok && q > 0 {
		return q
	}
	if s.Quantity < 1 {
		return 1
	}
	return s.Quantity
}

func (s State) AssignedFreeDrinks() int {
	total := 0
	for _, q := range s.FreeDrinks {
		total += q
	}
	return total
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func slotLabel(slot int) string {
	return strconv.Itoa(slot)
}
