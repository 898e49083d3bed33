package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Encoded pack description keys, e.g.
//
//	qty:2|options:Regular,Spicy|ingredients:Onion,Tomato|supplements:Cheese=1.50|hidden:Cheese
const (
	packKeyQty         = "qty"
	packKeyOptions     = "options"
	packKeyIngredients = "ingredients"
	packKeySupplements = "supplements"
	packKeyHidden      = "hidden"

	// MaxRepeatCount caps the slots of one pack variant.
	MaxRepeatCount = 20
)

// PackSlots is the per-slot layout of one special-pack variant.
type PackSlots struct {
	RepeatCount int
	Options     []string
	Ingredients []string
	// Supplements maps name to price; SupplementOrder keeps the encoded order.
	Supplements     map[string]decimal.Decimal
	SupplementOrder []string
	Hidden          map[string]bool
}

// NeedsOption reports whether each slot requires an explicit option choice.
func (p PackSlots) NeedsOption() bool {
	return len(p.Options) > 0
}

func (p PackSlots) HasOption(label string) bool {
	for _, o := range p.Options {
		if o == label {
			return true
		}
	}
	return false
}

func (p PackSlots) HasIngredient(name string) bool {
	for _, i := range p.Ingredients {
		if i == name {
			return true
		}
	}
	return false
}

// OfferedSupplements lists the supplements a slot may pick, hidden ones excluded.
func (p PackSlots) OfferedSupplements() []string {
	var out []string
	for _, name := range p.SupplementOrder {
		if !p.Hidden[name] {
			out = append(out, name)
		}
	}
	return out
}

func (p PackSlots) Offers(supplement string) bool {
	_, ok := p.Supplements[supplement]
	return ok && !p.Hidden[supplement]
}

// IsPackDescription reports whether desc uses the encoded pack format.
func IsPackDescription(desc string) bool {
	for _, seg := range strings.Split(desc, "|") {
		key, _, ok := strings.Cut(seg, ":")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case packKeyQty, packKeyOptions:
			return true
		}
	}
	return false
}

// ResolveSlots parses a pack variant description. Missing or malformed
// segments yield empty facets, never an error; a repeat count of zero or
// less becomes 1 and one above MaxRepeatCount is capped.
func ResolveSlots(v Variant) PackSlots {
	slots := PackSlots{
		RepeatCount: 1,
		Supplements: map[string]decimal.Decimal{},
		Hidden:      map[string]bool{},
	}

	for _, seg := range strings.Split(v.Description, "|") {
		key, value, ok := strings.Cut(seg, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case packKeyQty:
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				slots.RepeatCount = min(n, MaxRepeatCount)
			}
		case packKeyOptions:
			slots.Options = splitList(value)
		case packKeyIngredients:
			slots.Ingredients = splitList(value)
		case packKeySupplements:
			for _, entry := range splitList(value) {
				name, raw, ok := strings.Cut(entry, "=")
				name = strings.TrimSpace(name)
				if !ok || name == "" {
					continue
				}
				price, err := decimal.NewFromString(strings.TrimSpace(raw))
				if err != nil {
					continue
				}
				if _, dup := slots.Supplements[name]; !dup {
					slots.SupplementOrder = append(slots.SupplementOrder, name)
				}
				slots.Supplements[name] = price
			}
		case packKeyHidden:
			for _, name := range splitList(value) {
				slots.Hidden[name] = true
			}
		}
	}

	return slots
}

// ResolveAll parses every variant of a pack once.
func ResolveAll(m *Model) map[string]PackSlots {
	out := make(map[string]PackSlots, len(m.Variants))
	for _, v := range m.Variants {
		out[v.ID] = ResolveSlots(v)
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
