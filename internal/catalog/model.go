package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant is one orderable form of a menu item. For special packs the
// Description carries the encoded slot layout read by ResolveSlots.
type Variant struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Pricing is a price tier. An empty VariantID makes the row item-global.
type Pricing struct {
	ID                 string          `json:"id" yaml:"id"`
	VariantID          string          `json:"variant_id,omitempty" yaml:"variant_id"`
	Size               string          `json:"size" yaml:"size"`
	Price              decimal.Decimal `json:"price" yaml:"price"`
	IsDefault          bool            `json:"is_default" yaml:"is_default"`
	FreeDrinksIncluded bool            `json:"free_drinks_included" yaml:"free_drinks_included"`
	FreeDrinksQuantity int             `json:"free_drinks_quantity" yaml:"free_drinks_quantity"`
	FreeDrinksList     []string        `json:"free_drinks_list" yaml:"free_drinks_list"`
	OfferEndAt         *time.Time      `json:"offer_end_at,omitempty" yaml:"offer_end_at"`
}

// Expired reports whether a limited offer row is no longer sellable.
func (p Pricing) Expired(now time.Time) bool {
	return p.OfferEndAt != nil && !now.Before(*p.OfferEndAt)
}

// Entitlement is the number of free drinks one unit of this row grants.
func (p Pricing) Entitlement() int {
	if !p.FreeDrinksIncluded || p.FreeDrinksQuantity < 0 {
		return 0
	}
	return p.FreeDrinksQuantity
}

type Supplement struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Price     decimal.Decimal `json:"price" yaml:"price"`
	VariantID string          `json:"variant_id,omitempty" yaml:"variant_id"`
}

// Key identifies a supplement; rows without an id are keyed by name and variant.
func (s Supplement) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Name + "@" + s.VariantID
}

// Drink is a drinks-category menu item of the restaurant.
type Drink struct {
	ID    string          `json:"id" yaml:"id"`
	Name  string          `json:"name" yaml:"name"`
	Size  string          `json:"size,omitempty" yaml:"size"`
	Price decimal.Decimal `json:"price" yaml:"price"`
}

// --------------------------------------------------
// DEALS (discounts applied at compile time)
// --------------------------------------------------

const (
	DealPercentage = "PERCENTAGE"
	DealFlat       = "FLAT"

	DealApproved = "APPROVED"
)

type Deal struct {
	ID            string          `json:"id" yaml:"id"`
	Type          string          `json:"type" yaml:"type"` // PERCENTAGE | FLAT
	DiscountValue decimal.Decimal `json:"discount_value" yaml:"discount_value"`
	VariantID     string          `json:"variant_id,omitempty" yaml:"variant_id"`
	Status        string          `json:"status" yaml:"status"`
}

// AppliesTo reports whether the deal discounts a line for variantID.
// Item-wide deals apply to every variant.
func (d Deal) AppliesTo(variantID string) bool {
	if d.Status != DealApproved {
		return false
	}
	return d.VariantID == "" || d.VariantID == variantID
}

// Model is an immutable snapshot of one menu item as served by the backend.
// It is replaced wholesale on refresh, never patched.
type Model struct {
	ItemID         string       `json:"item_id" yaml:"id"`
	RestaurantID   string       `json:"restaurant_id" yaml:"restaurant_id"`
	Name           string       `json:"name" yaml:"name"`
	IsLimitedOffer bool         `json:"is_limited_offer" yaml:"is_limited_offer"`
	Variants       []Variant    `json:"variants" yaml:"variants"`
	Pricing        []Pricing    `json:"pricing" yaml:"pricing"`
	Supplements    []Supplement `json:"supplements" yaml:"supplements"`
	Ingredients    []string     `json:"ingredients" yaml:"ingredients"`
	Deals          []Deal       `json:"deals" yaml:"deals"`
}

func (m *Model) Variant(id string) (Variant, bool) {
	for _, v := range m.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

func (m *Model) VariantByName(name string) (Variant, bool) {
	for _, v := range m.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

func (m *Model) PricingByID(id string) (Pricing, bool) {
	for _, p := range m.Pricing {
		if p.ID == id {
			return p, true
		}
	}
	return Pricing{}, false
}

// PricingFor lists the rows selectable for a variant: its own rows first,
// then the item-global ones.
func (m *Model) PricingFor(variantID string) []Pricing {
	var scoped, global []Pricing
	for _, p := range m.Pricing {
		switch p.VariantID {
		case variantID:
			scoped = append(scoped, p)
		case "":
			global = append(global, p)
		}
	}
	return append(scoped, global...)
}

// DefaultPricing picks the bootstrap row for a variant: the first unexpired
// default row, else the only unexpired row. ok is false when the choice is
// ambiguous or nothing is sellable.
func (m *Model) DefaultPricing(variantID string, now time.Time) (Pricing, bool) {
	var live []Pricing
	for _, p := range m.PricingFor(variantID) {
		if p.Expired(now) {
			continue
		}
		if p.IsDefault {
			return p, true
		}
		live = append(live, p)
	}
	if len(live) == 1 {
		return live[0], true
	}
	return Pricing{}, false
}

// FirstPricing is the edit fallback: the default row if there is one,
// otherwise the first unexpired row.
func (m *Model) FirstPricing(variantID string, now time.Time) (Pricing, bool) {
	if p, ok := m.DefaultPricing(variantID, now); ok {
		return p, true
	}
	for _, p := range m.PricingFor(variantID) {
		if !p.Expired(now) {
			return p, true
		}
	}
	return Pricing{}, false
}

// GlobalDefaultPricing returns the item-global default row, if any.
func (m *Model) GlobalDefaultPricing(now time.Time) (Pricing, bool) {
	for _, p := range m.Pricing {
		if p.VariantID == "" && p.IsDefault && !p.Expired(now) {
			return p, true
		}
	}
	return Pricing{}, false
}

func (m *Model) SupplementByKey(key string) (Supplement, bool) {
	for _, s := range m.Supplements {
		if s.Key() == key {
			return s, true
		}
	}
	return Supplement{}, false
}

// SupplementByName matches id-less references written by older clients.
func (m *Model) SupplementByName(name, variantID string) (Supplement, bool) {
	for _, s := range m.Supplements {
		if s.Name == name && (s.VariantID == variantID || s.VariantID == "") {
			return s, true
		}
	}
	return Supplement{}, false
}
