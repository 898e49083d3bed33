package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one finalized cart entry. Prices are fixed when the line is
// compiled and never recomputed afterwards.
type LineItem struct {
	ID                  string          `json:"id"`
	ItemID              string          `json:"item_id"`
	VariantID           string          `json:"variant_id,omitempty"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	ExtrasPrice         decimal.Decimal `json:"extras_price"`
	Discount            decimal.Decimal `json:"discount"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	Customizations      Customizations  `json:"customizations"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// ExpectedTotal is unitPrice*quantity + extras - discounts.
func (l LineItem) ExpectedTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).
		Add(l.ExtrasPrice).
		Sub(l.Discount)
}

// Drink is one drink entry on a line. Free drinks carry a zero price.
type Drink struct {
	ID       string          `json:"id"`
	Size     string          `json:"size,omitempty"`
	IsFree   bool            `json:"is_free"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Customizations is the stable JSON contract between compile and edit.
type Customizations struct {
	SelectedVariants          []string                                `json:"selected_variants"`
	PricingPerVariant         map[string]string                       `json:"pricing_per_variant"`
	Supplements               []string                                `json:"supplements"`
	RemovedIngredients        []string                                `json:"removed_ingredients"`
	IngredientPreferences     map[string]string                       `json:"ingredient_preferences"`
	PackItemSelections        map[string]map[string]string            `json:"pack_item_selections"`
	PackIngredientPreferences map[string]map[string]map[string]string `json:"pack_ingredient_preferences"`
	PackSupplementSelections  map[string]map[string][]string          `json:"pack_supplement_selections,omitempty"`
	Drinks                    []Drink                                 `json:"drinks"`
	Quantity                  int                                     `json:"quantity"`
	Note                      string                                  `json:"note"`
	VariantNotes              map[string]string                       `json:"variant_notes,omitempty"`
	VariantQuantities         map[string]int                          `json:"variant_quantities,omitempty"`
	GroupID                   string                                  `json:"group_id,omitempty"`
}
