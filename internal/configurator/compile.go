package configurator

import (
	"sort"

	"github.com/shopspring/decimal"

	"orderconfig/internal/cart"
	"orderconfig/internal/catalog"
)

// Compile turns a validated selection into cart lines: one per selected
// variant for regular and limited-offer items, exactly one for a pack.
// Callers must have run Validate first.
func Compile(ctx *SessionContext, s State, groupID string) []cart.LineItem {
	if ctx.Kind == catalog.KindSpecialPack {
		return []cart.LineItem{compilePack(ctx, s, groupID)}
	}

	lines := make([]cart.LineItem, 0, len(s.SelectedVariants))
	for i, id := range s.SelectedVariants {
		lines = append(lines, compileVariant(ctx, s, id, i == 0, groupID))
	}
	return lines
}

// --------------------------------------------------
// REGULAR / LIMITED OFFER
// --------------------------------------------------
func compileVariant(ctx *SessionContext, s State, variantID string, withDrinks bool, groupID string) cart.LineItem {
	qty := s.lineQuantity(variantID)

	unit := decimal.Zero
	p, ok := s.PricingPerVariant[variantID]
	if !ok && !ctx.Kind.SizeRequired() {
		p, ok = ctx.Catalog.DefaultPricing(variantID, ctx.now())
	}
	if ok {
		unit = p.Price
	}

	var supplementKeys []string
	for _, key := range sortedKeys(s.Supplements) {
		sup := s.Supplements[key]
		if sup.VariantID != "" && sup.VariantID != variantID {
			continue
		}
		unit = unit.Add(sup.Price)
		supplementKeys = append(supplementKeys, key)
	}

	var (
		drinks []cart.Drink
		extras = decimal.Zero
	)
	if withDrinks {
		drinks, extras = compileDrinks(ctx, s)
	}

	subtotal := unit.Mul(decimal.NewFromInt(int64(qty)))
	discount := lineDiscount(ctx.Catalog.Deals, subtotal, qty, func(d catalog.Deal) bool {
		return d.AppliesTo(variantID)
	})

	custom := encode(ctx, s, []string{variantID}, drinks)
	custom.Supplements = supplementKeys
	custom.Quantity = qty
	custom.VariantQuantities = map[string]int{variantID: qty}
	custom.GroupID = groupID
	if note, ok := s.VariantNotes[variantID]; ok {
		custom.VariantNotes = map[string]string{variantID: note}
	}

	return cart.LineItem{
		ID:                  ctx.newID(),
		ItemID:              ctx.Catalog.ItemID,
		VariantID:           variantID,
		Quantity:            qty,
		UnitPrice:           unit,
		ExtrasPrice:         extras,
		Discount:            discount,
		TotalPrice:          subtotal.Add(extras).Sub(discount),
		Customizations:      custom,
		SpecialInstructions: instructions(ctx, s, []string{variantID}),
		CreatedAt:           ctx.now(),
	}
}

// --------------------------------------------------
// SPECIAL PACK (one unit, one line)
// --------------------------------------------------
func compilePack(ctx *SessionContext, s State, groupID string) cart.LineItem {
	unit := decimal.Zero

	for _, id := range s.SelectedVariants {
		if p, ok := s.PricingPerVariant[id]; ok {
			unit = unit.Add(p.Price)
		}
		layout := ctx.slots(id)
		for _, key := range s.slotEntries(id, FacetSupplement) {
			if key.Slot < layout.RepeatCount {
				unit = unit.Add(layout.Supplements[key.Name])
			}
		}
	}

	keys := sortedKeys(s.Supplements)
	for _, key := range keys {
		unit = unit.Add(s.Supplements[key].Price)
	}

	drinks, extras := compileDrinks(ctx, s)
	discount := lineDiscount(ctx.Catalog.Deals, unit, 1, func(d catalog.Deal) bool {
		return d.Status == catalog.DealApproved && (d.VariantID == "" || s.IsSelected(d.VariantID))
	})

	custom := encode(ctx, s, s.SelectedVariants, drinks)
	custom.Supplements = keys
	custom.Quantity = 1
	custom.GroupID = groupID
	custom.VariantNotes = cloneMap(s.VariantNotes)

	return cart.LineItem{
		ID:                  ctx.newID(),
		ItemID:              ctx.Catalog.ItemID,
		Quantity:            1,
		UnitPrice:           unit,
		ExtrasPrice:         extras,
		Discount:            discount,
		TotalPrice:          unit.Add(extras).Sub(discount),
		Customizations:      custom,
		SpecialInstructions: instructions(ctx, s, s.SelectedVariants),
		CreatedAt:           ctx.now(),
	}
}

// compileDrinks lists paid drinks first, then free drinks at price 0, and
// returns the paid drinks total.
func compileDrinks(ctx *SessionContext, s State) ([]cart.Drink, decimal.Decimal) {
	var (
		out   []cart.Drink
		total = decimal.Zero
	)

	for _, id := range sortedKeys(s.PaidDrinks) {
		qty := s.PaidDrinks[id]
		d, ok := ctx.drink(id)
		if !ok || qty <= 0 {
			continue
		}
		out = append(out, cart.Drink{ID: id, Size: d.Size, Price: d.Price, Quantity: qty})
		total = total.Add(d.Price.Mul(decimal.NewFromInt(int64(qty))))
	}

	for _, id := range sortedKeys(s.FreeDrinks) {
		qty := s.FreeDrinks[id]
		if qty <= 0 {
			continue
		}
		d, _ := ctx.drink(id)
		out = append(out, cart.Drink{ID: id, Size: d.Size, IsFree: true, Price: decimal.Zero, Quantity: qty})
	}

	return out, total
}

// lineDiscount sums the approved deals for a line, capped at its subtotal.
// Percentages round to cents; flat deals apply per unit.
func lineDiscount(deals []catalog.Deal, subtotal decimal.Decimal, qty int, applies func(catalog.Deal) bool) decimal.Decimal {
	total := decimal.Zero
	hundred := decimal.NewFromInt(100)

	for _, d := range deals {
		if !applies(d) {
			continue
		}
		switch d.Type {
		case catalog.DealPercentage:
			total = total.Add(subtotal.Mul(d.DiscountValue).Div(hundred).Round(2))
		case catalog.DealFlat:
			total = total.Add(d.DiscountValue.Mul(decimal.NewFromInt(int64(qty))))
		}
	}

	if total.GreaterThan(subtotal) {
		return subtotal
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// encode writes the parts of a selection that belong to the given variants
// in the customizations contract shape.
func encode(ctx *SessionContext, s State, variants []string, drinks []cart.Drink) cart.Customizations {
	c := cart.Customizations{
		SelectedVariants:          append([]string{}, variants...),
		PricingPerVariant:         map[string]string{},
		Supplements:               []string{},
		RemovedIngredients:        []string{},
		IngredientPreferences:     map[string]string{},
		PackItemSelections:        map[string]map[string]string{},
		PackIngredientPreferences: map[string]map[string]map[string]string{},
		Drinks:                    drinks,
		Quantity:                  s.Quantity,
		Note:                      s.Note,
	}
	if c.Drinks == nil {
		c.Drinks = []cart.Drink{}
	}

	for _, id := range variants {
		if p, ok := s.PricingPerVariant[id]; ok {
			c.PricingPerVariant[id] = p.ID
		}
	}

	for _, name := range sortedKeys(s.IngredientPreferences) {
		pref := s.IngredientPreferences[name]
		if pref == PrefNeutral {
			continue
		}
		c.IngredientPreferences[name] = pref.String()
		if pref == PrefNone {
			c.RemovedIngredients = append(c.RemovedIngredients, name)
		}
	}

	if ctx.Kind != catalog.KindSpecialPack {
		return c
	}

	packSupplements := map[string]map[string][]string{}
	for _, id := range variants {
		for _, key := range s.slotEntries(id, FacetOption) {
			if c.PackItemSelections[id] == nil {
				c.PackItemSelections[id] = map[string]string{}
			}
			c.PackItemSelections[id][slotLabel(key.Slot)] = s.Slots[key]
		}

		v, _ := ctx.Catalog.Variant(id)
		for _, key := range s.slotEntries(id, FacetIngredient) {
			byName := c.PackIngredientPreferences[v.Name]
			if byName == nil {
				byName = map[string]map[string]string{}
				c.PackIngredientPreferences[v.Name] = byName
			}
			slot := slotLabel(key.Slot)
			if byName[slot] == nil {
				byName[slot] = map[string]string{}
			}
			byName[slot][key.Name] = s.Slots[key]
		}

		for _, key := range s.slotEntries(id, FacetSupplement) {
			if packSupplements[id] == nil {
				packSupplements[id] = map[string][]string{}
			}
			slot := slotLabel(key.Slot)
			packSupplements[id][slot] = append(packSupplements[id][slot], key.Name)
		}
	}
	for _, bySlot := range packSupplements {
		for _, names := range bySlot {
			sort.Strings(names)
		}
	}
	if len(packSupplements) > 0 {
		c.PackSupplementSelections = packSupplements
	}

	return c
}
