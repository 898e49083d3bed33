package configurator

import (
	"math"
	"sort"

	"orderconfig/internal/catalog"
)

// entitlementRow finds the pricing row that grants free drinks for the
// current selection. Chosen rows win; limited offers without a chosen size
// fall back to the variant default, and the item-global default row is the
// last resort. The row with the largest entitlement is used.
func entitlementRow(ctx *SessionContext, s State) (catalog.Pricing, bool) {
	var (
		best  catalog.Pricing
		found bool
	)
	consider := func(p catalog.Pricing) {
		if !found || p.Entitlement() > best.Entitlement() {
			best, found = p, true
		}
	}

	now := ctx.now()
	for _, id := range s.SelectedVariants {
		if p, ok := s.PricingPerVariant[id]; ok {
			consider(p)
			continue
		}
		if !ctx.Kind.SizeRequired() {
			if p, ok := ctx.Catalog.DefaultPricing(id, now); ok {
				consider(p)
			}
		}
	}
	if !found {
		if p, ok := ctx.Catalog.GlobalDefaultPricing(now); ok {
			consider(p)
		}
	}
	return best, found
}

// RequiredFreeDrinks is the number of complimentary drinks the selection is
// entitled to. Regular and limited-offer items scale with quantity; a pack
// order carries its own unscaled entitlement.
func RequiredFreeDrinks(ctx *SessionContext, s State) int {
	row, ok := entitlementRow(ctx, s)
	if !ok {
		return 0
	}
	base := row.Entitlement()
	if ctx.Kind == catalog.KindSpecialPack {
		return base
	}
	return base * s.EffectiveQuantity()
}

// EligibleFreeDrinks filters the restaurant drinks to the entitlement list.
// An empty list admits every drink.
func EligibleFreeDrinks(ctx *SessionContext, s State) []catalog.Drink {
	row, ok := entitlementRow(ctx, s)
	if !ok || row.Entitlement() == 0 {
		return nil
	}
	if len(row.FreeDrinksList) == 0 {
		return append([]catalog.Drink(nil), ctx.Drinks...)
	}

	allowed := make(map[string]bool, len(row.FreeDrinksList))
	for _, id := range row.FreeDrinksList {
		allowed[id] = true
	}
	var out []catalog.Drink
	for _, d := range ctx.Drinks {
		if allowed[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

func isEligible(ctx *SessionContext, s State, drinkID string) bool {
	for _, d := range EligibleFreeDrinks(ctx, s) {
		if d.ID == drinkID {
			return true
		}
	}
	return false
}

// autoAssignFreeDrinks gives the whole entitlement to the only eligible
// drink. With zero or several eligible drinks the customer must choose.
func autoAssignFreeDrinks(ctx *SessionContext, s *State) {
	if s.DrinksTouched {
		return
	}
	eligible := EligibleFreeDrinks(ctx, *s)
	if len(eligible) != 1 {
		return
	}
	required := RequiredFreeDrinks(ctx, *s)
	s.FreeDrinks = map[string]int{}
	if required > 0 {
		s.FreeDrinks[eligible[0].ID] = required
		delete(s.PaidDrinks, eligible[0].ID)
	}
}

// rescaleFreeDrinks keeps free drink picks proportional to a quantity change:
// newQty = round(oldQty * newTotal / oldTotal), at least 1 when it was
// nonzero, then clamped to the entitlement.
func rescaleFreeDrinks(drinks map[string]int, oldTotal, newTotal, limit int) map[string]int {
	out := make(map[string]int, len(drinks))
	if oldTotal <= 0 {
		for id, q := range drinks {
			out[id] = q
		}
		return clampFreeDrinks(out, limit)
	}

	ratio := float64(newTotal) / float64(oldTotal)
	for id, q := range drinks {
		if q <= 0 {
			continue
		}
		n := int(math.Round(float64(q) * ratio))
		if n < 1 {
			n = 1
		}
		out[id] = n
	}
	return clampFreeDrinks(out, limit)
}

// clampFreeDrinks trims allocations until their sum fits the limit, taking
// from the largest allocation first (ties by id) so results are stable.
func clampFreeDrinks(drinks map[string]int, limit int) map[string]int {
	if limit < 0 {
		limit = 0
	}
	total := 0
	for _, q := range drinks {
		total += q
	}
	for total > limit {
		ids := sortedKeys(drinks)
		sort.SliceStable(ids, func(i, j int) bool {
			return drinks[ids[i]] > drinks[ids[j]]
		})
		top := ids[0]
		drinks[top]--
		if drinks[top] <= 0 {
			delete(drinks, top)
		}
		total--
	}
	return drinks
}
