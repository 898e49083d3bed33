package configurator

import (
	"strconv"

	"go.uber.org/zap"

	"orderconfig/internal/cart"
	"orderconfig/internal/catalog"
)

// Reconcile rebuilds a selection from a compiled cart line so an edit starts
// from the original configuration. References the catalog no longer knows
// are dropped and logged; a selection left empty falls back to the first
// variant and its first sellable size. Without a restaurant drink list the
// line's own drink entries are kept as they were sold. It never fails.
func Reconcile(ctx *SessionContext, line cart.LineItem) State {
	c := line.Customizations
	s := NewState()
	ctx.rememberDrinks(line)
	log := ctx.logger().With(zap.String("session_id", ctx.SessionID), zap.String("line_id", line.ID))
	stale := func(facet, ref string) {
		log.Warn("dropping stale reference", zap.String("facet", facet), zap.String("ref", ref))
	}
	now := ctx.now()

	// variants
	for _, id := range c.SelectedVariants {
		if _, ok := ctx.Catalog.Variant(id); !ok {
			stale("variant", id)
			continue
		}
		if ctx.Kind.SingleSelect() && len(s.SelectedVariants) == 1 {
			stale("variant", id)
			continue
		}
		s.addVariant(id)
	}

	// pricing
	for _, vid := range sortedKeys(c.PricingPerVariant) {
		pid := c.PricingPerVariant[vid]
		row, ok := ctx.Catalog.PricingByID(pid)
		if !ok || !s.IsSelected(vid) || (row.VariantID != "" && row.VariantID != vid) || row.Expired(now) {
			stale("pricing", pid)
			continue
		}
		s.PricingPerVariant[vid] = row
	}

	// quantities
	if ctx.Kind != catalog.KindSpecialPack {
		s.Quantity = max(c.Quantity, line.Quantity, 1)
		for _, id := range s.SelectedVariants {
			if q, ok := c.VariantQuantities[id]; ok && q > 0 {
				s.VariantQuantities[id] = q
				s.Quantity = q
			} else if _, priced := s.PricingPerVariant[id]; priced {
				s.VariantQuantities[id] = s.Quantity
			}
		}
	}

	// supplements
	for _, key := range c.Supplements {
		sup, ok := ctx.Catalog.SupplementByKey(key)
		if !ok {
			sup, ok = supplementByName(ctx, s, key)
		}
		if !ok {
			stale("supplement", key)
			continue
		}
		s.Supplements[sup.Key()] = sup
	}

	// flat ingredient preferences
	for name, raw := range c.IngredientPreferences {
		pref, ok := ParsePreference(raw)
		if !ok || !hasIngredient(ctx.Catalog, name) {
			stale("ingredient", name)
			continue
		}
		if pref != PrefNeutral {
			s.IngredientPreferences[name] = pref
		}
	}
	for _, name := range c.RemovedIngredients {
		if !hasIngredient(ctx.Catalog, name) {
			stale("ingredient", name)
			continue
		}
		s.IngredientPreferences[name] = PrefNone
	}

	if ctx.Kind == catalog.KindSpecialPack {
		reconcilePack(ctx, c, &s, stale)
	}

	// drinks
	for _, d := range c.Drinks {
		if _, ok := ctx.drink(d.ID); !ok || d.Quantity <= 0 {
			stale("drink", d.ID)
			continue
		}
		s.DrinksTouched = true
		if d.IsFree {
			s.FreeDrinks[d.ID] += d.Quantity
			delete(s.PaidDrinks, d.ID)
		} else if _, free := s.FreeDrinks[d.ID]; !free {
			s.PaidDrinks[d.ID] += d.Quantity
		}
	}

	// notes
	s.Note = c.Note
	for id, note := range c.VariantNotes {
		if _, ok := ctx.Catalog.Variant(id); ok {
			s.VariantNotes[id] = note
		}
	}

	bootstrapMissing(ctx, &s)
	s.FreeDrinks = clampFreeDrinks(s.FreeDrinks, RequiredFreeDrinks(ctx, s))

	return s
}

func supplementByName(ctx *SessionContext, s State, name string) (catalog.Supplement, bool) {
	for _, id := range s.SelectedVariants {
		if sup, ok := ctx.Catalog.SupplementByName(name, id); ok {
			return sup, true
		}
	}
	return ctx.Catalog.SupplementByName(name, "")
}

func reconcilePack(ctx *SessionContext, c cart.Customizations, s *State, stale func(string, string)) {
	slotOf := func(variantID, raw string) (catalog.PackSlots, int, bool) {
		layout := ctx.slots(variantID)
		slot, err := strconv.Atoi(raw)
		if err != nil || slot < 0 || slot >= layout.RepeatCount {
			return layout, 0, false
		}
		return layout, slot, true
	}

	for vid, bySlot := range c.PackItemSelections {
		if _, ok := ctx.Catalog.Variant(vid); !ok {
			stale("pack_variant", vid)
			continue
		}
		for raw, option := range bySlot {
			layout, slot, ok := slotOf(vid, raw)
			if !ok || !layout.HasOption(option) {
				stale("pack_option", vid+"/"+raw+"/"+option)
				continue
			}
			s.Slots[SlotKey{VariantID: vid, Slot: slot, Facet: FacetOption}] = option
		}
	}

	for name, bySlot := range c.PackIngredientPreferences {
		v, ok := ctx.Catalog.VariantByName(name)
		if !ok {
			stale("pack_variant", name)
			continue
		}
		for raw, prefs := range bySlot {
			layout, slot, ok := slotOf(v.ID, raw)
			if !ok {
				stale("pack_slot", name+"/"+raw)
				continue
			}
			for ingredient, rawPref := range prefs {
				pref, ok := ParsePreference(rawPref)
				if !ok || !layout.HasIngredient(ingredient) {
					stale("pack_ingredient", ingredient)
					continue
				}
				if pref != PrefNeutral {
					s.Slots[SlotKey{VariantID: v.ID, Slot: slot, Facet: FacetIngredient, Name: ingredient}] = pref.String()
				}
			}
		}
	}

	for vid, bySlot := range c.PackSupplementSelections {
		if _, ok := ctx.Catalog.Variant(vid); !ok {
			stale("pack_variant", vid)
			continue
		}
		for raw, names := range bySlot {
			layout, slot, ok := slotOf(vid, raw)
			if !ok {
				stale("pack_slot", vid+"/"+raw)
				continue
			}
			for _, name := range names {
				if !layout.Offers(name) {
					stale("pack_supplement", name)
					continue
				}
				s.Slots[SlotKey{VariantID: vid, Slot: slot, Facet: FacetSupplement, Name: name}] = "1"
			}
		}
	}

	for _, id := range s.SelectedVariants {
		if _, ok := s.PricingPerVariant[id]; ok {
			s.VariantQuantities[id] = 1
		}
	}
}

// bootstrapMissing applies the default selection where stale references left
// gaps: the first variant when nothing survived, and the first sellable size
// for variants that need one.
func bootstrapMissing(ctx *SessionContext, s *State) {
	now := ctx.now()

	if len(s.SelectedVariants) == 0 && len(ctx.Catalog.Variants) > 0 {
		first := ctx.Catalog.Variants[0].ID
		ctx.logger().Warn("edit bootstrap: no surviving variant, selecting first",
			zap.String("session_id", ctx.SessionID),
			zap.String("variant_id", first),
		)
		s.addVariant(first)
	}

	if !ctx.Kind.SizeRequired() {
		return
	}
	for _, id := range s.SelectedVariants {
		if _, ok := s.PricingPerVariant[id]; ok {
			continue
		}
		if p, ok := ctx.Catalog.FirstPricing(id, now); ok {
			s.PricingPerVariant[id] = p
			if _, tracked := s.VariantQuantities[id]; !tracked {
				if ctx.Kind == catalog.KindSpecialPack {
					s.VariantQuantities[id] = 1
				} else {
					s.VariantQuantities[id] = s.Quantity
				}
			}
		}
	}
}
