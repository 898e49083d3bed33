package configurator

import (
	"fmt"
	"strings"

	"orderconfig/internal/catalog"
)

// Action is one named customer interaction.
type Action interface {
	apply(ctx *SessionContext, s *State) error
}

// Reduce applies an action to a copy of s and returns the next state. On
// error the input state is returned unchanged.
func Reduce(ctx *SessionContext, s State, a Action) (State, error) {
	next := s.Clone()
	if err := a.apply(ctx, &next); err != nil {
		return s, err
	}
	settleFreeDrinks(ctx, &next)
	return next, nil
}

// settleFreeDrinks keeps free picks within the entitlement and refreshes the
// automatic assignment.
func settleFreeDrinks(ctx *SessionContext, s *State) {
	s.FreeDrinks = clampFreeDrinks(s.FreeDrinks, RequiredFreeDrinks(ctx, *s))
	autoAssignFreeDrinks(ctx, s)
}

// --------------------------------------------------
// VARIANTS & PRICING
// --------------------------------------------------

// SelectVariant toggles a variant. Regular and limited-offer items are hard
// single-select; packs keep their other components.
type SelectVariant struct {
	VariantID string `json:"variant_id"`
}

func (a SelectVariant) apply(ctx *SessionContext, s *State) error {
	if _, ok := ctx.Catalog.Variant(a.VariantID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, a.VariantID)
	}

	if s.IsSelected(a.VariantID) {
		s.dropVariant(a.VariantID)
		return nil
	}

	if ctx.Kind.SingleSelect() {
		s.clearVariants()
		s.addVariant(a.VariantID)
		return nil
	}

	engagePackVariant(ctx, s, a.VariantID)
	return nil
}

// engagePackVariant adds a pack component and seeds its pricing when the
// catalog leaves no real choice.
func engagePackVariant(ctx *SessionContext, s *State, variantID string) {
	s.addVariant(variantID)
	if _, ok := s.PricingPerVariant[variantID]; ok {
		return
	}
	if p, ok := ctx.Catalog.DefaultPricing(variantID, ctx.now()); ok {
		s.PricingPerVariant[variantID] = p
		if _, tracked := s.VariantQuantities[variantID]; !tracked {
			s.VariantQuantities[variantID] = 1
		}
	}
}

// SelectPricing picks a size for a variant; picking the current size again
// clears it. Picking a size implies wanting the variant.
type SelectPricing struct {
	VariantID string `json:"variant_id"`
	PricingID string `json:"pricing_id"`
}

func (a SelectPricing) apply(ctx *SessionContext, s *State) error {
	if _, ok := ctx.Catalog.Variant(a.VariantID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, a.VariantID)
	}
	row, ok := ctx.Catalog.PricingByID(a.PricingID)
	if !ok || (row.VariantID != "" && row.VariantID != a.VariantID) {
		return fmt.Errorf("%w: %s", ErrUnknownPricing, a.PricingID)
	}

	if cur, ok := s.PricingPerVariant[a.VariantID]; ok && cur.ID == row.ID {
		delete(s.PricingPerVariant, a.VariantID)
		return nil
	}

	if row.Expired(ctx.now()) {
		return fmt.Errorf("%w: %s", ErrOfferExpired, row.Size)
	}

	if !s.IsSelected(a.VariantID) {
		if ctx.Kind.SingleSelect() {
			s.clearVariants()
		}
		s.addVariant(a.VariantID)
	}
	s.PricingPerVariant[a.VariantID] = row

	if _, tracked := s.VariantQuantities[a.VariantID]; !tracked {
		seed := 1
		if ctx.Kind.SingleSelect() && s.Quantity > 1 {
			seed = s.Quantity
		}
		s.VariantQuantities[a.VariantID] = seed
	}
	return nil
}

// --------------------------------------------------
// SUPPLEMENTS & INGREDIENTS
// --------------------------------------------------

// ToggleSupplement adds or removes an item supplement by Supplement.Key.
type ToggleSupplement struct {
	Key string `json:"key"`
}

func (a ToggleSupplement) apply(ctx *SessionContext, s *State) error {
	sup, ok := ctx.Catalog.SupplementByKey(a.Key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSupplement, a.Key)
	}
	if _, chosen := s.Supplements[sup.Key()]; chosen {
		delete(s.Supplements, sup.Key())
		return nil
	}
	s.Supplements[sup.Key()] = sup
	return nil
}

// CycleIngredient moves a flat ingredient preference one step round the ring.
type CycleIngredient struct {
	Name string `json:"name"`
}

func (a CycleIngredient) apply(ctx *SessionContext, s *State) error {
	if !hasIngredient(ctx.Catalog, a.Name) {
		return fmt.Errorf("%w: %s", ErrUnknownIngredient, a.Name)
	}
	next := s.IngredientPreferences[a.Name].Next()
	if next == PrefNeutral {
		delete(s.IngredientPreferences, a.Name)
		return nil
	}
	s.IngredientPreferences[a.Name] = next
	return nil
}

func hasIngredient(m *catalog.Model, name string) bool {
	for _, i := range m.Ingredients {
		if i == name {
			return true
		}
	}
	return false
}

// --------------------------------------------------
// PACK SLOTS
// --------------------------------------------------

func checkSlot(ctx *SessionContext, variantID string, slot int) (catalog.PackSlots, error) {
	if ctx.Kind != catalog.KindSpecialPack {
		return catalog.PackSlots{}, ErrNotPack
	}
	if _, ok := ctx.Catalog.Variant(variantID); !ok {
		return catalog.PackSlots{}, fmt.Errorf("%w: %s", ErrUnknownVariant, variantID)
	}
	layout := ctx.slots(variantID)
	if slot < 0 || slot >= layout.RepeatCount {
		return catalog.PackSlots{}, fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	return layout, nil
}

// SelectPackOption sets the option of one slot; choosing the current option
// again clears it. Other slots are never touched.
type SelectPackOption struct {
	VariantID string `json:"variant_id"`
	Slot      int    `json:"slot"`
	Option    string `json:"option"`
}

func (a SelectPackOption) apply(ctx *SessionContext, s *State) error {
	layout, err := checkSlot(ctx, a.VariantID, a.Slot)
	if err != nil {
		return err
	}
	if !layout.HasOption(a.Option) {
		return fmt.Errorf("%w: %s", ErrUnknownOption, a.Option)
	}

	key := SlotKey{VariantID: a.VariantID, Slot: a.Slot, Facet: FacetOption}
	if s.Slots[key] == a.Option {
		delete(s.Slots, key)
		return nil
	}
	s.Slots[key] = a.Option
	engagePackVariant(ctx, s, a.VariantID)
	return nil
}

// CyclePackIngredient cycles an ingredient preference for a single slot.
type CyclePackIngredient struct {
	VariantID string `json:"variant_id"`
	Slot      int    `json:"slot"`
	Name      string `json:"name"`
}

func (a CyclePackIngredient) apply(ctx *SessionContext, s *State) error {
	layout, err := checkSlot(ctx, a.VariantID, a.Slot)
	if err != nil {
		return err
	}
	if !layout.HasIngredient(a.Name) {
		return fmt.Errorf("%w: %s", ErrUnknownIngredient, a.Name)
	}

	key := SlotKey{VariantID: a.VariantID, Slot: a.Slot, Facet: FacetIngredient, Name: a.Name}
	next := s.PackIngredient(a.VariantID, a.Slot, a.Name).Next()
	if next == PrefNeutral {
		delete(s.Slots, key)
		return nil
	}
	s.Slots[key] = next.String()
	return nil
}

// TogglePackSupplement adds or removes a supplement on one slot.
type TogglePackSupplement struct {
	VariantID string `json:"variant_id"`
	Slot      int    `json:"slot"`
	Name      string `json:"name"`
}

func (a TogglePackSupplement) apply(ctx *SessionContext, s *State) error {
	layout, err := checkSlot(ctx, a.VariantID, a.Slot)
	if err != nil {
		return err
	}
	if !layout.Offers(a.Name) {
		return fmt.Errorf("%w: %s", ErrUnknownSupplement, a.Name)
	}

	key := SlotKey{VariantID: a.VariantID, Slot: a.Slot, Facet: FacetSupplement, Name: a.Name}
	if _, ok := s.Slots[key]; ok {
		delete(s.Slots, key)
		return nil
	}
	s.Slots[key] = "1"
	return nil
}

// --------------------------------------------------
// QUANTITY, DRINKS, NOTES
// --------------------------------------------------

// SetQuantity sets the overall multiplier of a regular or limited-offer item
// and rescales free drink picks proportionally.
type SetQuantity struct {
	Quantity int `json:"quantity"`
}

func (a SetQuantity) apply(ctx *SessionContext, s *State) error {
	if ctx.Kind == catalog.KindSpecialPack {
		return ErrPackQuantity
	}
	if a.Quantity < 1 {
		return ErrInvalidQuantity
	}

	oldTotal := s.EffectiveQuantity()

	s.Quantity = a.Quantity
	for _, id := range s.SelectedVariants {
		s.VariantQuantities[id] = a.Quantity
	}

	newTotal := s.EffectiveQuantity()
	if len(s.FreeDrinks) > 0 && newTotal != oldTotal {
		s.FreeDrinks = rescaleFreeDrinks(s.FreeDrinks, oldTotal, newTotal, RequiredFreeDrinks(ctx, *s))
	}
	return nil
}

// SetFreeDrink sets how many units of a complimentary drink are picked.
type SetFreeDrink struct {
	DrinkID  string `json:"drink_id"`
	Quantity int    `json:"quantity"`
}

func (a SetFreeDrink) apply(ctx *SessionContext, s *State) error {
	if a.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if _, ok := ctx.drink(a.DrinkID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDrink, a.DrinkID)
	}
	if a.Quantity > 0 && !isEligible(ctx, *s, a.DrinkID) {
		return fmt.Errorf("%w: %s", ErrDrinkNotEligible, a.DrinkID)
	}

	total := s.AssignedFreeDrinks() - s.FreeDrinks[a.DrinkID] + a.Quantity
	if total > RequiredFreeDrinks(ctx, *s) {
		return ErrFreeDrinkLimit
	}

	s.DrinksTouched = true
	delete(s.PaidDrinks, a.DrinkID)
	if a.Quantity == 0 {
		delete(s.FreeDrinks, a.DrinkID)
		return nil
	}
	s.FreeDrinks[a.DrinkID] = a.Quantity
	return nil
}

// SetPaidDrink sets how many units of a drink are bought alongside the item.
type SetPaidDrink struct {
	DrinkID  string `json:"drink_id"`
	Quantity int    `json:"quantity"`
}

func (a SetPaidDrink) apply(ctx *SessionContext, s *State) error {
	if a.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if _, ok := ctx.drink(a.DrinkID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDrink, a.DrinkID)
	}

	s.DrinksTouched = true
	delete(s.FreeDrinks, a.DrinkID)
	if a.Quantity == 0 {
		delete(s.PaidDrinks, a.DrinkID)
		return nil
	}
	s.PaidDrinks[a.DrinkID] = a.Quantity
	return nil
}

type SetNote struct {
	Text string `json:"text"`
}

func (a SetNote) apply(ctx *SessionContext, s *State) error {
	s.Note = strings.TrimSpace(a.Text)
	return nil
}

type SetVariantNote struct {
	VariantID string `json:"variant_id"`
	Text      string `json:"text"`
}

func (a SetVariantNote) apply(ctx *SessionContext, s *State) error {
	if _, ok := ctx.Catalog.Variant(a.VariantID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, a.VariantID)
	}
	text := strings.TrimSpace(a.Text)
	if text == "" {
		delete(s.VariantNotes, a.VariantID)
		return nil
	}
	s.VariantNotes[a.VariantID] = text
	return nil
}
