package configurator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"orderconfig/internal/cart"
)

func TestReconcile_RoundTripRegular(t *testing.T) {
	ctx := newTestContext(burgerModel(), testDrinks())
	c := New(ctx)
	apply(t, c,
		SelectPricing{VariantID: "V1", PricingID: "P2"},
		ToggleSupplement{Key: "S1"},
		CycleIngredient{Name: "Onion"}, CycleIngredient{Name: "Onion"}, CycleIngredient{Name: "Onion"},
		CycleIngredient{Name: "Tomato"},
		SetQuantity{Quantity: 2},
		SetPaidDrink{DrinkID: "D3", Quantity: 1},
		SetNote{Text: "well done"},
	)
	want := c.State()

	lines, fail := c.Confirm()
	require.Nil(t, fail)
	require.Len(t, lines, 1)

	got := Reconcile(ctx, lines[0])

	assert.Equal(t, want.SelectedVariants, got.SelectedVariants)
	assert.Equal(t, want.PricingPerVariant["V1"].ID, got.PricingPerVariant["V1"].ID)
	assert.Equal(t, sortedKeys(want.Supplements), sortedKeys(got.Supplements))
	assert.Equal(t, want.IngredientPreferences, got.IngredientPreferences)
	assert.Equal(t, want.PaidDrinks, got.PaidDrinks)
	assert.Equal(t, want.FreeDrinks, got.FreeDrinks)
	assert.Equal(t, want.Quantity, got.Quantity)
	assert.Equal(t, want.VariantQuantities, got.VariantQuantities)
	assert.Equal(t, want.Note, got.Note)
}

func TestReconcile_RoundTripPack(t *testing.T) {
	ctx := newTestContext(packModel(), testDrinks())
	c := New(ctx)
	apply(t, c,
		SelectPackOption{VariantID: "V1", Slot: 0, Option: "Regular"},
		SelectPackOption{VariantID: "V1", Slot: 1, Option: "Spicy"},
		CyclePackIngredient{VariantID: "V1", Slot: 1, Name: "Onion"},
		TogglePackSupplement{VariantID: "V1", Slot: 0, Name: "Cheese"},
		SelectVariant{VariantID: "V2"},
	)
	want := c.State()

	lines, fail := c.Confirm()
	require.Nil(t, fail)
	require.Len(t, lines, 1)

	got := Reconcile(ctx, lines[0])

	assert.Equal(t, want.SelectedVariants, got.SelectedVariants)
	assert.Equal(t, want.Slots, got.Slots)
	assert.Equal(t, want.FreeDrinks, got.FreeDrinks)
	assert.Equal(t, want.VariantQuantities, got.VariantQuantities)
	for _, id := range want.SelectedVariants {
		assert.Equal(t, want.PricingPerVariant[id].ID, got.PricingPerVariant[id].ID)
	}
}

func TestReconcile_DropsStaleReferences(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := newTestContext(burgerModel(), testDrinks())
	ctx.Logger = zap.New(core)

	line := cart.LineItem{
		ID:       "old",
		ItemID:   "burger",
		Quantity: 1,
		Customizations: cart.Customizations{
			SelectedVariants:  []string{"GONE", "V1"},
			PricingPerVariant: map[string]string{"V1": "PX"},
			Supplements:       []string{"nope", "Cheese"},
			Drinks:            []cart.Drink{{ID: "D9", Quantity: 1}},
			Quantity:          1,
		},
	}

	s := Reconcile(ctx, line)

	assert.Equal(t, []string{"V1"}, s.SelectedVariants)
	assert.Equal(t, "P1", s.PricingPerVariant["V1"].ID, "missing size falls back to the default row")
	assert.Equal(t, []string{"S1"}, sortedKeys(s.Supplements), "id-less supplement resolved by name")
	assert.Empty(t, s.PaidDrinks)
	assert.Empty(t, s.FreeDrinks)

	stale := logs.FilterMessage("dropping stale reference").All()
	require.Len(t, stale, 4)
	var refs []string
	for _, e := range stale {
		refs = append(refs, e.ContextMap()["ref"].(string))
	}
	assert.ElementsMatch(t, []string{"GONE", "PX", "nope", "D9"}, refs)
}

func TestReconcile_NoSurvivingVariantSelectsFirst(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := newTestContext(burgerModel(), testDrinks())
	ctx.Logger = zap.New(core)

	s := Reconcile(ctx, cart.LineItem{Customizations: cart.Customizations{SelectedVariants: []string{"GONE"}}})

	assert.Equal(t, []string{"V1"}, s.SelectedVariants)
	assert.Equal(t, "P1", s.PricingPerVariant["V1"].ID)
	assert.Equal(t, 1, logs.FilterMessage("edit bootstrap: no surviving variant, selecting first").Len())
}

func TestReconcile_EnforcesSingleSelect(t *testing.T) {
	ctx := newTestContext(burgerModel(), testDrinks())

	s := Reconcile(ctx, cart.LineItem{Customizations: cart.Customizations{
		SelectedVariants:  []string{"V2", "V1"},
		PricingPerVariant: map[string]string{"V2": "P3", "V1": "P2"},
	}})

	assert.Equal(t, []string{"V2"}, s.SelectedVariants)
	assert.NotContains(t, s.PricingPerVariant, "V1")
}

func TestReconcile_ExpiredOfferDropped(t *testing.T) {
	ctx := newTestContext(ltoModel(), testDrinks())

	s := Reconcile(ctx, cart.LineItem{Customizations: cart.Customizations{
		SelectedVariants:  []string{"V1"},
		PricingPerVariant: map[string]string{"V1": "G2"},
	}})

	assert.Equal(t, []string{"V1"}, s.SelectedVariants)
	assert.Empty(t, s.PricingPerVariant, "limited offers may stay without a size")
}

func TestReconcile_FreeDrinksClampedToEntitlement(t *testing.T) {
	ctx := newTestContext(burgerModel(), testDrinks())

	s := Reconcile(ctx, cart.LineItem{Quantity: 1, Customizations: cart.Customizations{
		SelectedVariants:  []string{"V1"},
		PricingPerVariant: map[string]string{"V1": "P1"},
		Drinks:            []cart.Drink{{ID: "D1", IsFree: true, Quantity: 3}},
		Quantity:          1,
	}})

	assert.Equal(t, map[string]int{"D1": 1}, s.FreeDrinks)
	assert.True(t, s.DrinksTouched)
}

func TestReconcile_KeepsLineDrinksWithoutDrinkList(t *testing.T) {
	c := New(newTestContext(burgerModel(), testDrinks()))
	apply(t, c,
		SelectPricing{VariantID: "V1", PricingID: "P1"},
		SetPaidDrink{DrinkID: "D3", Quantity: 2},
		SetFreeDrink{DrinkID: "D1", Quantity: 1},
	)
	lines, fail := c.Confirm()
	require.Nil(t, fail)
	original := lines[0]
	assertMoney(t, "16.00", original.TotalPrice)

	// the drink fetch failed for the edit session
	ctx := newTestContext(burgerModel(), nil)
	s := Reconcile(ctx, original)

	assert.Equal(t, map[string]int{"D3": 2}, s.PaidDrinks)
	assert.Equal(t, map[string]int{"D1": 1}, s.FreeDrinks)

	recompiled := Compile(ctx, s, "g1")
	require.Len(t, recompiled, 1)
	assert.Equal(t, original.Customizations.Drinks, recompiled[0].Customizations.Drinks)
	assertMoney(t, "16.00", recompiled[0].TotalPrice)
}

func TestReconcile_DrinkListWinsOverStoredEntries(t *testing.T) {
	ctx := newTestContext(burgerModel(), testDrinks())

	s := Reconcile(ctx, cart.LineItem{Quantity: 1, Customizations: cart.Customizations{
		SelectedVariants:  []string{"V1"},
		PricingPerVariant: map[string]string{"V1": "P1"},
		Drinks:            []cart.Drink{{ID: "GONE", Price: money("4.00"), Quantity: 1}},
		Quantity:          1,
	}})

	assert.Empty(t, s.PaidDrinks, "a drink the restaurant no longer lists is stale")
}
