package configurator

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderconfig/internal/catalog"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %s, got %s", want, got.String())
}

func testDrinks() []catalog.Drink {
	return []catalog.Drink{
		{ID: "D1", Name: "Cola", Size: "33cl", Price: money("2.50")},
		{ID: "D2", Name: "Water", Size: "50cl", Price: money("1.00")},
		{ID: "D3", Name: "Juice", Size: "25cl", Price: money("3.00")},
	}
}

// burgerModel is a regular item: two variants, sized pricing, one row with a
// free drink choice between D1 and D2.
func burgerModel() *catalog.Model {
	return &catalog.Model{
		ItemID:       "burger",
		RestaurantID: "r1",
		Name:         "Burger",
		Variants: []catalog.Variant{
			{ID: "V1", Name: "Classic"},
			{ID: "V2", Name: "Double"},
		},
		Pricing: []catalog.Pricing{
			{ID: "P1", VariantID: "V1", Size: "M", Price: money("10.00"), IsDefault: true,
				FreeDrinksIncluded: true, FreeDrinksQuantity: 1, FreeDrinksList: []string{"D1", "D2"}},
			{ID: "P2", VariantID: "V1", Size: "L", Price: money("12.00")},
			{ID: "P3", VariantID: "V2", Size: "M", Price: money("14.00"), IsDefault: true},
		},
		Supplements: []catalog.Supplement{
			{ID: "S1", Name: "Cheese", Price: money("1.50")},
			{ID: "S2", Name: "Bacon", Price: money("2.00"), VariantID: "V2"},
		},
		Ingredients: []string{"Onion", "Tomato"},
	}
}

// ltoModel is a limited offer with an item-global default row granting two
// drinks restricted to D1, plus an expired row.
func ltoModel() *catalog.Model {
	ended := testNow.Add(-time.Hour)
	return &catalog.Model{
		ItemID:         "lto",
		RestaurantID:   "r1",
		Name:           "Summer Bowl",
		IsLimitedOffer: true,
		Variants:       []catalog.Variant{{ID: "V1", Name: "Bowl"}},
		Pricing: []catalog.Pricing{
			{ID: "G1", Size: "Regular", Price: money("9.00"), IsDefault: true,
				FreeDrinksIncluded: true, FreeDrinksQuantity: 2, FreeDrinksList: []string{"D1"}},
			{ID: "G2", Size: "Launch", Price: money("7.00"), OfferEndAt: &ended},
		},
	}
}

// packModel is a special pack: a two-slot wrap with a choice of option and a
// single-option side.
func packModel() *catalog.Model {
	return &catalog.Model{
		ItemID:       "pack",
		RestaurantID: "r1",
		Name:         "Duo Pack",
		Variants: []catalog.Variant{
			{ID: "V1", Name: "Wrap", Description: "qty:2|options:Regular,Spicy|ingredients:Onion,Tomato|supplements:Cheese=1.00,Sauce=0.50|hidden:Sauce"},
			{ID: "V2", Name: "Fries", Description: "qty:1|options:Salted"},
		},
		Pricing: []catalog.Pricing{
			{ID: "PW", VariantID: "V1", Size: "Pack", Price: money("20.00"), IsDefault: true,
				FreeDrinksIncluded: true, FreeDrinksQuantity: 1, FreeDrinksList: []string{"D1"}},
			{ID: "PF", VariantID: "V2", Size: "Side", Price: money("3.00"), IsDefault: true},
		},
	}
}

func newTestContext(m *catalog.Model, drinks []catalog.Drink) *SessionContext {
	ctx := NewSessionContext("sess-1", m, drinks)
	ctx.Now = func() time.Time { return testNow }
	n := 0
	ctx.NewID = func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
	return ctx
}

// apply runs actions in order and fails the test on the first error.
func apply(t *testing.T, c *Configurator, actions ...Action) {
	t.Helper()
	for _, a := range actions {
		require.NoError(t, c.Apply(a), "%T %+v", a, a)
	}
}
