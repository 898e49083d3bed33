package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricing_ExpiredAndEntitlement(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ended := now.Add(-time.Minute)
	later := now.Add(time.Hour)

	assert.False(t, Pricing{}.Expired(now))
	assert.True(t, Pricing{OfferEndAt: &ended}.Expired(now))
	assert.True(t, Pricing{OfferEndAt: &now}.Expired(now))
	assert.False(t, Pricing{OfferEndAt: &later}.Expired(now))

	assert.Equal(t, 0, Pricing{FreeDrinksQuantity: 2}.Entitlement(), "quantity without the flag grants nothing")
	assert.Equal(t, 2, Pricing{FreeDrinksIncluded: true, FreeDrinksQuantity: 2}.Entitlement())
}

func TestModel_DefaultPricing(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ended := now.Add(-time.Minute)

	m := &Model{
		Pricing: []Pricing{
			{ID: "old", VariantID: "V1", IsDefault: true, OfferEndAt: &ended},
			{ID: "a", VariantID: "V1"},
			{ID: "b", VariantID: "V1"},
			{ID: "only", VariantID: "V2"},
			{ID: "global", IsDefault: true},
		},
	}

	p, ok := m.DefaultPricing("V1", now)
	require.True(t, ok)
	assert.Equal(t, "global", p.ID, "expired default skipped, global default next")

	p, ok = m.DefaultPricing("V2", now)
	require.True(t, ok)
	assert.Equal(t, "global", p.ID)

	m.Pricing = m.Pricing[:4]
	_, ok = m.DefaultPricing("V1", now)
	assert.False(t, ok, "two live rows and no default is ambiguous")

	p, ok = m.FirstPricing("V1", now)
	require.True(t, ok)
	assert.Equal(t, "a", p.ID)

	p, ok = m.DefaultPricing("V2", now)
	require.True(t, ok)
	assert.Equal(t, "only", p.ID)
}

func TestModel_Supplements(t *testing.T) {
	m := &Model{Supplements: []Supplement{
		{ID: "S1", Name: "Cheese", Price: decimal.NewFromInt(1)},
		{Name: "Bacon", VariantID: "V2", Price: decimal.NewFromInt(2)},
	}}

	_, ok := m.SupplementByKey("S1")
	assert.True(t, ok)
	s, ok := m.SupplementByKey("Bacon@V2")
	require.True(t, ok)
	assert.Equal(t, "Bacon", s.Name)

	_, ok = m.SupplementByName("Bacon", "V1")
	assert.False(t, ok)
	_, ok = m.SupplementByName("Cheese", "V1")
	assert.True(t, ok)
}

func TestDeal_AppliesTo(t *testing.T) {
	assert.True(t, Deal{Status: DealApproved}.AppliesTo("V1"))
	assert.True(t, Deal{Status: DealApproved, VariantID: "V1"}.AppliesTo("V1"))
	assert.False(t, Deal{Status: DealApproved, VariantID: "V1"}.AppliesTo("V2"))
	assert.False(t, Deal{Status: "PENDING"}.AppliesTo("V1"))
}

func TestInMemoryRepository(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.PutItem(&Model{ItemID: "burger", RestaurantID: "r1"})
	repo.PutDrinks("r1", []Drink{{ID: "D1"}})

	m, err := repo.FetchEnhancedItem(context.Background(), "burger")
	require.NoError(t, err)
	assert.Equal(t, "r1", m.RestaurantID)

	_, err = repo.FetchEnhancedItem(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)

	drinks, err := repo.FetchDrinks(context.Background(), "r1")
	require.NoError(t, err)
	assert.Len(t, drinks, 1)
}
