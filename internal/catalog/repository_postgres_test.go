package catalog

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orderconfig/internal/db"
)

func TestPostgresRepository_SeedAndFetch(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := db.ConnectPostgres(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	defer pool.Close()

	f, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)

	// unique ids so reruns do not collide
	suffix := "-" + uuid.NewString()
	r := &f.Restaurants[0]
	r.ID += suffix
	for i := range r.Drinks {
		r.Drinks[i].ID += suffix
	}
	m := &r.Items[0]
	m.ItemID += suffix
	m.RestaurantID = r.ID
	for i := range m.Variants {
		m.Variants[i].ID += suffix
	}
	for i := range m.Pricing {
		m.Pricing[i].ID += suffix
		m.Pricing[i].VariantID += suffix
	}
	for i := range m.Deals {
		m.Deals[i].ID += suffix
	}

	repo := NewPostgresRepository(pool)
	_, _, err = Seed(ctx, repo, f)
	require.NoError(t, err)

	got, err := repo.FetchEnhancedItem(ctx, m.ItemID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.RestaurantID)
	assert.Equal(t, []string{"Onion", "Tomato"}, got.Ingredients)
	require.Len(t, got.Variants, 1)
	require.Len(t, got.Pricing, 1)
	assert.True(t, got.Pricing[0].Price.Equal(m.Pricing[0].Price))
	assert.Equal(t, 1, got.Pricing[0].Entitlement())
	require.Len(t, got.Supplements, 1)
	assert.Equal(t, "Cheese", got.Supplements[0].Name)
	require.Len(t, got.Deals, 1)

	drinks, err := repo.FetchDrinks(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, drinks, 2)

	_, err = repo.FetchEnhancedItem(ctx, "missing"+suffix)
	assert.ErrorIs(t, err, ErrItemNotFound)
}
