package cart

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orderconfig/internal/db"
)

func TestPostgresStore_SameInstantKeepsInsertOrder(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := db.ConnectPostgres(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	defer pool.Close()

	c := NewPostgresStore(pool).ForCustomer("cust-" + uuid.NewString())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// ids sort opposite to insertion order
	var add []LineItem
	for _, id := range []string{"z-" + uuid.NewString(), "m-" + uuid.NewString(), "a-" + uuid.NewString()} {
		add = append(add, LineItem{
			ID:         id,
			ItemID:     "burger",
			Quantity:   1,
			UnitPrice:  decimal.NewFromInt(10),
			TotalPrice: decimal.NewFromInt(10),
			CreatedAt:  at,
		})
	}
	require.NoError(t, c.Replace(ctx, nil, add))

	items, err := c.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i := range add {
		assert.Equal(t, add[i].ID, items[i].ID)
	}

	assert.ErrorIs(t, c.Replace(ctx, []string{"missing"}, add[:1]), ErrLineNotFound)
	items, err = c.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3, "a failed replace writes nothing")
}
