package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnectPostgres_MissingDSN(t *testing.T) {
	_, err := ConnectPostgres(context.Background(), "", zap.NewNop())
	assert.Error(t, err)
}

func TestConnectPostgres_BadDSN(t *testing.T) {
	_, err := ConnectPostgres(context.Background(), "postgres://%zz", zap.NewNop())
	assert.Error(t, err)
}

func TestConnectPostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := ConnectPostgres(context.Background(), dsn, zap.NewNop())
	require.NoError(t, err)
	defer pool.Close()

	// schema bootstrap is idempotent
	require.NoError(t, InitSchema(context.Background(), pool))
}
