package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntrospection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)

	ctx := context.Background()

	t.Run("ping succeeds on a live database", func(t *testing.T) {
		require.NoError(t, tdb.Ping(ctx))
	})

	t.Run("server version is reported", func(t *testing.T) {
		version, err := tdb.ServerVersion(ctx)
		require.NoError(t, err)
		assert.Contains(t, version, "PostgreSQL")
	})

	t.Run("timescale extension and hypertables are visible", func(t *testing.T) {
		installed, hypertables, err := tdb.TimescaleStatus(ctx)
		require.NoError(t, err)
		assert.True(t, installed)
		assert.Equal(t, 5, hypertables)
	})

	t.Run("table row counts cover the core tables", func(t *testing.T) {
		counts, err := tdb.TableRowCounts(ctx)
		require.NoError(t, err)
		assert.Contains(t, counts, "positions")
		assert.Contains(t, counts, "risk_alerts")
		assert.GreaterOrEqual(t, counts["assets"], int64(1), "seeded assets")
	})
}
