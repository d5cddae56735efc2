package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

func TestApplyPriceTick(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)

	t.Run("recomputes pnl for every open position of the asset", func(t *testing.T) {
		tdb.TruncateAll(t)
		_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(10000))
		btc := tdb.SeedAsset(t, "BTC")

		pos := &models.Position{
			PortfolioID:  portfolio.ID,
			AssetID:      btc.ID,
			Quantity:     decimal.NewFromInt(2),
			AvgBuyPrice:  decimal.NewFromInt(100),
			CurrentPrice: decimal.NewFromInt(100),
		}
		require.NoError(t, tdb.CreatePosition(pos))

		updated, err := tdb.ApplyPriceTick(btc.ID, decimal.NewFromInt(120), time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated)

		got, err := tdb.GetPositionByID(pos.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(120).Equal(got.CurrentPrice))
		assert.True(t, decimal.NewFromInt(40).Equal(got.UnrealizedPnl), "pnl = (120-100)*2")
	})

	t.Run("records the tick in the price series", func(t *testing.T) {
		tdb.TruncateAll(t)
		eth := tdb.SeedAsset(t, "ETH")

		_, err := tdb.ApplyPriceTick(eth.ID, decimal.NewFromInt(2500), time.Now())
		require.NoError(t, err)

		latest, err := tdb.GetLatestPrice(eth.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(2500).Equal(latest.Price))
	})

	t.Run("touches no positions of other assets", func(t *testing.T) {
		tdb.TruncateAll(t)
		_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(10000))
		btc := tdb.SeedAsset(t, "BTC")
		eth := tdb.SeedAsset(t, "ETH")

		pos := &models.Position{
			PortfolioID:  portfolio.ID,
			AssetID:      btc.ID,
			Quantity:     decimal.NewFromInt(1),
			AvgBuyPrice:  decimal.NewFromInt(100),
			CurrentPrice: decimal.NewFromInt(100),
		}
		require.NoError(t, tdb.CreatePosition(pos))

		updated, err := tdb.ApplyPriceTick(eth.ID, decimal.NewFromInt(2500), time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(0), updated)

		got, err := tdb.GetPositionByID(pos.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(100).Equal(got.CurrentPrice))
	})

	t.Run("idempotent for a redelivered tick", func(t *testing.T) {
		tdb.TruncateAll(t)
		_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(10000))
		btc := tdb.SeedAsset(t, "BTC")

		pos := &models.Position{
			PortfolioID:  portfolio.ID,
			AssetID:      btc.ID,
			Quantity:     decimal.NewFromInt(3),
			AvgBuyPrice:  decimal.NewFromInt(50),
			CurrentPrice: decimal.NewFromInt(50),
		}
		require.NoError(t, tdb.CreatePosition(pos))

		ts := time.Now()
		_, err := tdb.ApplyPriceTick(btc.ID, decimal.NewFromInt(60), ts)
		require.NoError(t, err)
		_, err = tdb.ApplyPriceTick(btc.ID, decimal.NewFromInt(60), ts)
		require.NoError(t, err)

		got, err := tdb.GetPositionByID(pos.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(30).Equal(got.UnrealizedPnl))
	})
}

func TestApplyOrderFill(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)

	t.Run("a buy fill without a position opens one", func(t *testing.T) {
		tdb.TruncateAll(t)
		_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))
		btc := tdb.SeedAsset(t, "BTC")

		order := &models.Order{
			PortfolioID: portfolio.ID,
			AssetID:     btc.ID,
			Side:        models.OrderSideBuy,
			Quantity:    decimal.NewFromInt(2),
		}
		require.NoError(t, tdb.CreateOrder(order))

		portfolioID, err := tdb.ApplyOrderFill(order.ID, decimal.NewFromInt(100), decimal.NewFromInt(1), time.Now())
		require.NoError(t, err)
		assert.Equal(t, portfolio.ID, portfolioID)

		positions, err := tdb.GetOpenPositionsByPortfolio(portfolio.ID)
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.True(t, decimal.NewFromInt(2).Equal(positions[0].Quantity))
		assert.True(t, decimal.NewFromInt(100).Equal(positions[0].AvgBuyPrice))

		got, err := tdb.GetOrderByID(order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusExecuted, got.Status)
		require.NotNil(t, got.ExecutedAt)

		// 1000 - 2*100 - 1 fee
		p, err := tdb.GetPortfolioByID(portfolio.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(799).Equal(p.CurrentBalance))
	})

	t.Run("a second buy averages the entry price", func(t *testing.T) {
		tdb.TruncateAll(t)
		_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(10000))
		btc := tdb.SeedAsset(t, "BTC")

		pos := &models.Position{
			PortfolioID:  portfolio.ID,
			AssetID:      btc.ID,
			Quantity:     decimal.NewFromInt(1),
			AvgBuyPrice:  decimal.NewFromInt(100),
			CurrentPrice: decimal.NewFromInt(100),
		}
		require.NoError(t, tdb.CreatePosition(pos))

		order := &models.Order{
			PortfolioID: portfolio.ID,
			AssetID:     btc.ID,
			Side:        models.OrderSideBuy,
			Quantity:    decimal.NewFromInt(1),
		}
		require.NoError(t, tdb.CreateOrder(order))
		_, err := tdb.ApplyOrderFill(order.ID, decimal.NewFromInt(200), decimal.Zero, time.Now())
		require.NoError(t, err)

		got, err := tdb.GetPositionByID(pos.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(2).Equal(got.Quantity))
		assert.True(t, decimal.NewFromInt(150).Equal(got.AvgBuyPrice), "(1*100 + 1*200) / 2")
		assert.True(t, decimal.NewFromInt(100).Equal(got.UnrealizedPnl), "(200-150)*2")
	})

	t.Run("a full sell realizes pnl and closes the position", func(t *testing.T) {
		tdb.TruncateAll(t)
		_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))
		btc := tdb.SeedAsset(t, "BTC")

		pos := &models.Position{
			PortfolioID:  portfolio.ID,
			AssetID:      btc.ID,
			Quantity:     decimal.NewFromInt(2),
			AvgBuyPrice:  decimal.NewFromInt(100),
			CurrentPrice: decimal.NewFromInt(100),
		}
		require.NoError(t, tdb.CreatePosition(pos))

		order := &models.Order{
			PortfolioID: portfolio.ID,
			AssetID:     btc.ID,
			Side:        models.OrderSideSell,
			Quantity:    decimal.NewFromInt(2),
		}
		require.NoError(t, tdb.CreateOrder(order))
		_, err := tdb.ApplyOrderFill(order.ID, decimal.NewFromInt(120), decimal.NewFromInt(1), time.Now())
		require.NoError(t, err)

		got, err := tdb.GetPositionByID(pos.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PositionStatusClosed, got.Status)
		assert.True(t, got.Quantity.IsZero())
		assert.True(t, decimal.NewFromInt(40).Equal(got.RealizedPnl), "(120-100)*2")
		assert.NotNil(t, got.ClosedAt)

		// 1000 + 2*120 - 1 fee
		p, err := tdb.GetPortfolioByID(portfolio.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1239).Equal(p.CurrentBalance))
	})

	t.Run("a partial sell keeps the position open", func(t *testing.T) {
		tdb.TruncateAll(t)
		_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))
		btc := tdb.SeedAsset(t, "BTC")

		pos := &models.Position{
			PortfolioID:  portfolio.ID,
			AssetID:      btc.ID,
			Quantity:     decimal.NewFromInt(4),
			AvgBuyPrice:  decimal.NewFromInt(100),
			CurrentPrice: decimal.NewFromInt(100),
		}
		require.NoError(t, tdb.CreatePosition(pos))

		order := &models.Order{
			PortfolioID: portfolio.ID,
			AssetID:     btc.ID,
			Side:        models.OrderSideSell,
			Quantity:    decimal.NewFromInt(1),
		}
		require.NoError(t, tdb.CreateOrder(order))
		_, err := tdb.ApplyOrderFill(order.ID, decimal.NewFromInt(110), decimal.Zero, time.Now())
		require.NoError(t, err)

		got, err := tdb.GetPositionByID(pos.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PositionStatusOpen, got.Status)
		assert.True(t, decimal.NewFromInt(3).Equal(got.Quantity))
		assert.True(t, decimal.NewFromInt(10).Equal(got.RealizedPnl))
	})

	t.Run("a redelivered fill is rejected, not applied twice", func(t *testing.T) {
		tdb.TruncateAll(t)
		_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))
		btc := tdb.SeedAsset(t, "BTC")

		order := &models.Order{
			PortfolioID: portfolio.ID,
			AssetID:     btc.ID,
			Side:        models.OrderSideBuy,
			Quantity:    decimal.NewFromInt(1),
		}
		require.NoError(t, tdb.CreateOrder(order))
		_, err := tdb.ApplyOrderFill(order.ID, decimal.NewFromInt(100), decimal.Zero, time.Now())
		require.NoError(t, err)

		_, err = tdb.ApplyOrderFill(order.ID, decimal.NewFromInt(100), decimal.Zero, time.Now())
		assert.ErrorContains(t, err, "not fillable")

		p, err := tdb.GetPortfolioByID(portfolio.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(900).Equal(p.CurrentBalance), "cash moved exactly once")
	})

	t.Run("a cancelled order cannot be filled", func(t *testing.T) {
		tdb.TruncateAll(t)
		_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))
		btc := tdb.SeedAsset(t, "BTC")

		order := &models.Order{
			PortfolioID: portfolio.ID,
			AssetID:     btc.ID,
			Side:        models.OrderSideBuy,
			Quantity:    decimal.NewFromInt(1),
		}
		require.NoError(t, tdb.CreateOrder(order))
		require.NoError(t, tdb.CancelOrder(order.ID))

		_, err := tdb.ApplyOrderFill(order.ID, decimal.NewFromInt(100), decimal.Zero, time.Now())
		assert.ErrorContains(t, err, "not fillable")
	})

	t.Run("a sell without an open position fails", func(t *testing.T) {
		tdb.TruncateAll(t)
		_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))
		btc := tdb.SeedAsset(t, "BTC")

		order := &models.Order{
			PortfolioID: portfolio.ID,
			AssetID:     btc.ID,
			Side:        models.OrderSideSell,
			Quantity:    decimal.NewFromInt(1),
		}
		require.NoError(t, tdb.CreateOrder(order))

		_, err := tdb.ApplyOrderFill(order.ID, decimal.NewFromInt(100), decimal.Zero, time.Now())
		assert.ErrorContains(t, err, "no open position")
	})
}

func TestCreatePosition(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)
	tdb.TruncateAll(t)

	_, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))
	btc := tdb.SeedAsset(t, "BTC")

	pos := &models.Position{
		PortfolioID:  portfolio.ID,
		AssetID:      btc.ID,
		Quantity:     decimal.NewFromInt(2),
		AvgBuyPrice:  decimal.NewFromInt(100),
		CurrentPrice: decimal.NewFromInt(110),
	}
	require.NoError(t, tdb.CreatePosition(pos))
	assert.NotEmpty(t, pos.ID)

	got, err := tdb.GetPositionByID(pos.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(got.UnrealizedPnl), "derived at insert")
	assert.Equal(t, models.PositionStatusOpen, got.Status)
}
