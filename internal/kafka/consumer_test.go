package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

type stubStore struct {
	ticks []struct {
		assetID string
		price   decimal.Decimal
	}
	fills []struct {
		orderID string
		price   decimal.Decimal
		fee     decimal.Decimal
	}
	err error
}

func (s *stubStore) ApplyPriceTick(assetID string, price decimal.Decimal, ts time.Time) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.ticks = append(s.ticks, struct {
		assetID string
		price   decimal.Decimal
	}{assetID, price})
	return 1, nil
}

func (s *stubStore) ApplyOrderFill(orderID string, executedPrice, fee decimal.Decimal, ts time.Time) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.fills = append(s.fills, struct {
		orderID string
		price   decimal.Decimal
		fee     decimal.Decimal
	}{orderID, executedPrice, fee})
	return "portfolio-1", nil
}

type stubInvalidator struct {
	invalidated []string
	err         error
}

func (s *stubInvalidator) Invalidate(ctx context.Context, portfolioID string) error {
	s.invalidated = append(s.invalidated, portfolioID)
	return s.err
}

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func TestPriceConsumerProcessMessage(t *testing.T) {
	t.Run("applies a valid price tick", func(t *testing.T) {
		store := &stubStore{}
		c := &PriceConsumer{store: store}

		err := c.processMessage(message(t, models.PriceTickEvent{
			EventType: models.EventTypePriceTick,
			AssetID:   "asset-1",
			Price:     decimal.NewFromInt(105),
			Timestamp: time.Now(),
		}))
		require.NoError(t, err)
		require.Len(t, store.ticks, 1)
		assert.Equal(t, "asset-1", store.ticks[0].assetID)
		assert.True(t, decimal.NewFromInt(105).Equal(store.ticks[0].price))
	})

	t.Run("ignores other event types", func(t *testing.T) {
		store := &stubStore{}
		c := &PriceConsumer{store: store}

		err := c.processMessage(message(t, models.PriceTickEvent{
			EventType: models.EventTypeOrderFill,
			AssetID:   "asset-1",
			Price:     decimal.NewFromInt(105),
		}))
		require.NoError(t, err)
		assert.Empty(t, store.ticks)
	})

	t.Run("rejects a non-positive price", func(t *testing.T) {
		store := &stubStore{}
		c := &PriceConsumer{store: store}

		err := c.processMessage(message(t, models.PriceTickEvent{
			EventType: models.EventTypePriceTick,
			AssetID:   "asset-1",
			Price:     decimal.Zero,
		}))
		assert.Error(t, err)
		assert.Empty(t, store.ticks)
	})

	t.Run("rejects a missing asset id", func(t *testing.T) {
		store := &stubStore{}
		c := &PriceConsumer{store: store}

		err := c.processMessage(message(t, models.PriceTickEvent{
			EventType: models.EventTypePriceTick,
			Price:     decimal.NewFromInt(10),
		}))
		assert.Error(t, err)
	})

	t.Run("malformed payload is an error, not a panic", func(t *testing.T) {
		c := &PriceConsumer{store: &stubStore{}}
		err := c.processMessage(kafka.Message{Value: []byte("not json")})
		assert.Error(t, err)
	})
}

func TestFillConsumerProcessMessage(t *testing.T) {
	t.Run("settles a valid fill", func(t *testing.T) {
		store := &stubStore{}
		c := &FillConsumer{store: store}

		err := c.processMessage(message(t, models.OrderFillEvent{
			EventType:     models.EventTypeOrderFill,
			OrderID:       "order-1",
			ExecutedPrice: decimal.NewFromInt(99),
			Fee:           decimal.NewFromFloat(0.25),
			Timestamp:     time.Now(),
		}))
		require.NoError(t, err)
		require.Len(t, store.fills, 1)
		assert.Equal(t, "order-1", store.fills[0].orderID)
		assert.True(t, decimal.NewFromFloat(0.25).Equal(store.fills[0].fee))
	})

	t.Run("settling a fill drops the portfolio's cached summary", func(t *testing.T) {
		store := &stubStore{}
		summaries := &stubInvalidator{}
		c := &FillConsumer{store: store, summaries: summaries}

		err := c.processMessage(message(t, models.OrderFillEvent{
			EventType:     models.EventTypeOrderFill,
			OrderID:       "order-1",
			ExecutedPrice: decimal.NewFromInt(99),
			Timestamp:     time.Now(),
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"portfolio-1"}, summaries.invalidated)
	})

	t.Run("invalidation failure does not fail the settlement", func(t *testing.T) {
		store := &stubStore{}
		summaries := &stubInvalidator{err: assert.AnError}
		c := &FillConsumer{store: store, summaries: summaries}

		err := c.processMessage(message(t, models.OrderFillEvent{
			EventType:     models.EventTypeOrderFill,
			OrderID:       "order-1",
			ExecutedPrice: decimal.NewFromInt(99),
			Timestamp:     time.Now(),
		}))
		require.NoError(t, err)
		require.Len(t, store.fills, 1)
	})

	t.Run("ignores other event types", func(t *testing.T) {
		store := &stubStore{}
		c := &FillConsumer{store: store}

		err := c.processMessage(message(t, models.OrderFillEvent{
			EventType:     models.EventTypePriceTick,
			OrderID:       "order-1",
			ExecutedPrice: decimal.NewFromInt(99),
		}))
		require.NoError(t, err)
		assert.Empty(t, store.fills)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		store := &stubStore{err: assert.AnError}
		c := &FillConsumer{store: store}

		err := c.processMessage(message(t, models.OrderFillEvent{
			EventType:     models.EventTypeOrderFill,
			OrderID:       "order-1",
			ExecutedPrice: decimal.NewFromInt(99),
		}))
		assert.Error(t, err)
	})
}
