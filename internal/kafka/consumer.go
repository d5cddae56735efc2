package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

// PositionStore defines the database operations the consumers drive
type PositionStore interface {
	ApplyPriceTick(assetID string, price decimal.Decimal, ts time.Time) (int64, error)
	ApplyOrderFill(orderID string, executedPrice, fee decimal.Decimal, ts time.Time) (string, error)
}

// SummaryInvalidator drops cached portfolio summaries after a write that
// changes positions or the cash balance
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, portfolioID string) error
}

// PriceConsumer consumes price tick events and recomputes the open
// positions holding the moved asset. Recomputation is idempotent, so a
// redelivered tick converges to the same state.
type PriceConsumer struct {
	reader *kafka.Reader
	store  PositionStore
}

// NewPriceConsumer creates a Kafka consumer for price tick events
func NewPriceConsumer(brokers []string, topic, groupID string, store PositionStore) *PriceConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &PriceConsumer{
		reader: reader,
		store:  store,
	}
}

// Start begins consuming messages from Kafka
func (c *PriceConsumer) Start(ctx context.Context) error {
	log.Printf("Starting price consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Price consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("Error processing price tick: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single price tick message
func (c *PriceConsumer) processMessage(msg kafka.Message) error {
	var event models.PriceTickEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal price tick event: %w", err)
	}

	if event.EventType != models.EventTypePriceTick {
		log.Printf("Ignoring event type: %s", event.EventType)
		return nil
	}
	if event.AssetID == "" {
		return fmt.Errorf("price tick missing asset_id")
	}
	if !event.Price.IsPositive() {
		return fmt.Errorf("invalid price %s for asset %s", event.Price, event.AssetID)
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	updated, err := c.store.ApplyPriceTick(event.AssetID, event.Price, ts)
	if err != nil {
		return fmt.Errorf("failed to apply price tick: %w", err)
	}

	log.Printf("Applied price %s to asset %s: %d positions updated",
		event.Price, event.AssetID, updated)
	return nil
}

// Close closes the price consumer
func (c *PriceConsumer) Close() error {
	return c.reader.Close()
}

// FillConsumer consumes order fill events from the execution collaborator
// and settles the corresponding pending orders. An order already executed
// (or otherwise terminal) is skipped, so redelivery is harmless.
type FillConsumer struct {
	reader    *kafka.Reader
	store     PositionStore
	summaries SummaryInvalidator
}

// NewFillConsumer creates a Kafka consumer for order fill events. summaries
// may be nil to run without cache invalidation.
func NewFillConsumer(brokers []string, topic, groupID string, store PositionStore, summaries SummaryInvalidator) *FillConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &FillConsumer{
		reader:    reader,
		store:     store,
		summaries: summaries,
	}
}

// Start begins consuming messages from Kafka
func (c *FillConsumer) Start(ctx context.Context) error {
	log.Printf("Starting fill consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Fill consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("Error processing order fill: %v", err)
			}
		}
	}
}

// processMessage handles a single order fill message
func (c *FillConsumer) processMessage(msg kafka.Message) error {
	var event models.OrderFillEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal order fill event: %w", err)
	}

	if event.EventType != models.EventTypeOrderFill {
		log.Printf("Ignoring event type: %s", event.EventType)
		return nil
	}
	if event.OrderID == "" {
		return fmt.Errorf("order fill missing order_id")
	}
	if !event.ExecutedPrice.IsPositive() {
		return fmt.Errorf("invalid executed price %s for order %s", event.ExecutedPrice, event.OrderID)
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	portfolioID, err := c.store.ApplyOrderFill(event.OrderID, event.ExecutedPrice, event.Fee, ts)
	if err != nil {
		return fmt.Errorf("failed to apply order fill: %w", err)
	}

	if c.summaries != nil {
		if err := c.summaries.Invalidate(context.Background(), portfolioID); err != nil {
			log.Printf("Failed to invalidate summary cache for %s: %v", portfolioID, err)
		}
	}

	log.Printf("Settled order %s at %s (fee %s)", event.OrderID, event.ExecutedPrice, event.Fee)
	return nil
}

// Close closes the fill consumer
func (c *FillConsumer) Close() error {
	return c.reader.Close()
}
