package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/storefront/internal/core/domain"
)

const orderEventsCollection = "order_events"

// EventRepository implements ports.OrderEventRepository using MongoDB.
type EventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(orderEventsCollection)}
}

// Insert persists an order event to the order_events audit collection.
func (r *EventRepository) Insert(ctx context.Context, event *domain.OrderEvent) error {
	doc := bson.M{
		"type":        string(event.Type),
		"order_id":    event.OrderID,
		"status":      event.Status,
		"occurred_at": event.OccurredAt.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.UserID != 0 {
		doc["user_id"] = event.UserID
	}
	if !event.TotalAmount.IsZero() {
		doc["total_amount"] = event.TotalAmount.StringFixed(2)
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}
