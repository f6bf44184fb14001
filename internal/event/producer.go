package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/FurnitureStore/internal/domain"
	pkgkafka "github.com/utafrali/FurnitureStore/pkg/kafka"
	"github.com/utafrali/FurnitureStore/pkg/logger"
)

// Topics for cart and wishlist events.
var (
	TopicCartUpdated     = pkgkafka.AggregateCart.Topic(pkgkafka.ActionUpdated)
	TopicCartCleared     = pkgkafka.AggregateCart.Topic(pkgkafka.ActionCleared)
	TopicWishlistUpdated = pkgkafka.AggregateWishlist.Topic(pkgkafka.ActionUpdated)
	TopicWishlistCleared = pkgkafka.AggregateWishlist.Topic(pkgkafka.ActionCleared)
)

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	Owner     string             `json:"owner,omitempty"`
	Entries   []domain.CartEntry `json:"entries"`
	ItemCount int                `json:"item_count"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	Owner   string                 `json:"owner,omitempty"`
	Entries []domain.WishlistEntry `json:"entries"`
}

// ClearedData is the payload for cart.cleared and wishlist.cleared events.
type ClearedData struct {
	Owner string `json:"owner,omitempty"`
}

// CatalogDeletedData is the payload for catalog deletions.
type CatalogDeletedData struct {
	ID string `json:"id"`
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		Owner:     cart.Owner,
		Entries:   cart.Entries,
		ItemCount: cart.ItemCount(),
	}
	return p.publish(ctx, pkgkafka.AggregateCart, cart.Owner, pkgkafka.ActionUpdated, data)
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, owner string) error {
	return p.publish(ctx, pkgkafka.AggregateCart, owner, pkgkafka.ActionCleared, ClearedData{Owner: owner})
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, w *domain.Wishlist) error {
	data := WishlistUpdatedData{Owner: w.Owner, Entries: w.Entries}
	return p.publish(ctx, pkgkafka.AggregateWishlist, w.Owner, pkgkafka.ActionUpdated, data)
}

// PublishWishlistCleared publishes a wishlist.cleared event.
func (p *Producer) PublishWishlistCleared(ctx context.Context, owner string) error {
	return p.publish(ctx, pkgkafka.AggregateWishlist, owner, pkgkafka.ActionCleared, ClearedData{Owner: owner})
}

// PublishCatalog publishes a catalog.<entity>.<action> event. data is the
// entity itself for creates and updates, CatalogDeletedData for deletes.
func (p *Producer) PublishCatalog(ctx context.Context, entity pkgkafka.Aggregate, action, id string, data any) error {
	return p.publish(ctx, entity, id, action, data)
}

func (p *Producer) publish(ctx context.Context, agg pkgkafka.Aggregate, id, action string, data any) error {
	event, err := pkgkafka.NewEvent(agg, id, action, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", agg.Topic(action), err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}

	topic := event.Topic()
	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}
