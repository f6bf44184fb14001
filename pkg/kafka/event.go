package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TopicPrefix namespaces every topic the storefront writes to.
const TopicPrefix = "furniture"

// Source is stamped on every event this API emits.
const Source = "furniture-storefront"

// LocalOwner keys events for baskets that only live in the browser cookie,
// so they share one partition instead of spreading on an empty key.
const LocalOwner = "local"

// Aggregate names the storefront entity an event is about.
type Aggregate string

const (
	AggregateCart       Aggregate = "cart"
	AggregateWishlist   Aggregate = "wishlist"
	AggregateProduct    Aggregate = "product"
	AggregateCollection Aggregate = "collection"
	AggregateProject    Aggregate = "project"
)

// Actions carried in topic names.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionCleared = "cleared"
)

// IsCatalog reports whether a is an admin-managed catalog entity.
func (a Aggregate) IsCatalog() bool {
	switch a {
	case AggregateProduct, AggregateCollection, AggregateProject:
		return true
	}
	return false
}

// Topic returns the topic for action on a: "furniture.cart.updated" for
// baskets, "furniture.catalog.product.created" for catalog entities.
func (a Aggregate) Topic(action string) string {
	if a.IsCatalog() {
		return TopicPrefix + ".catalog." + string(a) + "." + action
	}
	return TopicPrefix + "." + string(a) + "." + action
}

// Event is the envelope written to every topic. EventType equals the topic.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType Aggregate       `json:"aggregate_type"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent builds the envelope for action on the aggregate with the given id.
// An empty id, as for a cookie basket, becomes LocalOwner.
func NewEvent(agg Aggregate, id, action string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = LocalOwner
	}

	return &Event{
		EventID:       uuid.NewString(),
		EventType:     agg.Topic(action),
		AggregateID:   id,
		AggregateType: agg,
		Version:       1,
		Timestamp:     time.Now().UTC(),
		Source:        Source,
		Data:          payload,
	}, nil
}

// Topic is the topic the event belongs on.
func (e *Event) Topic() string { return e.EventType }

// WithCorrelationID sets the correlation ID on the event.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// Marshal serializes the event to JSON bytes.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent deserializes an event from JSON bytes.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}
