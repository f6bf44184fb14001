package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/event"
	"github.com/utafrali/FurnitureStore/internal/store"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	pkgkafka "github.com/utafrali/FurnitureStore/pkg/kafka"
)

// NoticeItemNotFound is reported when a remove or update targets an item
// that is not in the cart or wishlist. The request still succeeds.
const NoticeItemNotFound = "ITEM_NOT_FOUND"

// Notice is a non-fatal condition returned next to a successful result.
type Notice struct {
	Code    string
	Message string
}

func itemNotFound(resource string, key domain.ItemKey) *Notice {
	return &Notice{
		Code:    NoticeItemNotFound,
		Message: fmt.Sprintf("%s %s is not in the %s", key.ItemType, key.Item, resource),
	}
}

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	Item     string
	ItemType string
	Quantity int
}

// CartManager implements cart operations over whichever store the request
// was given.
type CartManager struct {
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartManager creates a new cart manager.
func NewCartManager(producer *event.Producer, logger *slog.Logger) *CartManager {
	return &CartManager{
		producer: producer,
		logger:   logger,
	}
}

// Get returns the cart, empty when none was saved yet.
func (m *CartManager) Get(ctx context.Context, st store.CartStore) (*domain.Cart, error) {
	cart, err := st.LoadCart(ctx)
	if err != nil {
		observe("cart", "get", st, outcomeError)
		return nil, fmt.Errorf("get cart: %w", err)
	}
	observe("cart", "get", st, outcomeOK)
	return cart, nil
}

// Add increases the quantity of an existing (item, type) entry or appends it.
func (m *CartManager) Add(ctx context.Context, st store.CartStore, input AddItemInput) (*domain.Cart, error) {
	key, err := parseKey(input.Item, input.ItemType)
	if err != nil {
		observe("cart", "add", st, outcomeRejected)
		return nil, err
	}
	if input.Quantity < 1 {
		observe("cart", "add", st, outcomeRejected)
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}

	cart, err := st.LoadCart(ctx)
	if err != nil {
		observe("cart", "add", st, outcomeError)
		return nil, fmt.Errorf("load cart for add: %w", err)
	}
	if err := cart.Add(key, input.Quantity); err != nil {
		observe("cart", "add", st, outcomeRejected)
		return nil, apperrors.InvalidInput(err.Error())
	}

	if err := m.save(ctx, st, "add", cart); err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "item added to cart",
		slog.String("item", key.Item),
		slog.String("item_type", string(key.ItemType)),
		slog.Int("quantity", input.Quantity),
		slog.String("store", string(st.Kind())),
	)
	return cart, nil
}

// Remove deletes an entry. A missing entry is not an error: the unchanged
// cart is returned with an ITEM_NOT_FOUND notice and nothing is written.
func (m *CartManager) Remove(ctx context.Context, st store.CartStore, item, itemType string) (*domain.Cart, *Notice, error) {
	key, err := parseKey(item, itemType)
	if err != nil {
		observe("cart", "remove", st, outcomeRejected)
		return nil, nil, err
	}

	cart, err := st.LoadCart(ctx)
	if err != nil {
		observe("cart", "remove", st, outcomeError)
		return nil, nil, fmt.Errorf("load cart for remove: %w", err)
	}
	if !cart.Remove(key) {
		observe("cart", "remove", st, outcomeNotice)
		return cart, itemNotFound("cart", key), nil
	}

	if err := m.save(ctx, st, "remove", cart); err != nil {
		return nil, nil, err
	}
	return cart, nil, nil
}

// UpdateQuantity sets an entry's quantity. A quantity below 1 removes the
// entry; a missing entry yields a notice.
func (m *CartManager) UpdateQuantity(ctx context.Context, st store.CartStore, item, itemType string, quantity int) (*domain.Cart, *Notice, error) {
	key, err := parseKey(item, itemType)
	if err != nil {
		observe("cart", "update", st, outcomeRejected)
		return nil, nil, err
	}

	cart, err := st.LoadCart(ctx)
	if err != nil {
		observe("cart", "update", st, outcomeError)
		return nil, nil, fmt.Errorf("load cart for update: %w", err)
	}
	if !cart.SetQuantity(key, quantity) {
		observe("cart", "update", st, outcomeNotice)
		return cart, itemNotFound("cart", key), nil
	}

	if err := m.save(ctx, st, "update", cart); err != nil {
		return nil, nil, err
	}
	return cart, nil, nil
}

// Clear empties the cart.
func (m *CartManager) Clear(ctx context.Context, st store.CartStore) (*domain.Cart, error) {
	if err := st.ClearCart(ctx); err != nil {
		observe("cart", "clear", st, outcomeError)
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	observe("cart", "clear", st, outcomeOK)
	m.publishCleared(ctx, st.Owner())
	return domain.NewCart(st.Owner()), nil
}

// Merge folds every source cart into the target by summing quantities,
// saves the target, then clears the sources that contributed entries.
// Sources equal to the target are skipped.
func (m *CartManager) Merge(ctx context.Context, target store.CartStore, sources ...store.CartStore) (*domain.Cart, error) {
	cart, err := target.LoadCart(ctx)
	if err != nil {
		observe("cart", "merge", target, outcomeError)
		return nil, fmt.Errorf("load target cart: %w", err)
	}

	var merged []store.CartStore
	for _, src := range sources {
		if src == nil || sameStore(src, target) {
			continue
		}
		other, err := src.LoadCart(ctx)
		if err != nil {
			observe("cart", "merge", target, outcomeError)
			return nil, fmt.Errorf("load %s cart for merge: %w", src.Kind(), err)
		}
		if other.IsEmpty() {
			continue
		}
		if err := cart.Merge(other); err != nil {
			observe("cart", "merge", target, outcomeRejected)
			return nil, apperrors.InvalidInput(err.Error())
		}
		merged = append(merged, src)
	}

	if len(merged) == 0 {
		observe("cart", "merge", target, outcomeOK)
		return cart, nil
	}
	if err := m.save(ctx, target, "merge", cart); err != nil {
		return nil, err
	}

	for _, src := range merged {
		if err := src.ClearCart(ctx); err != nil {
			// The target already holds the entries; a stale source only
			// risks a second merge of the same items.
			m.logger.WarnContext(ctx, "failed to clear merged cart",
				slog.String("store", string(src.Kind())),
				slog.String("owner", src.Owner()),
				slog.String("error", err.Error()),
			)
			continue
		}
		m.publishCleared(ctx, src.Owner())
	}

	m.logger.InfoContext(ctx, "carts merged",
		slog.Int("sources", len(merged)),
		slog.Int("item_count", cart.ItemCount()),
	)
	return cart, nil
}

func (m *CartManager) save(ctx context.Context, st store.CartStore, op string, cart *domain.Cart) error {
	if err := st.SaveCart(ctx, cart); err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			observe("cart", op, st, outcomeRejected)
			return err
		}
		observe("cart", op, st, outcomeError)
		return fmt.Errorf("save cart: %w", err)
	}
	observe("cart", op, st, outcomeOK)

	if err := m.producer.PublishCartUpdated(ctx, cart); err != nil {
		eventPublishFailures.WithLabelValues(string(pkgkafka.AggregateCart)).Inc()
		m.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("owner", cart.Owner),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (m *CartManager) publishCleared(ctx context.Context, owner string) {
	if err := m.producer.PublishCartCleared(ctx, owner); err != nil {
		eventPublishFailures.WithLabelValues(string(pkgkafka.AggregateCart)).Inc()
		m.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("owner", owner),
			slog.String("error", err.Error()),
		)
	}
}

// parseKey validates an (item, type) pair from a request.
func parseKey(item, itemType string) (domain.ItemKey, error) {
	t, err := domain.ParseItemType(itemType)
	if err != nil {
		return domain.ItemKey{}, apperrors.InvalidItemType(itemType)
	}
	item = strings.TrimSpace(item)
	if item == "" {
		return domain.ItemKey{}, apperrors.InvalidInput("item is required")
	}
	return domain.ItemKey{Item: item, ItemType: t}, nil
}

// sameStore reports whether a and b write to the same place.
func sameStore(a, b store.CartStore) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	return a.Kind() == store.KindLocal || a.Owner() == b.Owner()
}
