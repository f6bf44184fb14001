package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/event"
	"github.com/utafrali/FurnitureStore/internal/store"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
	pkgkafka "github.com/utafrali/FurnitureStore/pkg/kafka"
)

// WishlistManager implements wishlist operations.
type WishlistManager struct {
	producer *event.Producer
	logger   *slog.Logger
}

// NewWishlistManager creates a new wishlist manager.
func NewWishlistManager(producer *event.Producer, logger *slog.Logger) *WishlistManager {
	return &WishlistManager{
		producer: producer,
		logger:   logger,
	}
}

// Get returns the wishlist, empty when none was saved yet.
func (m *WishlistManager) Get(ctx context.Context, st store.CartStore) (*domain.Wishlist, error) {
	w, err := st.LoadWishlist(ctx)
	if err != nil {
		observe("wishlist", "get", st, outcomeError)
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	observe("wishlist", "get", st, outcomeOK)
	return w, nil
}

// Add puts an item on the wishlist. Adding an item twice leaves a single
// entry and writes nothing the second time.
func (m *WishlistManager) Add(ctx context.Context, st store.CartStore, item, itemType string) (*domain.Wishlist, error) {
	key, err := parseKey(item, itemType)
	if err != nil {
		observe("wishlist", "add", st, outcomeRejected)
		return nil, err
	}

	w, err := st.LoadWishlist(ctx)
	if err != nil {
		observe("wishlist", "add", st, outcomeError)
		return nil, fmt.Errorf("load wishlist for add: %w", err)
	}
	if !w.Add(key) {
		observe("wishlist", "add", st, outcomeOK)
		return w, nil
	}
	if err := m.save(ctx, st, "add", w); err != nil {
		return nil, err
	}
	return w, nil
}

// Remove takes an item off the wishlist, returning a notice when it was not there.
func (m *WishlistManager) Remove(ctx context.Context, st store.CartStore, item, itemType string) (*domain.Wishlist, *Notice, error) {
	key, err := parseKey(item, itemType)
	if err != nil {
		observe("wishlist", "remove", st, outcomeRejected)
		return nil, nil, err
	}

	w, err := st.LoadWishlist(ctx)
	if err != nil {
		observe("wishlist", "remove", st, outcomeError)
		return nil, nil, fmt.Errorf("load wishlist for remove: %w", err)
	}
	if !w.Remove(key) {
		observe("wishlist", "remove", st, outcomeNotice)
		return w, itemNotFound("wishlist", key), nil
	}
	if err := m.save(ctx, st, "remove", w); err != nil {
		return nil, nil, err
	}
	return w, nil, nil
}

// Contains reports whether the item is on the wishlist.
func (m *WishlistManager) Contains(ctx context.Context, st store.CartStore, item, itemType string) (bool, error) {
	key, err := parseKey(item, itemType)
	if err != nil {
		return false, err
	}
	w, err := st.LoadWishlist(ctx)
	if err != nil {
		return false, fmt.Errorf("load wishlist: %w", err)
	}
	return w.Contains(key), nil
}

// Clear empties the wishlist and returns the empty list.
func (m *WishlistManager) Clear(ctx context.Context, st store.CartStore) (*domain.Wishlist, error) {
	if err := st.ClearWishlist(ctx); err != nil {
		observe("wishlist", "clear", st, outcomeError)
		return nil, fmt.Errorf("clear wishlist: %w", err)
	}
	observe("wishlist", "clear", st, outcomeOK)
	m.publishCleared(ctx, st.Owner())
	return domain.NewWishlist(st.Owner()), nil
}

// Merge unions every source wishlist into the target and clears the
// sources that contributed entries.
func (m *WishlistManager) Merge(ctx context.Context, target store.CartStore, sources ...store.CartStore) (*domain.Wishlist, error) {
	w, err := target.LoadWishlist(ctx)
	if err != nil {
		observe("wishlist", "merge", target, outcomeError)
		return nil, fmt.Errorf("load target wishlist: %w", err)
	}

	var merged []store.CartStore
	for _, src := range sources {
		if src == nil || sameStore(src, target) {
			continue
		}
		other, err := src.LoadWishlist(ctx)
		if err != nil {
			observe("wishlist", "merge", target, outcomeError)
			return nil, fmt.Errorf("load %s wishlist for merge: %w", src.Kind(), err)
		}
		if other.IsEmpty() {
			continue
		}
		w.Merge(other)
		merged = append(merged, src)
	}

	if len(merged) == 0 {
		observe("wishlist", "merge", target, outcomeOK)
		return w, nil
	}
	if err := m.save(ctx, target, "merge", w); err != nil {
		return nil, err
	}

	for _, src := range merged {
		if err := src.ClearWishlist(ctx); err != nil {
			m.logger.WarnContext(ctx, "failed to clear merged wishlist",
				slog.String("store", string(src.Kind())),
				slog.String("owner", src.Owner()),
				slog.String("error", err.Error()),
			)
			continue
		}
		m.publishCleared(ctx, src.Owner())
	}
	return w, nil
}

func (m *WishlistManager) save(ctx context.Context, st store.CartStore, op string, w *domain.Wishlist) error {
	if err := st.SaveWishlist(ctx, w); err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			observe("wishlist", op, st, outcomeRejected)
			return err
		}
		observe("wishlist", op, st, outcomeError)
		return fmt.Errorf("save wishlist: %w", err)
	}
	observe("wishlist", op, st, outcomeOK)

	if err := m.producer.PublishWishlistUpdated(ctx, w); err != nil {
		eventPublishFailures.WithLabelValues(string(pkgkafka.AggregateWishlist)).Inc()
		m.logger.ErrorContext(ctx, "failed to publish wishlist.updated event",
			slog.String("owner", w.Owner),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (m *WishlistManager) publishCleared(ctx context.Context, owner string) {
	if err := m.producer.PublishWishlistCleared(ctx, owner); err != nil {
		eventPublishFailures.WithLabelValues(string(pkgkafka.AggregateWishlist)).Inc()
		m.logger.ErrorContext(ctx, "failed to publish wishlist.cleared event",
			slog.String("owner", owner),
			slog.String("error", err.Error()),
		)
	}
}
