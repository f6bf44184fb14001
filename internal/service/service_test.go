package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/event"
	"github.com/utafrali/FurnitureStore/internal/repository"
	"github.com/utafrali/FurnitureStore/internal/store"
	pkgkafka "github.com/utafrali/FurnitureStore/pkg/kafka"
)

// --- Fake store ---

type fakeStore struct {
	kind     store.Kind
	owner    string
	cart     *domain.Cart
	wishlist *domain.Wishlist

	loadErr    error
	saveErr    error
	cartSaves  int
	listSaves  int
	cartClears int
	listClears int
}

func newFakeStore(kind store.Kind, owner string) *fakeStore {
	return &fakeStore{kind: kind, owner: owner}
}

func (f *fakeStore) Kind() store.Kind { return f.kind }
func (f *fakeStore) Owner() string    { return f.owner }

func (f *fakeStore) LoadCart(context.Context) (*domain.Cart, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.cart == nil {
		return domain.NewCart(f.owner), nil
	}
	return f.cart.Clone(), nil
}

func (f *fakeStore) SaveCart(_ context.Context, c *domain.Cart) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.cartSaves++
	c.Owner = f.owner
	f.cart = c.Clone()
	return nil
}

func (f *fakeStore) ClearCart(context.Context) error {
	f.cartClears++
	f.cart = nil
	return nil
}

func (f *fakeStore) LoadWishlist(context.Context) (*domain.Wishlist, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.wishlist == nil {
		return domain.NewWishlist(f.owner), nil
	}
	return f.wishlist.Clone(), nil
}

func (f *fakeStore) SaveWishlist(_ context.Context, w *domain.Wishlist) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.listSaves++
	w.Owner = f.owner
	f.wishlist = w.Clone()
	return nil
}

func (f *fakeStore) ClearWishlist(context.Context) error {
	f.listClears++
	f.wishlist = nil
	return nil
}

// --- Recording publisher ---

type recordingPublisher struct {
	pkgkafka.NopPublisher
	mu     sync.Mutex
	topics []string
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, _ *pkgkafka.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.topics = append(r.topics, topic)
	return nil
}

func (r *recordingPublisher) published() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.topics...)
}

// --- Mock catalog repository ---

type mockCatalogRepository[T any] struct {
	mock.Mock
}

var _ repository.CatalogRepository[domain.Product] = (*mockCatalogRepository[domain.Product])(nil)

func (m *mockCatalogRepository[T]) Create(ctx context.Context, e *T) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockCatalogRepository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockCatalogRepository[T]) List(ctx context.Context, f repository.CatalogFilter) ([]T, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]T), args.Int(1), args.Error(2)
}

func (m *mockCatalogRepository[T]) Count(ctx context.Context, f repository.CatalogFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *mockCatalogRepository[T]) Update(ctx context.Context, e *T) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockCatalogRepository[T]) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// --- Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProducer() (*event.Producer, *recordingPublisher) {
	pub := &recordingPublisher{}
	return event.NewProducer(pub, newTestLogger()), pub
}

func ptr[T any](v T) *T { return &v }

var (
	sofa  = domain.ItemKey{Item: "sofa-1", ItemType: domain.ItemTypeProduct}
	chair = domain.ItemKey{Item: "chair-1", ItemType: domain.ItemTypeProduct}
	set   = domain.ItemKey{Item: "set-1", ItemType: domain.ItemTypeCollection}
)
