package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/store"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
)

func newTestCartManager() (*CartManager, *recordingPublisher) {
	producer, pub := newTestProducer()
	return NewCartManager(producer, newTestLogger()), pub
}

func TestCartManager_AddAccumulatesThenRemove(t *testing.T) {
	m, pub := newTestCartManager()
	st := newFakeStore(store.KindRemote, "user:1")
	ctx := context.Background()

	cart, err := m.Add(ctx, st, AddItemInput{Item: "p1", ItemType: "Product", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, []domain.CartEntry{{Item: "p1", ItemType: domain.ItemTypeProduct, Quantity: 2}}, cart.Entries)

	cart, err = m.Add(ctx, st, AddItemInput{Item: "p1", ItemType: "product", Quantity: 3})
	require.NoError(t, err)
	require.Len(t, cart.Entries, 1)
	assert.Equal(t, 5, cart.Entries[0].Quantity)

	cart, notice, err := m.Remove(ctx, st, "p1", "Product")
	require.NoError(t, err)
	assert.Nil(t, notice)
	assert.Empty(t, cart.Entries)

	assert.Equal(t, 3, st.cartSaves)
	assert.Equal(t, []string{"furniture.cart.updated", "furniture.cart.updated", "furniture.cart.updated"}, pub.published())
}

func TestCartManager_SameItemDifferentTypeIsSeparate(t *testing.T) {
	m, _ := newTestCartManager()
	st := newFakeStore(store.KindLocal, "")

	_, err := m.Add(context.Background(), st, AddItemInput{Item: "x", ItemType: "Product", Quantity: 1})
	require.NoError(t, err)
	cart, err := m.Add(context.Background(), st, AddItemInput{Item: "x", ItemType: "Collection", Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, cart.Entries, 2)
}

func TestCartManager_AddRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input AddItemInput
		code  string
	}{
		{"unknown type", AddItemInput{Item: "p1", ItemType: "Sofa", Quantity: 1}, "INVALID_ITEM_TYPE"},
		{"empty type", AddItemInput{Item: "p1", Quantity: 1}, "INVALID_ITEM_TYPE"},
		{"zero quantity", AddItemInput{Item: "p1", ItemType: "Product", Quantity: 0}, "INVALID_INPUT"},
		{"negative quantity", AddItemInput{Item: "p1", ItemType: "Product", Quantity: -2}, "INVALID_INPUT"},
		{"blank item", AddItemInput{Item: "  ", ItemType: "Product", Quantity: 1}, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, pub := newTestCartManager()
			st := newFakeStore(store.KindRemote, "guest:g")

			_, err := m.Add(context.Background(), st, tt.input)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, 400, apperrors.HTTPStatus(err))
			assert.Zero(t, st.cartSaves)
			assert.Empty(t, pub.published())
		})
	}
}

func TestCartManager_RemoveMissingIsNotice(t *testing.T) {
	m, pub := newTestCartManager()
	st := newFakeStore(store.KindRemote, "user:1")
	st.cart = domain.NewCart("user:1")
	st.cart.Add(sofa, 1)

	cart, notice, err := m.Remove(context.Background(), st, "nope", "Product")
	require.NoError(t, err)
	require.NotNil(t, notice)
	assert.Equal(t, NoticeItemNotFound, notice.Code)
	assert.Len(t, cart.Entries, 1)
	assert.Zero(t, st.cartSaves)
	assert.Empty(t, pub.published())
}

func TestCartManager_UpdateQuantity(t *testing.T) {
	m, _ := newTestCartManager()
	st := newFakeStore(store.KindRemote, "user:1")
	st.cart = domain.NewCart("user:1")
	st.cart.Add(sofa, 1)
	st.cart.Add(chair, 4)
	ctx := context.Background()

	cart, notice, err := m.UpdateQuantity(ctx, st, sofa.Item, "Product", 7)
	require.NoError(t, err)
	assert.Nil(t, notice)
	e, _ := cart.Find(sofa)
	assert.Equal(t, 7, e.Quantity)

	cart, notice, err = m.UpdateQuantity(ctx, st, chair.Item, "Product", 0)
	require.NoError(t, err)
	assert.Nil(t, notice)
	_, found := cart.Find(chair)
	assert.False(t, found, "quantity 0 removes the entry")

	_, notice, err = m.UpdateQuantity(ctx, st, "ghost", "Collection", 2)
	require.NoError(t, err)
	require.NotNil(t, notice)
	assert.Equal(t, NoticeItemNotFound, notice.Code)
	assert.Equal(t, 2, st.cartSaves)
}

func TestCartManager_Clear(t *testing.T) {
	m, pub := newTestCartManager()
	st := newFakeStore(store.KindRemote, "guest:g")
	st.cart = domain.NewCart("guest:g")
	st.cart.Add(sofa, 1)

	cart, err := m.Clear(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, "guest:g", cart.Owner)
	assert.Equal(t, 1, st.cartClears)
	assert.Equal(t, []string{"furniture.cart.cleared"}, pub.published())
}

func TestCartManager_Merge(t *testing.T) {
	m, _ := newTestCartManager()
	ctx := context.Background()

	target := newFakeStore(store.KindRemote, "user:1")
	target.cart = domain.NewCart("user:1")
	target.cart.Add(sofa, 1)

	local := newFakeStore(store.KindLocal, "")
	local.cart = domain.NewCart("")
	local.cart.Add(sofa, 2)
	local.cart.Add(set, 1)

	guest := newFakeStore(store.KindRemote, "guest:g")
	guest.cart = domain.NewCart("guest:g")
	guest.cart.Add(chair, 1)

	empty := newFakeStore(store.KindRemote, "guest:empty")

	cart, err := m.Merge(ctx, target, local, guest, empty, nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.CartEntry{
		{Item: "sofa-1", ItemType: domain.ItemTypeProduct, Quantity: 3},
		{Item: "set-1", ItemType: domain.ItemTypeCollection, Quantity: 1},
		{Item: "chair-1", ItemType: domain.ItemTypeProduct, Quantity: 1},
	}, cart.Entries)
	assert.Equal(t, 1, target.cartSaves)
	assert.Equal(t, 1, local.cartClears)
	assert.Equal(t, 1, guest.cartClears)
	assert.Zero(t, empty.cartClears)
}

func TestCartManager_MergeSkipsTargetAndNoop(t *testing.T) {
	m, pub := newTestCartManager()
	target := newFakeStore(store.KindRemote, "user:1")
	target.cart = domain.NewCart("user:1")
	target.cart.Add(sofa, 1)
	sameOwner := newFakeStore(store.KindRemote, "user:1")
	sameOwner.cart = target.cart.Clone()

	cart, err := m.Merge(context.Background(), target, sameOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.ItemCount())
	assert.Zero(t, target.cartSaves)
	assert.Zero(t, sameOwner.cartClears)
	assert.Empty(t, pub.published())
}

func TestCartManager_AddQuantityOverflow(t *testing.T) {
	m, pub := newTestCartManager()
	st := newFakeStore(store.KindRemote, "user:1")
	ctx := context.Background()

	_, err := m.Add(ctx, st, AddItemInput{Item: "p1", ItemType: "Product", Quantity: math.MaxInt})
	require.NoError(t, err)
	published := len(pub.published())

	_, err = m.Add(ctx, st, AddItemInput{Item: "p1", ItemType: "Product", Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
	assert.Equal(t, 1, st.cartSaves)
	assert.Len(t, pub.published(), published)
}

func TestCartManager_MergeQuantityOverflow(t *testing.T) {
	m, _ := newTestCartManager()
	target := newFakeStore(store.KindRemote, "user:1")
	target.cart = domain.NewCart("user:1")
	target.cart.Add(sofa, math.MaxInt)

	local := newFakeStore(store.KindLocal, "")
	local.cart = domain.NewCart("")
	local.cart.Add(sofa, 1)

	_, err := m.Merge(context.Background(), target, local)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Zero(t, target.cartSaves)
	assert.Zero(t, local.cartClears)
}

func TestCartManager_MergeSourceLoadFailure(t *testing.T) {
	m, _ := newTestCartManager()
	target := newFakeStore(store.KindRemote, "user:1")
	broken := newFakeStore(store.KindRemote, "guest:g")
	broken.loadErr = errors.New("mongo down")

	_, err := m.Merge(context.Background(), target, broken)
	require.Error(t, err)
	assert.Zero(t, target.cartSaves)
}

func TestCartManager_PublishFailureIsNotFatal(t *testing.T) {
	m, pub := newTestCartManager()
	pub.err = errors.New("broker down")
	st := newFakeStore(store.KindRemote, "user:1")

	cart, err := m.Add(context.Background(), st, AddItemInput{Item: "p1", ItemType: "Product", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, cart.ItemCount())
	assert.Equal(t, 1, st.cartSaves)
}

func TestCartManager_SaveErrors(t *testing.T) {
	m, _ := newTestCartManager()

	tooBig := newFakeStore(store.KindLocal, "")
	tooBig.saveErr = apperrors.InvalidInput("too many items")
	before := testutil.ToFloat64(basketOperations.WithLabelValues("cart", "add", "local", outcomeRejected))

	_, err := m.Add(context.Background(), tooBig, AddItemInput{Item: "p1", ItemType: "Product", Quantity: 1})
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
	assert.Equal(t, before+1, testutil.ToFloat64(basketOperations.WithLabelValues("cart", "add", "local", outcomeRejected)))

	down := newFakeStore(store.KindRemote, "user:1")
	down.saveErr = errors.New("connection reset")
	_, err = m.Add(context.Background(), down, AddItemInput{Item: "p1", ItemType: "Product", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
}
