package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/store"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
)

func newTestWishlistManager() (*WishlistManager, *recordingPublisher) {
	producer, pub := newTestProducer()
	return NewWishlistManager(producer, newTestLogger()), pub
}

func TestWishlistManager_AddIsIdempotent(t *testing.T) {
	m, pub := newTestWishlistManager()
	st := newFakeStore(store.KindRemote, "user:1")
	ctx := context.Background()

	for range 3 {
		w, err := m.Add(ctx, st, "p1", "Product")
		require.NoError(t, err)
		assert.Len(t, w.Entries, 1)
	}
	assert.Equal(t, 1, st.listSaves)
	assert.Equal(t, []string{"furniture.wishlist.updated"}, pub.published())

	ok, err := m.Contains(ctx, st, "p1", "PRODUCT")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Contains(ctx, st, "p1", "Collection")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWishlistManager_GetAndClear(t *testing.T) {
	m, pub := newTestWishlistManager()
	st := newFakeStore(store.KindRemote, "guest:g")
	ctx := context.Background()

	w, err := m.Get(ctx, st)
	require.NoError(t, err)
	assert.Empty(t, w.Entries)

	st.wishlist = domain.NewWishlist("guest:g")
	st.wishlist.Add(sofa)
	w, err = m.Get(ctx, st)
	require.NoError(t, err)
	assert.True(t, w.Contains(sofa))

	w, err = m.Clear(ctx, st)
	require.NoError(t, err)
	assert.Empty(t, w.Entries)
	assert.Equal(t, "guest:g", w.Owner)
	assert.Equal(t, 1, st.listClears)
	assert.Equal(t, []string{"furniture.wishlist.cleared"}, pub.published())
}

func TestWishlistManager_InvalidItemType(t *testing.T) {
	m, _ := newTestWishlistManager()
	st := newFakeStore(store.KindLocal, "")

	_, err := m.Add(context.Background(), st, "p1", "Lamp")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_ITEM_TYPE", appErr.Code)

	_, err = m.Contains(context.Background(), st, "p1", "")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_ITEM_TYPE", appErr.Code)
}

func TestWishlistManager_Remove(t *testing.T) {
	m, _ := newTestWishlistManager()
	st := newFakeStore(store.KindRemote, "user:1")
	st.wishlist = domain.NewWishlist("user:1")
	st.wishlist.Add(sofa)

	w, notice, err := m.Remove(context.Background(), st, "chair-1", "Product")
	require.NoError(t, err)
	require.NotNil(t, notice)
	assert.Equal(t, NoticeItemNotFound, notice.Code)
	assert.Len(t, w.Entries, 1)
	assert.Zero(t, st.listSaves)

	w, notice, err = m.Remove(context.Background(), st, sofa.Item, "product")
	require.NoError(t, err)
	assert.Nil(t, notice)
	assert.True(t, w.IsEmpty())
	assert.Equal(t, 1, st.listSaves)
}

func TestWishlistManager_MergeAndClear(t *testing.T) {
	m, pub := newTestWishlistManager()
	ctx := context.Background()

	target := newFakeStore(store.KindRemote, "user:1")
	target.wishlist = domain.NewWishlist("user:1")
	target.wishlist.Add(sofa)

	local := newFakeStore(store.KindLocal, "")
	local.wishlist = domain.NewWishlist("")
	local.wishlist.Add(sofa)
	local.wishlist.Add(set)

	w, err := m.Merge(ctx, target, local)
	require.NoError(t, err)
	assert.Equal(t, []domain.WishlistEntry{
		{Item: "sofa-1", ItemType: domain.ItemTypeProduct},
		{Item: "set-1", ItemType: domain.ItemTypeCollection},
	}, w.Entries)
	assert.Equal(t, 1, local.listClears)

	w, err = m.Clear(ctx, target)
	require.NoError(t, err)
	assert.True(t, w.IsEmpty())
	assert.Equal(t, []string{
		"furniture.wishlist.updated",
		"furniture.wishlist.cleared",
		"furniture.wishlist.cleared",
	}, pub.published())
}
