package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/shared"
)

type memoryRepo struct {
	items  map[int64]*Item
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]*Item)}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *it
	return &copied, nil
}

func (r *memoryRepo) GetMany(ctx context.Context, ids []int64) (map[int64]Item, error) {
	out := make(map[int64]Item)
	for _, id := range ids {
		if it, ok := r.items[id]; ok {
			out[id] = *it
		}
	}
	return out, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListItemsRequest) ([]Item, int, error) {
	var out []Item
	for _, it := range r.items {
		out = append(out, *it)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, it Item) (int64, error) {
	for _, existing := range r.items {
		if existing.SKU == it.SKU {
			return 0, shared.ErrDuplicate
		}
	}
	r.nextID++
	it.ID = r.nextID
	it.IsActive = true
	r.items[it.ID] = &it
	return it.ID, nil
}

func (r *memoryRepo) Update(ctx context.Context, it Item) error {
	if _, ok := r.items[it.ID]; !ok {
		return shared.ErrNotFound
	}
	r.items[it.ID] = &it
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func strptr(s string) *string { return &s }

func TestCreateItem(t *testing.T) {
	service := NewService(newMemoryRepo())

	item, err := service.Create(context.Background(), CreateItemRequest{
		SKU:               "PPR-A4-80",
		Name:              "A4 Paper 80gsm",
		Unit:              "ream",
		SalesUnitPrice:    6.50,
		PurchaseUnitPrice: 4.80,
		Description:       strptr("500 sheets per ream"),
	})
	require.NoError(t, err)
	require.Equal(t, "PPR-A4-80", item.SKU)
	require.True(t, item.IsActive)
}

func TestCreateItemWithoutDescription(t *testing.T) {
	service := NewService(newMemoryRepo())

	item, err := service.Create(context.Background(), CreateItemRequest{
		SKU:  "SVC-DLV",
		Name: "Local Delivery",
		Unit: "trip",
	})
	require.NoError(t, err)
	require.Nil(t, item.Description)

	// The description column is NOT NULL; a nil pointer must bind as "".
	require.Equal(t, "", descriptionOrEmpty(item.Description))
	require.Equal(t, "Within city limits", descriptionOrEmpty(strptr("Within city limits")))
}

func TestCreateItemValidation(t *testing.T) {
	service := NewService(newMemoryRepo())

	_, err := service.Create(context.Background(), CreateItemRequest{Name: "No SKU", Unit: "pcs"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateItemDuplicateSKU(t *testing.T) {
	service := NewService(newMemoryRepo())

	req := CreateItemRequest{SKU: "BOX-M", Name: "Carton Box", Unit: "pcs"}
	_, err := service.Create(context.Background(), req)
	require.NoError(t, err)
	_, err = service.Create(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestLookupForResolvesBatch(t *testing.T) {
	service := NewService(newMemoryRepo())

	item, err := service.Create(context.Background(), CreateItemRequest{
		SKU:               "INK-BLK",
		Name:              "Ink Cartridge Black",
		Unit:              "pcs",
		SalesUnitPrice:    24.99,
		PurchaseUnitPrice: 18.20,
		Description:       strptr("Compatible with LJ-1100 series"),
	})
	require.NoError(t, err)

	lookup, err := service.LookupFor(context.Background(), []int64{item.ID, 999})
	require.NoError(t, err)

	found, ok := lookup(item.ID)
	require.True(t, ok)
	require.Equal(t, "pcs", found.Unit)
	require.InDelta(t, 24.99, found.SalesUnitPrice, 0.001)
	require.InDelta(t, 18.20, found.PurchaseUnitPrice, 0.001)
	require.Equal(t, "Compatible with LJ-1100 series", found.Description)

	_, ok = lookup(999)
	require.False(t, ok)
}
