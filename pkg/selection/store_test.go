package selection_test

import (
	"sync"
	"testing"

	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widget() domain.ProductSelection {
	return domain.ProductSelection{ProductID: "P1", ProductName: "Widget", Category: "Tools", DiscountPercent: 25}
}

func TestStore_Reset(t *testing.T) {
	s := selection.New()
	s.UpdatePromotionName("Spring Sale")
	s.SetProductSelection(widget())
	s.ReplaceStoreSelections([]domain.StoreSelection{{StoreID: "S1", StoreName: "Main St"}})

	s.Reset()

	state := s.State()
	assert.Equal(t, "", state.PromotionName)
	assert.Empty(t, state.Products)
	assert.Empty(t, state.Stores)
	assert.NotNil(t, state.Products, "snapshot slices are never nil")
	assert.Equal(t, 0, s.SelectedProductCount())
}

func TestStore_SetProductSelection_Merge(t *testing.T) {
	s := selection.New()
	s.SetProductSelection(widget())

	// Discount-only update keeps the other fields.
	s.SetProductSelection(domain.ProductSelection{ProductID: "P1", DiscountPercent: 40})

	p, ok := s.Product("P1")
	require.True(t, ok)
	assert.Equal(t, "Widget", p.ProductName)
	assert.Equal(t, "Tools", p.Category)
	assert.Equal(t, 40.0, p.DiscountPercent)
	assert.Equal(t, 1, s.SelectedProductCount())

	// Later fields win.
	s.SetProductSelection(domain.ProductSelection{ProductID: "P1", ProductName: "Widget XL", DiscountPercent: 0})
	p, _ = s.Product("P1")
	assert.Equal(t, "Widget XL", p.ProductName)
	assert.Equal(t, 0.0, p.DiscountPercent)
}

func TestStore_RemoveProductSelection(t *testing.T) {
	s := selection.New()
	s.SetProductSelection(widget())
	s.SetProductSelection(domain.ProductSelection{ProductID: "P2", ProductName: "Gadget"})

	s.RemoveProductSelection("P1")
	s.RemoveProductSelection("missing") // no-op

	assert.False(t, s.IsProductSelected("P1"))
	assert.True(t, s.IsProductSelected("P2"))
	assert.Equal(t, 0.0, s.DiscountFor("P1"))

	state := s.State()
	require.Len(t, state.Products, 1)
	assert.Equal(t, "P2", state.Products[0].ProductID)
}

func TestStore_SnapshotOrderIsInsertionOrder(t *testing.T) {
	s := selection.New()
	for _, id := range []string{"P3", "P1", "P2"} {
		s.SetProductSelection(domain.ProductSelection{ProductID: id})
	}
	s.SetProductSelection(domain.ProductSelection{ProductID: "P3", DiscountPercent: 5}) // merge keeps position

	var ids []string
	for _, p := range s.State().Products {
		ids = append(ids, p.ProductID)
	}
	assert.Equal(t, []string{"P3", "P1", "P2"}, ids)
}

func TestStore_ReplaceProductSelections(t *testing.T) {
	s := selection.New()
	s.SetProductSelection(widget())

	s.ReplaceProductSelections([]domain.ProductSelection{
		{ProductID: "P2", DiscountPercent: 10},
		{ProductID: "P2", DiscountPercent: 20},
	})

	assert.False(t, s.IsProductSelected("P1"))
	assert.Equal(t, 1, s.SelectedProductCount())
	assert.Equal(t, 20.0, s.DiscountFor("P2"))
}

func TestStore_StateIsIsolated(t *testing.T) {
	s := selection.New()
	s.SetProductSelection(widget())
	s.ReplaceStoreSelections([]domain.StoreSelection{{StoreID: "S1"}})

	state := s.State()
	state.Products[0].DiscountPercent = 99
	state.Stores[0].StoreID = "hacked"

	assert.Equal(t, 25.0, s.DiscountFor("P1"))
	assert.Equal(t, "S1", s.State().Stores[0].StoreID)

	// The input slice of a replace is not retained either.
	in := []domain.StoreSelection{{StoreID: "S2"}}
	s.ReplaceStoreSelections(in)
	in[0].StoreID = "changed"
	assert.Equal(t, "S2", s.State().Stores[0].StoreID)
}

func TestStore_Subscribe(t *testing.T) {
	s := selection.New()

	var first, second []domain.Snapshot
	unsub1 := s.Subscribe(func(snap domain.Snapshot) { first = append(first, snap) })
	unsub2 := s.Subscribe(func(snap domain.Snapshot) { second = append(second, snap) })
	assert.Equal(t, 2, s.Listeners())

	s.UpdatePromotionName("Spring Sale")

	// Synchronous fan-out: both listeners ran before the call returned.
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "Spring Sale", first[0].PromotionName)
	assert.Equal(t, uint64(1), first[0].Version)

	unsub1()
	unsub1() // idempotent
	s.SetProductSelection(widget())

	assert.Len(t, first, 1)
	require.Len(t, second, 2)
	assert.Len(t, second[1].Products, 1)

	unsub2()
	assert.Equal(t, 0, s.Listeners())
}

func TestStore_ResetNotifies(t *testing.T) {
	s := selection.New()
	s.UpdatePromotionName("x")

	var got *domain.Snapshot
	defer s.Subscribe(func(snap domain.Snapshot) { got = &snap })()

	s.Reset()
	require.NotNil(t, got)
	assert.Equal(t, "", got.PromotionName)
}

func TestStore_Restore(t *testing.T) {
	s := selection.New()
	s.Restore(domain.Snapshot{
		PromotionName: "Spring Sale",
		Products:      []domain.ProductSelection{widget()},
		Stores:        []domain.StoreSelection{{StoreID: "S1", StoreName: "Main St"}},
		Version:       10,
	})

	state := s.State()
	assert.Equal(t, "Spring Sale", state.PromotionName)
	assert.True(t, s.IsProductSelected("P1"))
	assert.Len(t, state.Stores, 1)
	assert.Equal(t, uint64(11), state.Version)
}

func TestStore_ClampsDiscounts(t *testing.T) {
	s := selection.New()
	s.ReplaceProductSelections([]domain.ProductSelection{
		{ProductID: "P1", DiscountPercent: 40},
		{ProductID: "P2", DiscountPercent: -5},
	})
	s.SetProductSelection(domain.ProductSelection{ProductID: "P3", DiscountPercent: 250})
	s.SetProductSelection(domain.ProductSelection{ProductID: "P1", DiscountPercent: 101})

	assert.Equal(t, 100.0, s.DiscountFor("P1"))
	assert.Equal(t, 0.0, s.DiscountFor("P2"))
	assert.Equal(t, 100.0, s.DiscountFor("P3"))

	// A persisted record is held to the same bounds.
	s.Restore(domain.Snapshot{Products: []domain.ProductSelection{{ProductID: "P4", DiscountPercent: 150}}})
	p, ok := s.State().Product("P4")
	require.True(t, ok)
	assert.Equal(t, 100.0, p.DiscountPercent)
}

func TestStore_ConcurrentMutations(t *testing.T) {
	s := selection.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.SetProductSelection(domain.ProductSelection{ProductID: string(rune('A' + i%26))})
			_ = s.State()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 26, s.SelectedProductCount())
	assert.Equal(t, uint64(50), s.Version())
}
