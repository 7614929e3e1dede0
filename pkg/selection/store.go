package selection

import (
	"slices"
	"sync"

	"github.com/aretw0/promowizard/pkg/domain"
)

// Listener receives the snapshot produced by a mutation.
// Listeners must not mutate the store they are subscribed to.
type Listener func(domain.Snapshot)

// Store holds the selection state of one wizard session.
// Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	name     string
	products map[string]domain.ProductSelection
	order    []string // first-insertion order of product IDs
	stores   []domain.StoreSelection
	version  uint64

	listenersMu sync.Mutex
	listeners   map[uint64]Listener
	nextID      uint64
}

// New creates a store holding the default (empty) session.
func New() *Store {
	return &Store{
		products:  make(map[string]domain.ProductSelection),
		listeners: make(map[uint64]Listener),
	}
}

// Subscribe registers fn to be called with the latest snapshot on every future
// mutation. The returned function unsubscribes; calling it more than once is a no-op.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			delete(s.listeners, id)
		})
	}
}

// Listeners returns the number of active subscriptions.
func (s *Store) Listeners() int {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	return len(s.listeners)
}

// mutate applies fn under the write lock, bumps the version and notifies
// listeners with the resulting snapshot once the lock is released.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Store) notify(snap domain.Snapshot) {
	s.listenersMu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		// Each listener gets its own copy so one cannot alter what another sees.
		fn(snap.Clone())
	}
}

func (s *Store) snapshotLocked() domain.Snapshot {
	products := make([]domain.ProductSelection, 0, len(s.order))
	for _, id := range s.order {
		products = append(products, s.products[id])
	}
	stores := slices.Clone(s.stores)
	if stores == nil {
		stores = []domain.StoreSelection{}
	}
	return domain.Snapshot{
		PromotionName: s.name,
		Products:      products,
		Stores:        stores,
		Version:       s.version,
	}
}

// State returns an isolated snapshot of the session.
func (s *Store) State() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Version returns the mutation counter of the store.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Reset replaces the state with defaults.
func (s *Store) Reset() {
	s.mutate(func() {
		s.name = ""
		s.products = make(map[string]domain.ProductSelection)
		s.order = nil
		s.stores = nil
	})
}

// Restore replaces the whole state with the content of snap.
func (s *Store) Restore(snap domain.Snapshot) {
	s.mutate(func() {
		s.name = snap.PromotionName
		s.replaceProductsLocked(snap.Products)
		s.stores = slices.Clone(snap.Stores)
		if snap.Version > s.version {
			// Continue the persisted sequence; mutate adds one more.
			s.version = snap.Version
		}
	})
}

// UpdatePromotionName sets the promotion name.
func (s *Store) UpdatePromotionName(name string) {
	s.mutate(func() {
		s.name = name
	})
}

// SetProductSelection inserts p or merges it into the existing selection with
// the same ProductID. When merging, non-empty string fields of p overwrite and
// DiscountPercent always overwrites. Discounts are clamped to [0, 100].
func (s *Store) SetProductSelection(p domain.ProductSelection) {
	p.DiscountPercent = domain.ClampDiscount(p.DiscountPercent)
	s.mutate(func() {
		existing, ok := s.products[p.ProductID]
		if !ok {
			s.products[p.ProductID] = p
			s.order = append(s.order, p.ProductID)
			return
		}
		if p.ProductName != "" {
			existing.ProductName = p.ProductName
		}
		if p.Category != "" {
			existing.Category = p.Category
		}
		existing.DiscountPercent = p.DiscountPercent
		s.products[p.ProductID] = existing
	})
}

// RemoveProductSelection deletes the selection for id. Absent ids are ignored.
func (s *Store) RemoveProductSelection(id string) {
	s.mutate(func() {
		if _, ok := s.products[id]; !ok {
			return
		}
		delete(s.products, id)
		s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	})
}

// ReplaceProductSelections replaces the whole product set.
// Later entries win when ids repeat; discounts are clamped to [0, 100].
func (s *Store) ReplaceProductSelections(products []domain.ProductSelection) {
	s.mutate(func() {
		s.replaceProductsLocked(products)
	})
}

func (s *Store) replaceProductsLocked(products []domain.ProductSelection) {
	s.products = make(map[string]domain.ProductSelection, len(products))
	s.order = s.order[:0:0]
	for _, p := range products {
		if _, ok := s.products[p.ProductID]; !ok {
			s.order = append(s.order, p.ProductID)
		}
		p.DiscountPercent = domain.ClampDiscount(p.DiscountPercent)
		s.products[p.ProductID] = p
	}
}

// ReplaceStoreSelections replaces the whole store list.
func (s *Store) ReplaceStoreSelections(stores []domain.StoreSelection) {
	s.mutate(func() {
		s.stores = slices.Clone(stores)
	})
}

// IsProductSelected reports whether id is in the product set.
func (s *Store) IsProductSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.products[id]
	return ok
}

// DiscountFor returns the discount of a selected product, or 0 if absent.
func (s *Store) DiscountFor(id string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products[id].DiscountPercent
}

// Product returns the selection for id.
func (s *Store) Product(id string) (domain.ProductSelection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// SelectedProductCount returns the size of the product set.
func (s *Store) SelectedProductCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}
