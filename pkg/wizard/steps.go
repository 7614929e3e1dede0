package wizard

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/selection"
)

// Step is the capability the controller needs from a step component.
// AllValid validates the step and, on success, commits its working data to the store.
// Message returns a step-specific message that takes precedence for display.
type Step interface {
	AllValid() bool
	Message() string
}

// enterer is implemented by steps that load state when they become active.
type enterer interface {
	Enter(ctx context.Context) error
}

// NameStep is step 1: the promotion name.
type NameStep struct {
	store *selection.Store

	mu   sync.Mutex
	name string
}

// NewNameStep creates the step bound to store.
func NewNameStep(store *selection.Store) *NameStep {
	return &NameStep{store: store}
}

// Enter restores the working name from the store.
func (s *NameStep) Enter(ctx context.Context) error {
	name := s.store.State().PromotionName
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	return nil
}

// SetName updates the working name. It is committed on the next AllValid.
func (s *NameStep) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// Name returns the working name.
func (s *NameStep) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// AllValid requires a non-blank name and commits it.
func (s *NameStep) AllValid() bool {
	name := s.Name()
	if strings.TrimSpace(name) == "" {
		return false
	}
	s.store.UpdatePromotionName(name)
	return true
}

// Message is always empty; the controller's message is shown.
func (s *NameStep) Message() string { return "" }

// StoreStep is step 3: target stores.
type StoreStep struct {
	store *selection.Store

	mu      sync.Mutex
	working []domain.StoreSelection
}

// NewStoreStep creates the step bound to store.
func NewStoreStep(store *selection.Store) *StoreStep {
	return &StoreStep{store: store}
}

// Enter restores the working list from the store.
func (s *StoreStep) Enter(ctx context.Context) error {
	stores := s.store.State().Stores
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = stores
	return nil
}

// SetStores replaces the working list.
func (s *StoreStep) SetStores(stores []domain.StoreSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = slices.Clone(stores)
}

// AddStore appends st, replacing an entry with the same StoreID in place.
func (s *StoreStep) AddStore(st domain.StoreSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.IndexFunc(s.working, func(x domain.StoreSelection) bool { return x.StoreID == st.StoreID }); i >= 0 {
		s.working[i] = st
		return
	}
	s.working = append(s.working, st)
}

// RemoveStore drops the store with the given id from the working list.
func (s *StoreStep) RemoveStore(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = slices.DeleteFunc(s.working, func(x domain.StoreSelection) bool { return x.StoreID == id })
}

// Stores returns a copy of the working list.
func (s *StoreStep) Stores() []domain.StoreSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.working)
}

// AllValid requires at least one store and commits the working list.
func (s *StoreStep) AllValid() bool {
	stores := s.Stores()
	if len(stores) == 0 {
		return false
	}
	s.store.ReplaceStoreSelections(stores)
	return true
}

// Message is always empty; the controller's message is shown.
func (s *StoreStep) Message() string { return "" }
