// Package catalog implements the paginated product picker of the promotion wizard.
//
// A Manager renders one page of catalog products at a time and writes every
// selection edit straight into the session's selection.Store, so a product picked
// on one page stays picked whichever page is displayed afterwards.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/promowizard/internal/logging"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/ports"
	"github.com/aretw0/promowizard/pkg/selection"
)

// DefaultPageSize is used until the catalog service reports its own page size.
const DefaultPageSize = 5

// Messages held by the manager for display.
const (
	MsgLoadFailed      = "Failed to load products"
	MsgNoProducts      = "select at least one product."
	MsgMissingDiscount = "every selected product needs a discount greater than 0."
)

// Manager is the step-2 component: a paginated selection over the catalog.
type Manager struct {
	store   *selection.Store
	service ports.CatalogService
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	mu        sync.Mutex
	page      int
	pageSize  int
	total     int
	items     []domain.CatalogItem
	loading   bool
	lastError string
	seq       uint64 // sequence number of the latest issued fetch
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a manager reading and writing the product set of store.
func NewManager(store *selection.Store, service ports.CatalogService, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		service:  service,
		logger:   logging.NewNop(),
		page:     1,
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enter activates the step by fetching the current page.
func (m *Manager) Enter(ctx context.Context) error {
	return m.Fetch(ctx)
}

// Fetch loads the current page and reconciles each row against the store.
// On failure the previously rendered rows are kept and a message is held.
// A response overtaken by a newer fetch is discarded with domain.ErrStaleResponse.
func (m *Manager) Fetch(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.lastError = ""
	m.seq++
	seq := m.seq
	page := m.page
	m.mu.Unlock()

	start := time.Now()
	resp, err := m.service.FetchPage(ctx, ports.CatalogRequest{PageNumber: page})
	elapsed := time.Since(start)

	m.mu.Lock()
	defer m.mu.Unlock()

	if seq != m.seq {
		m.logger.Debug("Discarding stale catalog response", "page", page, "seq", seq, "latest", m.seq)
		m.emitFetch(ctx, page, elapsed, true, err)
		return domain.ErrStaleResponse
	}
	defer func() { m.loading = false }()

	if err != nil {
		m.lastError = MsgLoadFailed
		m.logger.Warn("Catalog fetch failed", "page", page, "err", err)
		m.emitFetch(ctx, page, elapsed, false, err)
		return fmt.Errorf("fetch catalog page %d: %w", page, err)
	}

	if resp.PageSize > 0 {
		m.pageSize = resp.PageSize
	}
	m.total = resp.TotalItemCount
	m.items = make([]domain.CatalogItem, 0, len(resp.Records))
	for _, rec := range resp.Records {
		item := domain.CatalogItem{
			ID:       rec.ID,
			Name:     rec.Name,
			Category: rec.Category,
		}
		if sel, ok := m.store.Product(rec.ID); ok {
			item.IsSelected = true
			item.DiscountPercent = sel.DiscountPercent
		}
		m.items = append(m.items, item)
	}

	m.logger.Debug("Catalog page loaded", "page", page, "items", len(m.items), "total", m.total)
	m.emitFetch(ctx, page, elapsed, false, nil)
	return nil
}

func (m *Manager) emitFetch(ctx context.Context, page int, d time.Duration, stale bool, err error) {
	if m.hooks.OnCatalogFetch == nil {
		return
	}
	m.hooks.OnCatalogFetch(ctx, &domain.FetchEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventCatalogLoad},
		PageNumber: page,
		Duration:   d,
		Stale:      stale,
		Err:        err,
	})
}

// Toggle checks or unchecks the row with the given id.
// Checking upserts the product with the row's discount; unchecking removes it
// from the store while the row keeps its discount for a later re-check.
func (m *Manager) Toggle(id string, checked bool) error {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("toggle %q: %w", id, domain.ErrItemNotOnPage)
	}
	m.items[idx].IsSelected = checked
	item := m.items[idx]
	m.mu.Unlock()

	if checked {
		m.store.SetProductSelection(domain.ProductSelection{
			ProductID:       item.ID,
			ProductName:     item.Name,
			Category:        item.Category,
			DiscountPercent: item.DiscountPercent,
		})
	} else {
		m.store.RemoveProductSelection(item.ID)
	}
	return nil
}

// EditDiscount parses raw as a percentage and applies it to the row.
// Non-numeric input counts as 0; the result is clamped to [0, 100].
func (m *Manager) EditDiscount(id string, raw string) (float64, error) {
	return m.SetDiscount(id, ParseDiscount(raw))
}

// SetDiscount applies a clamped discount to the row and, when the product is
// selected, to its entry in the store.
func (m *Manager) SetDiscount(id string, value float64) (float64, error) {
	value = domain.ClampDiscount(value)

	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return 0, fmt.Errorf("edit discount %q: %w", id, domain.ErrItemNotOnPage)
	}
	m.items[idx].DiscountPercent = value
	m.mu.Unlock()

	if m.store.IsProductSelected(id) {
		m.store.SetProductSelection(domain.ProductSelection{ProductID: id, DiscountPercent: value})
	}
	return value, nil
}

// ParseDiscount converts user input to a number, treating anything non-numeric as 0.
func ParseDiscount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (m *Manager) indexLocked(id string) int {
	for i, it := range m.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// AllValid checks the accumulated product set in the store, not just the rendered
// page. The set is written continuously by Toggle and SetDiscount, so a valid
// result needs no further commit and repeated calls do not touch the store.
func (m *Manager) AllValid() bool {
	state := m.store.State()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(state.Products) == 0 {
		m.lastError = MsgNoProducts
		return false
	}
	for _, p := range state.Products {
		if !(p.DiscountPercent > 0) {
			m.lastError = MsgMissingDiscount
			return false
		}
	}
	m.lastError = ""
	return true
}

// Message returns the held validation or fetch message, if any.
func (m *Manager) Message() string {
	return m.LastError()
}

// LastError returns the held message, or "".
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// NextPage moves one page forward and fetches it.
func (m *Manager) NextPage(ctx context.Context) error {
	m.mu.Lock()
	target := m.page + 1
	m.mu.Unlock()
	return m.GoToPage(ctx, target)
}

// PreviousPage moves one page back and fetches it.
func (m *Manager) PreviousPage(ctx context.Context) error {
	m.mu.Lock()
	target := m.page - 1
	m.mu.Unlock()
	return m.GoToPage(ctx, target)
}

// GoToPage moves to page n within [1, TotalPages()] and fetches it.
func (m *Manager) GoToPage(ctx context.Context, n int) error {
	m.mu.Lock()
	if n < 1 || n > m.totalPagesLocked() {
		m.mu.Unlock()
		return fmt.Errorf("page %d: %w", n, domain.ErrPageOutOfRange)
	}
	m.page = n
	m.mu.Unlock()
	return m.Fetch(ctx)
}

// SetCurrentPage positions the manager without fetching. Used when a session
// is rehydrated; the next Enter or Fetch loads the page.
func (m *Manager) SetCurrentPage(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 1 {
		n = 1
	}
	m.page = n
}

// CurrentPage returns the 1-based page number.
func (m *Manager) CurrentPage() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page
}

func (m *Manager) totalPagesLocked() int {
	if m.pageSize <= 0 {
		return 0
	}
	return (m.total + m.pageSize - 1) / m.pageSize
}

// TotalPages returns ceil(total / pageSize).
func (m *Manager) TotalPages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalPagesLocked()
}

// HasPreviousPage reports whether PreviousPage would move.
func (m *Manager) HasPreviousPage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page > 1
}

// HasNextPage reports whether NextPage would move.
func (m *Manager) HasNextPage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page < m.totalPagesLocked()
}

// PageInfo describes the visible range, e.g. "6-10 of 12".
func (m *Manager) PageInfo() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := (m.page-1)*m.pageSize + 1
	end := min(m.page*m.pageSize, m.total)
	return fmt.Sprintf("%d-%d of %d", start, end, m.total)
}

// Loading reports whether a fetch is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Page returns a copy of the rendered page.
func (m *Manager) Page() domain.CatalogPage {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]domain.CatalogItem, len(m.items))
	copy(items, m.items)
	return domain.CatalogPage{
		PageNumber:     m.page,
		PageSize:       m.pageSize,
		TotalItemCount: m.total,
		Items:          items,
	}
}

// SelectedCount returns the number of selected products across all pages.
func (m *Manager) SelectedCount() int {
	return m.store.SelectedProductCount()
}
