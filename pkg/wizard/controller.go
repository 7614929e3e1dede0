package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/promowizard/internal/logging"
	"github.com/aretw0/promowizard/pkg/catalog"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/ports"
	"github.com/aretw0/promowizard/pkg/selection"
)

// Messages shown when a step refuses to advance.
const (
	MsgEnterName      = "enter a promotion name"
	MsgSelectProducts = "select at least one product with a valid discount"
	MsgSelectStores   = "select at least one store"
)

// Texts of the notifications emitted to the shell.
const (
	TitleValidationError = "Validation Error"
	TitleSuccess         = "Success"
	TitleError           = "Error"

	DefaultSuccessMessage = "Promotion created successfully!"
	DefaultErrorMessage   = "An unexpected error occurred."
)

var stepMessages = map[domain.Step]string{
	domain.StepName:     MsgEnterName,
	domain.StepProducts: MsgSelectProducts,
	domain.StepStores:   MsgSelectStores,
}

// Controller drives one wizard session.
type Controller struct {
	store     *selection.Store
	names     *NameStep
	products  *catalog.Manager
	stores    *StoreStep
	submitter ports.SubmitService

	shell     ports.Shell
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	accountID string
	strict    bool

	mu      sync.Mutex
	step    domain.Step
	busy    bool
	message string
	closed  bool
	unsubs  []func()
}

// Option configures the Controller.
type Option func(*Controller)

// WithShell sets the host that receives close, navigate and notify signals.
func WithShell(shell ports.Shell) Option {
	return func(c *Controller) {
		c.shell = shell
	}
}

// WithLogger sets a structured logger, shared with the step components.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks, shared with the step components.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithAccountID sets the record the promotion is created for.
func WithAccountID(id string) Option {
	return func(c *Controller) {
		c.accountID = id
	}
}

// WithStrictSubmit makes Submit revalidate every step instead of only the last one.
func WithStrictSubmit(strict bool) Option {
	return func(c *Controller) {
		c.strict = strict
	}
}

// New creates a controller with its own selection store and step components.
func New(catalogSvc ports.CatalogService, submitter ports.SubmitService, opts ...Option) *Controller {
	c := &Controller{
		store:     selection.New(),
		submitter: submitter,
		shell:     ports.NopShell{},
		logger:    logging.NewNop(),
		step:      domain.FirstStep,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.names = NewNameStep(c.store)
	c.products = catalog.NewManager(c.store, catalogSvc,
		catalog.WithLogger(c.logger),
		catalog.WithLifecycleHooks(c.hooks),
	)
	c.stores = NewStoreStep(c.store)

	c.Subscribe(func(s domain.Snapshot) {
		c.logger.Debug("Selection changed",
			"version", s.Version,
			"products", len(s.Products),
			"stores", len(s.Stores),
		)
	})
	return c
}

// Open starts a fresh session: the store is reset and the wizard is on step 1.
func (c *Controller) Open(ctx context.Context) {
	c.store.Reset()

	c.mu.Lock()
	c.step = domain.FirstStep
	c.busy = false
	c.message = ""
	c.closed = false
	c.mu.Unlock()

	c.enter(ctx, domain.FirstStep)
}

// Subscribe registers a store listener that is removed on Close.
func (c *Controller) Subscribe(fn selection.Listener) func() {
	unsub := c.store.Subscribe(fn)
	c.mu.Lock()
	c.unsubs = append(c.unsubs, unsub)
	c.mu.Unlock()
	return unsub
}

// Close tears the wizard down and asks the host to close it.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	c.shell.CloseRequested()
}

// Closed reports whether the wizard was closed.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Next validates the active step and advances when it is valid.
// On failure the wizard stays where it is and a validation message is held.
func (c *Controller) Next(ctx context.Context) bool {
	from := c.CurrentStep()
	if from >= domain.LastStep {
		return false
	}

	step := c.component(from)
	if !step.AllValid() {
		c.rejectStep(ctx, from, step)
		return false
	}

	to := from + 1
	c.moveTo(ctx, from, to)
	return true
}

// Previous moves one step back without revalidating. It returns false on step 1.
func (c *Controller) Previous(ctx context.Context) bool {
	from := c.CurrentStep()
	if from <= domain.FirstStep {
		return false
	}
	c.moveTo(ctx, from, from-1)
	return true
}

func (c *Controller) rejectStep(ctx context.Context, at domain.Step, step Step) {
	msg := stepMessages[at]
	display := step.Message()
	if display == "" {
		display = msg
	}

	c.mu.Lock()
	c.message = display
	c.mu.Unlock()

	c.logger.Debug("Step validation failed", "step", int(at), "message", display)
	c.shell.Notify(domain.Notification{Title: TitleValidationError, Message: msg, Severity: domain.SeverityError})

	if c.hooks.OnValidationFailed != nil {
		c.hooks.OnValidationFailed(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventValidation},
			From:      at,
			To:        at,
			Message:   display,
		})
	}
}

func (c *Controller) moveTo(ctx context.Context, from, to domain.Step) {
	c.mu.Lock()
	c.step = to
	c.message = ""
	c.mu.Unlock()

	c.logger.Debug("Step changed", "from", int(from), "to", int(to))
	if c.hooks.OnStepChange != nil {
		c.hooks.OnStepChange(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepChange},
			From:      from,
			To:        to,
		})
	}
	c.enter(ctx, to)
}

// enter activates a step. Fetch errors of step 2 are held by the catalog
// manager and do not block the transition.
func (c *Controller) enter(ctx context.Context, at domain.Step) {
	e, ok := c.component(at).(enterer)
	if !ok {
		return
	}
	if err := e.Enter(ctx); err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		c.logger.Warn("Step activation failed", "step", int(at), "err", err)
	}
}

// Resume re-activates the current step after Restore. Only the product step
// reloads; the name and store steps keep the working data of the record.
func (c *Controller) Resume(ctx context.Context) {
	if at := c.CurrentStep(); at == domain.StepProducts {
		c.enter(ctx, at)
	}
}

func (c *Controller) component(at domain.Step) Step {
	switch at {
	case domain.StepName:
		return c.names
	case domain.StepProducts:
		return c.products
	default:
		return c.stores
	}
}

// Restore rehydrates the controller from a persisted record without fetching.
// Call Resume to activate the restored step.
func (c *Controller) Restore(rec *domain.SessionRecord) {
	c.store.Restore(rec.Snapshot)

	step := rec.Step
	if step < domain.FirstStep || step > domain.LastStep {
		step = domain.FirstStep
	}

	c.mu.Lock()
	c.step = step
	if rec.AccountID != "" {
		c.accountID = rec.AccountID
	}
	c.mu.Unlock()

	c.products.SetCurrentPage(rec.CatalogPage)
	if rec.Draft != nil {
		c.names.SetName(rec.Draft.PromotionName)
		c.stores.SetStores(rec.Draft.Stores)
		return
	}
	c.enter(context.Background(), domain.StepName)
	c.enter(context.Background(), domain.StepStores)
}

// Record captures the controller state for persistence, including the working
// data of the name and store steps. SessionID is left to the caller.
func (c *Controller) Record() *domain.SessionRecord {
	c.mu.Lock()
	step, account := c.step, c.accountID
	c.mu.Unlock()

	return &domain.SessionRecord{
		AccountID:   account,
		Step:        step,
		CatalogPage: c.products.CurrentPage(),
		Snapshot:    c.store.State(),
		UpdatedAt:   time.Now().UTC(),
		Draft: &domain.StepDraft{
			PromotionName: c.names.Name(),
			Stores:        c.stores.Stores(),
		},
	}
}

// Store returns the selection store owned by the controller.
func (c *Controller) Store() *selection.Store { return c.store }

// NameStep returns the step-1 component.
func (c *Controller) NameStep() *NameStep { return c.names }

// Products returns the step-2 component.
func (c *Controller) Products() *catalog.Manager { return c.products }

// StoreStep returns the step-3 component.
func (c *Controller) StoreStep() *StoreStep { return c.stores }

// CurrentStep returns the active step.
func (c *Controller) CurrentStep() domain.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// StepTitle returns the heading of the active step.
func (c *Controller) StepTitle() string {
	return c.CurrentStep().Title()
}

// ValidationMessage returns the message of the last rejected transition, or "".
func (c *Controller) ValidationMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// SubmitLabel returns the label of the submit action.
func (c *Controller) SubmitLabel() string {
	if c.Busy() {
		return "Creating..."
	}
	return "Create Promotion"
}

// AccountID returns the record the promotion is created for.
func (c *Controller) AccountID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accountID
}

func (c *Controller) String() string {
	return fmt.Sprintf("wizard(step=%d, account=%s)", c.CurrentStep(), c.AccountID())
}
