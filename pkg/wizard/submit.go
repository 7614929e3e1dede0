package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/promowizard/pkg/domain"
)

// Submit creates the promotion from the store snapshot. It is only permitted on
// the last step and revalidates that step alone (every step in strict mode).
//
// The outcome is reported to the shell: a success toast, a close request and, when
// the service returned an id, a navigation request; or an error toast, in which
// case the wizard stays on the last step with its data intact for a retry.
func (c *Controller) Submit(ctx context.Context) (domain.SubmitResult, error) {
	c.mu.Lock()
	if c.step != domain.LastStep {
		c.mu.Unlock()
		return domain.SubmitResult{}, domain.ErrNotFinalStep
	}
	if c.busy {
		c.mu.Unlock()
		return domain.SubmitResult{}, domain.ErrSubmitInProgress
	}
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if at, ok := c.validateForSubmit(); !ok {
		c.rejectStep(ctx, at, c.component(at))
		return domain.SubmitResult{}, fmt.Errorf("step %d: %w", at, domain.ErrValidationFailed)
	}

	snap := c.store.State()
	payload := domain.NewSubmissionPayload(snap, c.AccountID())

	c.logger.Info("Submitting promotion",
		"promotion", payload.PromotionName,
		"products", len(payload.Products),
		"stores", len(payload.Stores),
	)

	start := time.Now()
	result, err := c.submitter.SavePromotion(ctx, payload)
	c.emitSubmit(ctx, result, payload, time.Since(start), err)

	if err != nil {
		msg := failureMessage(err)
		c.logger.Error("Promotion submission failed", "err", err)
		c.shell.Notify(domain.Notification{Title: TitleError, Message: msg, Severity: domain.SeverityError})
		return result, fmt.Errorf("submit promotion: %w", err)
	}

	msg := result.Message
	if msg == "" {
		msg = DefaultSuccessMessage
	}
	c.logger.Info("Promotion created", "promotion_id", result.PromotionID)
	c.shell.Notify(domain.Notification{Title: TitleSuccess, Message: msg, Severity: domain.SeveritySuccess})

	c.Close()
	if result.PromotionID != "" {
		c.shell.NavigateToRecord(result.PromotionID)
	}
	return result, nil
}

// validateForSubmit returns the first failing step, if any.
func (c *Controller) validateForSubmit() (domain.Step, bool) {
	steps := []domain.Step{domain.LastStep}
	if c.strict {
		steps = []domain.Step{domain.StepName, domain.StepProducts, domain.StepStores}
	}
	for _, at := range steps {
		if !c.component(at).AllValid() {
			return at, false
		}
	}
	return 0, true
}

func (c *Controller) emitSubmit(ctx context.Context, res domain.SubmitResult, p domain.SubmissionPayload, d time.Duration, err error) {
	if c.hooks.OnSubmit == nil {
		return
	}
	c.hooks.OnSubmit(ctx, &domain.SubmitEvent{
		EventBase:   domain.EventBase{Timestamp: time.Now(), Type: domain.EventSubmit},
		PromotionID: res.PromotionID,
		Products:    len(p.Products),
		Stores:      len(p.Stores),
		Duration:    d,
		Err:         err,
	})
}

// failureMessage picks the most specific message available from err.
func failureMessage(err error) string {
	var svcErr *domain.ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}
