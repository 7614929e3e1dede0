package memory

import (
	"context"
	"sync"

	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/google/uuid"
)

// Submitter implements ports.SubmitService by recording payloads.
// Each accepted payload gets a fresh UUID as promotion id.
type Submitter struct {
	mu       sync.Mutex
	payloads []domain.SubmissionPayload
	fail     error
}

// NewSubmitter creates a recording submitter.
func NewSubmitter() *Submitter {
	return &Submitter{}
}

// FailWith makes subsequent submissions fail with err. A nil err restores success.
func (s *Submitter) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// SavePromotion records the payload.
func (s *Submitter) SavePromotion(ctx context.Context, payload domain.SubmissionPayload) (domain.SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.SubmitResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return domain.SubmitResult{}, s.fail
	}
	s.payloads = append(s.payloads, payload)
	return domain.SubmitResult{PromotionID: uuid.NewString()}, nil
}

// Payloads returns every accepted payload in submission order.
func (s *Submitter) Payloads() []domain.SubmissionPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SubmissionPayload, len(s.payloads))
	copy(out, s.payloads)
	return out
}
