package ports

import (
	"context"

	"github.com/aretw0/promowizard/pkg/domain"
)

// SubmitService creates a promotion from the assembled payload.
// Failures should carry an operator-facing message, preferably as *domain.ServiceError.
type SubmitService interface {
	SavePromotion(ctx context.Context, payload domain.SubmissionPayload) (domain.SubmitResult, error)
}

// SubmitServiceFunc adapts a function to SubmitService.
type SubmitServiceFunc func(ctx context.Context, payload domain.SubmissionPayload) (domain.SubmitResult, error)

// SavePromotion calls f.
func (f SubmitServiceFunc) SavePromotion(ctx context.Context, payload domain.SubmissionPayload) (domain.SubmitResult, error) {
	return f(ctx, payload)
}
