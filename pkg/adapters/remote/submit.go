package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aretw0/promowizard/pkg/domain"
)

// SavePromotion calls POST {base}/promotions with the payload.
// An empty success body yields an empty result.
func (c *Client) SavePromotion(ctx context.Context, payload domain.SubmissionPayload) (domain.SubmitResult, error) {
	var res domain.SubmitResult
	if err := c.do(ctx, http.MethodPost, c.endpoint("/promotions", url.Values{}), payload, &res); err != nil {
		return domain.SubmitResult{}, err
	}
	c.logger.Info("Promotion saved remotely", "promotion_id", res.PromotionID)
	return res, nil
}
