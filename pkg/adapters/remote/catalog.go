package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

type rawPage struct {
	PageSize       int              `mapstructure:"pageSize"`
	TotalItemCount int              `mapstructure:"totalItemCount"`
	Records        []map[string]any `mapstructure:"records"`
}

// FetchPage calls GET {base}/products?pageNumber=N[&type=X].
func (c *Client) FetchPage(ctx context.Context, req ports.CatalogRequest) (ports.CatalogResponse, error) {
	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(req.PageNumber))
	if req.CategoryFilter != nil {
		q.Set("type", *req.CategoryFilter)
	}

	var body map[string]any
	if err := c.do(ctx, http.MethodGet, c.endpoint("/products", q), nil, &body); err != nil {
		return ports.CatalogResponse{}, err
	}

	var raw rawPage
	if err := mapstructure.WeakDecode(body, &raw); err != nil {
		return ports.CatalogResponse{}, fmt.Errorf("failed to decode catalog page: %w", err)
	}

	resp := ports.CatalogResponse{
		PageSize:       raw.PageSize,
		TotalItemCount: raw.TotalItemCount,
		Records:        make([]domain.CatalogRecord, 0, len(raw.Records)),
	}
	for i, r := range raw.Records {
		rec, err := c.decodeRecord(r)
		if err != nil {
			return ports.CatalogResponse{}, fmt.Errorf("catalog record %d: %w", i, err)
		}
		resp.Records = append(resp.Records, rec)
	}
	return resp, nil
}

// decodeRecord renames the configured keys to the canonical ones and decodes
// with weak typing, so numeric ids become strings.
func (c *Client) decodeRecord(r map[string]any) (domain.CatalogRecord, error) {
	normalized := map[string]any{
		"id":       r[c.fields.ID],
		"name":     r[c.fields.Name],
		"category": r[c.fields.Category],
	}

	var rec domain.CatalogRecord
	if err := mapstructure.WeakDecode(normalized, &rec); err != nil {
		return rec, err
	}
	if rec.ID == "" {
		return rec, fmt.Errorf("missing %q", c.fields.ID)
	}
	return rec, nil
}
