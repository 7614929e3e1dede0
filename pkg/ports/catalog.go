package ports

import (
	"context"

	"github.com/aretw0/promowizard/pkg/domain"
)

// CatalogRequest asks for one catalog page.
type CatalogRequest struct {
	// CategoryFilter restricts the page to one category. Nil means all categories.
	CategoryFilter *string

	// PageNumber is 1-based.
	PageNumber int
}

// CatalogResponse is one page of catalog records.
type CatalogResponse struct {
	PageSize       int                    `json:"pageSize" mapstructure:"pageSize"`
	TotalItemCount int                    `json:"totalItemCount" mapstructure:"totalItemCount"`
	Records        []domain.CatalogRecord `json:"records" mapstructure:"records"`
}

// CatalogService fetches catalog pages.
type CatalogService interface {
	FetchPage(ctx context.Context, req CatalogRequest) (CatalogResponse, error)
}

// CatalogServiceFunc adapts a function to CatalogService.
type CatalogServiceFunc func(ctx context.Context, req CatalogRequest) (CatalogResponse, error)

// FetchPage calls f.
func (f CatalogServiceFunc) FetchPage(ctx context.Context, req CatalogRequest) (CatalogResponse, error) {
	return f(ctx, req)
}
