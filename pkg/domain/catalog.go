package domain

// CatalogRecord is one product as returned by the external catalog service.
type CatalogRecord struct {
	ID       string `json:"id" mapstructure:"id"`
	Name     string `json:"name" mapstructure:"name"`
	Category string `json:"category,omitempty" mapstructure:"category"`
}

// CatalogItem is a rendered catalog row. IsSelected and DiscountPercent are a view
// derived from the selection store, never authoritative.
type CatalogItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	IsSelected      bool    `json:"isSelected"`
	DiscountPercent float64 `json:"discountPercent"`
}

// DisplayCategory returns the category, or "N/A" when the record had none.
func (i CatalogItem) DisplayCategory() string {
	if i.Category == "" {
		return "N/A"
	}
	return i.Category
}

// Editable reports whether the discount input of the row is enabled.
func (i CatalogItem) Editable() bool {
	return i.IsSelected
}

// CatalogPage is the currently rendered page of the catalog.
type CatalogPage struct {
	PageNumber     int           `json:"pageNumber"`
	PageSize       int           `json:"pageSize"`
	TotalItemCount int           `json:"totalItemCount"`
	Items          []CatalogItem `json:"items"`
}
