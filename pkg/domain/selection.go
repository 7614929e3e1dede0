package domain

import (
	"math"
	"slices"
)

// Bounds of a product discount, in percent.
const (
	MinDiscount = 0
	MaxDiscount = 100
)

// ProductSelection is a chosen catalog product and its edited discount.
// Category is optional; the empty string means absent.
type ProductSelection struct {
	ProductID       string  `json:"productId"`
	ProductName     string  `json:"productName"`
	Category        string  `json:"category,omitempty"`
	DiscountPercent float64 `json:"discountPercent"`
}

// ClampDiscount limits v to [MinDiscount, MaxDiscount]. NaN counts as 0.
func ClampDiscount(v float64) float64 {
	if math.IsNaN(v) {
		return MinDiscount
	}
	return math.Max(MinDiscount, math.Min(MaxDiscount, v))
}

// StoreSelection is a chosen target store. LocationGroup is optional.
type StoreSelection struct {
	StoreID       string `json:"storeId"`
	StoreName     string `json:"storeName"`
	LocationGroup string `json:"locationGroup,omitempty"`
}

// Snapshot is an isolated copy of a wizard session.
type Snapshot struct {
	PromotionName string             `json:"promotionName"`
	Products      []ProductSelection `json:"selectedProducts"`
	Stores        []StoreSelection   `json:"selectedStores"`

	// Version increases by one on every store mutation.
	Version uint64 `json:"version"`
}

// Clone returns a copy that shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Products = slices.Clone(s.Products)
	out.Stores = slices.Clone(s.Stores)
	if out.Products == nil {
		out.Products = []ProductSelection{}
	}
	if out.Stores == nil {
		out.Stores = []StoreSelection{}
	}
	return out
}

// Product looks up a selected product by ID.
func (s Snapshot) Product(id string) (ProductSelection, bool) {
	for _, p := range s.Products {
		if p.ProductID == id {
			return p, true
		}
	}
	return ProductSelection{}, false
}
