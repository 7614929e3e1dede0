package domain

import "slices"

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// PromotionName is set when the name changed.
	PromotionName *string `json:"promotionName,omitempty"`

	// Products contains added or modified selections.
	Products []ProductSelection `json:"products,omitempty"`

	// RemovedProducts lists product IDs that are no longer selected.
	RemovedProducts []string `json:"removedProducts,omitempty"`

	// Stores holds the full store list when it changed. Stores are an ordered
	// sequence, so clients replace rather than merge.
	Stores []StoreSelection `json:"stores,omitempty"`

	Version uint64 `json:"version"`
}

// Diff calculates the difference between old and new.
// If old is nil, it returns a diff representing the entire new snapshot (initial load).
// It returns nil when nothing changed.
func Diff(old *Snapshot, new Snapshot) *SnapshotDiff {
	diff := &SnapshotDiff{Version: new.Version}

	if old == nil || old.PromotionName != new.PromotionName {
		name := new.PromotionName
		diff.PromotionName = &name
	}

	diff.Products, diff.RemovedProducts = diffProducts(old, new)

	if old == nil || !slices.Equal(old.Stores, new.Stores) {
		diff.Stores = slices.Clone(new.Stores)
		if diff.Stores == nil {
			diff.Stores = []StoreSelection{}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffProducts(old *Snapshot, new Snapshot) ([]ProductSelection, []string) {
	var changed []ProductSelection
	var removed []string

	if old == nil {
		return slices.Clone(new.Products), nil
	}

	for _, p := range new.Products {
		prev, ok := old.Product(p.ProductID)
		if !ok || prev != p {
			changed = append(changed, p)
		}
	}
	for _, p := range old.Products {
		if _, ok := new.Product(p.ProductID); !ok {
			removed = append(removed, p.ProductID)
		}
	}
	return changed, removed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.PromotionName == nil &&
		len(d.Products) == 0 &&
		len(d.RemovedProducts) == 0 &&
		d.Stores == nil
}
