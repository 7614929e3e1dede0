package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	widget := ProductSelection{ProductID: "P1", ProductName: "Widget", Category: "Tools", DiscountPercent: 25}
	gadget := ProductSelection{ProductID: "P2", ProductName: "Gadget", DiscountPercent: 10}
	mainSt := StoreSelection{StoreID: "S1", StoreName: "Main St"}

	tests := []struct {
		name        string
		old         *Snapshot
		new         Snapshot
		wantNil     bool
		wantName    bool
		wantChanged []string
		wantRemoved []string
		wantStores  bool
	}{
		{
			name:        "Initial Load (Old is Nil)",
			old:         nil,
			new:         Snapshot{PromotionName: "Spring Sale", Products: []ProductSelection{widget}, Stores: []StoreSelection{mainSt}},
			wantName:    true,
			wantChanged: []string{"P1"},
			wantStores:  true,
		},
		{
			name:    "No Changes",
			old:     &Snapshot{PromotionName: "Spring Sale", Products: []ProductSelection{widget}},
			new:     Snapshot{PromotionName: "Spring Sale", Products: []ProductSelection{widget}},
			wantNil: true,
		},
		{
			name:        "Discount Edit",
			old:         &Snapshot{Products: []ProductSelection{widget, gadget}},
			new:         Snapshot{Products: []ProductSelection{widget, {ProductID: "P2", ProductName: "Gadget", DiscountPercent: 15}}},
			wantChanged: []string{"P2"},
		},
		{
			name:        "Removal",
			old:         &Snapshot{Products: []ProductSelection{widget, gadget}},
			new:         Snapshot{Products: []ProductSelection{widget}},
			wantRemoved: []string{"P2"},
		},
		{
			name:       "Stores Replaced",
			old:        &Snapshot{},
			new:        Snapshot{Stores: []StoreSelection{mainSt}},
			wantStores: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil diff, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected diff, got nil")
			}
			if (got.PromotionName != nil) != tt.wantName {
				t.Errorf("PromotionName set = %v, want %v", got.PromotionName != nil, tt.wantName)
			}
			var changed []string
			for _, p := range got.Products {
				changed = append(changed, p.ProductID)
			}
			if strings.Join(changed, ",") != strings.Join(tt.wantChanged, ",") {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if strings.Join(got.RemovedProducts, ",") != strings.Join(tt.wantRemoved, ",") {
				t.Errorf("removed = %v, want %v", got.RemovedProducts, tt.wantRemoved)
			}
			if (got.Stores != nil) != tt.wantStores {
				t.Errorf("Stores set = %v, want %v", got.Stores != nil, tt.wantStores)
			}
		})
	}
}

func TestNewSubmissionPayload_JSON(t *testing.T) {
	snap := Snapshot{
		PromotionName: "Spring Sale",
		Products:      []ProductSelection{{ProductID: "P1", ProductName: "Widget", Category: "Tools", DiscountPercent: 25}},
		Stores:        []StoreSelection{{StoreID: "S1", StoreName: "Main St"}},
	}

	data, err := json.Marshal(NewSubmissionPayload(snap, "001ACC"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"promotionName":"Spring Sale","accountId":"001ACC","templateId":null,"startDate":null,"endDate":null,` +
		`"products":[{"productId":"P1","productName":"Widget","category":"Tools","discountPercent":25}],` +
		`"stores":[{"storeId":"S1","storeName":"Main St","locationGroup":null}]}`
	if string(data) != want {
		t.Errorf("payload mismatch\n got: %s\nwant: %s", data, want)
	}
}

func TestNewSubmissionPayload_EmptySelections(t *testing.T) {
	data, err := json.Marshal(NewSubmissionPayload(Snapshot{}, ""))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"products":[]`) || !strings.Contains(string(data), `"stores":[]`) {
		t.Errorf("expected empty arrays, got %s", data)
	}
}

func TestCatalogItem_DisplayCategory(t *testing.T) {
	if got := (CatalogItem{}).DisplayCategory(); got != "N/A" {
		t.Errorf("got %q, want N/A", got)
	}
	if got := (CatalogItem{Category: "Tools"}).DisplayCategory(); got != "Tools" {
		t.Errorf("got %q, want Tools", got)
	}
}
