package domain

import (
	"math"
	"testing"
)

func TestClampDiscount(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{25, 25},
		{150, 100},
		{-5, 0},
		{math.NaN(), 0},
		{math.Inf(1), 100},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		if got := ClampDiscount(tt.in); got != tt.want {
			t.Errorf("ClampDiscount(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStepDraft(t *testing.T) {
	var none *StepDraft
	if none.Clone() != nil {
		t.Fatal("clone of nil draft should be nil")
	}

	d := &StepDraft{PromotionName: "Spring Sale", Stores: []StoreSelection{{StoreID: "S1", StoreName: "Downtown"}}}
	c := d.Clone()
	c.Stores[0].StoreID = "S9"
	if d.Stores[0].StoreID != "S1" {
		t.Errorf("clone shares stores with the original")
	}

	if none.Key() == (&StepDraft{}).Key() {
		t.Errorf("nil and empty drafts must have different keys")
	}
	if d.Key() == c.Key() {
		t.Errorf("drafts with different stores must have different keys")
	}
	if d.Key() != d.Clone().Key() {
		t.Errorf("equal drafts must have equal keys")
	}
}
