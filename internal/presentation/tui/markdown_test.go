package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/wizard"
	"github.com/stretchr/testify/assert"
)

func TestStepMarkdown_Name(t *testing.T) {
	v := wizard.View{Step: domain.StepName, Title: domain.StepName.Title(), ShowNext: true, ValidationMessage: wizard.MsgEnterName}
	md := StepMarkdown(v, nil)

	assert.Contains(t, md, "# Step 1: Promotion Details")
	assert.Contains(t, md, "_(empty)_")
	assert.Contains(t, md, "> **"+wizard.MsgEnterName+"**")
	assert.Contains(t, md, "`next`")
	assert.NotContains(t, md, "`back`")
}

func TestStepMarkdown_Catalog(t *testing.T) {
	v := wizard.View{
		Step:          domain.StepProducts,
		Title:         domain.StepProducts.Title(),
		PromotionName: "Spring Sale",
		ShowNext:      true,
		ShowPrevious:  true,
		Catalog: &wizard.CatalogView{
			Page: domain.CatalogPage{PageNumber: 1, PageSize: 5, TotalItemCount: 7, Items: []domain.CatalogItem{
				{ID: "P1", Name: "Widget", Category: "Tools", IsSelected: true, DiscountPercent: 12.5},
				{ID: "P2", Name: "Pipe | Fitting"},
			}},
			PageInfo:      "1-5 of 7",
			TotalPages:    2,
			SelectedCount: 1,
		},
	}
	md := StepMarkdown(v, nil)

	assert.Contains(t, md, "| [x] | P1 | Widget | Tools | 12.5% |")
	assert.Contains(t, md, `| [ ] | P2 | Pipe \| Fitting | N/A | - |`)
	assert.Contains(t, md, "_1-5 of 7 (page 1/2), 1 selected_")
	assert.Contains(t, md, "`t <id>` toggle")
}

func TestStepMarkdown_CatalogError(t *testing.T) {
	v := wizard.View{
		Step:    domain.StepProducts,
		Title:   domain.StepProducts.Title(),
		Catalog: &wizard.CatalogView{Error: "Failed to load products"},
	}
	md := StepMarkdown(v, nil)
	assert.Contains(t, md, "> Failed to load products")
	assert.Contains(t, md, "_No products to show._")
}

func TestStepMarkdown_Stores(t *testing.T) {
	directory := []domain.StoreSelection{
		{StoreID: "S1", StoreName: "Downtown", LocationGroup: "North"},
		{StoreID: "S2", StoreName: "Airport"},
	}
	v := wizard.View{
		Step:         domain.StepStores,
		Title:        domain.StepStores.Title(),
		ShowPrevious: true,
		ShowFinish:   true,
		Stores:       []domain.StoreSelection{{StoreID: "S2", StoreName: "Airport"}, {StoreID: "S9", StoreName: "Remote"}},
	}
	md := StepMarkdown(v, directory)

	assert.Contains(t, md, "| [ ] | S1 | Downtown | North |")
	assert.Contains(t, md, "| [x] | S2 | Airport | - |")
	assert.Contains(t, md, "| [x] | S9 | Remote | - |", "chosen stores outside the directory are listed")
	assert.Contains(t, md, "`submit`")
	assert.NotContains(t, md, "`next`")
	assert.Len(t, directory, 2, "directory is not modified")
}

func TestPlainAndBanner(t *testing.T) {
	out, err := Plain("# hi")
	assert.NoError(t, err)
	assert.Equal(t, "# hi", out)

	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "___")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(60)
	out, err := render("# Step 1: Promotion Details")
	assert.NoError(t, err)
	assert.Contains(t, out, "Step 1: Promotion Details")
}
