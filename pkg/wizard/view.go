package wizard

import "github.com/aretw0/promowizard/pkg/domain"

// View is a read model of a wizard for hosts to render.
type View struct {
	Step              domain.Step             `json:"step"`
	Title             string                  `json:"title"`
	PromotionName     string                  `json:"promotionName"`
	ValidationMessage string                  `json:"validationMessage,omitempty"`
	Busy              bool                    `json:"busy"`
	SubmitLabel       string                  `json:"submitLabel"`
	ShowPrevious      bool                    `json:"showPrevious"`
	ShowNext          bool                    `json:"showNext"`
	ShowFinish        bool                    `json:"showFinish"`
	Closed            bool                    `json:"closed"`
	State             domain.Snapshot         `json:"state"`
	Stores            []domain.StoreSelection `json:"workingStores,omitempty"`
	Catalog           *CatalogView            `json:"catalog,omitempty"`
}

// CatalogView describes the rendered catalog page of step 2.
type CatalogView struct {
	Page          domain.CatalogPage `json:"page"`
	PageInfo      string             `json:"pageInfo"`
	TotalPages    int                `json:"totalPages"`
	HasPrevious   bool               `json:"hasPrevious"`
	HasNext       bool               `json:"hasNext"`
	Loading       bool               `json:"loading"`
	Error         string             `json:"error,omitempty"`
	SelectedCount int                `json:"selectedCount"`
}

// View builds the read model of the wizard.
func (c *Controller) View() View {
	step := c.CurrentStep()
	v := View{
		Step:              step,
		Title:             step.Title(),
		PromotionName:     c.names.Name(),
		ValidationMessage: c.ValidationMessage(),
		Busy:              c.Busy(),
		SubmitLabel:       c.SubmitLabel(),
		ShowPrevious:      step != domain.FirstStep,
		ShowNext:          step != domain.LastStep,
		ShowFinish:        step == domain.LastStep,
		Closed:            c.Closed(),
		State:             c.store.State(),
	}

	switch step {
	case domain.StepProducts:
		v.Catalog = c.CatalogView()
	case domain.StepStores:
		v.Stores = c.stores.Stores()
	}
	return v
}

// CatalogView builds the read model of the step-2 page.
func (c *Controller) CatalogView() *CatalogView {
	m := c.products
	return &CatalogView{
		Page:          m.Page(),
		PageInfo:      m.PageInfo(),
		TotalPages:    m.TotalPages(),
		HasPrevious:   m.HasPreviousPage(),
		HasNext:       m.HasNextPage(),
		Loading:       m.Loading(),
		Error:         m.LastError(),
		SelectedCount: m.SelectedCount(),
	}
}
