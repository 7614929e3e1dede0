package domain

import (
	"slices"
	"strings"
	"time"
)

// Step identifies a wizard step. Steps are linear: 1 → 2 → 3.
type Step int

const (
	StepName     Step = 1 // Promotion details
	StepProducts Step = 2 // Product and discount selection
	StepStores   Step = 3 // Target store selection
)

// FirstStep and LastStep bound the wizard.
const (
	FirstStep = StepName
	LastStep  = StepStores
)

// Title returns the heading shown for the step.
func (s Step) Title() string {
	switch s {
	case StepName:
		return "Step 1: Promotion Details"
	case StepProducts:
		return "Step 2: Select Products"
	case StepStores:
		return "Step 3: Select Stores"
	default:
		return "Create Promotion"
	}
}

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a toast-style message emitted to the host shell.
type Notification struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// PayloadProduct is a product line of the submission payload.
type PayloadProduct struct {
	ProductID       string  `json:"productId"`
	ProductName     string  `json:"productName"`
	Category        *string `json:"category"`
	DiscountPercent float64 `json:"discountPercent"`
}

// PayloadStore is a store line of the submission payload.
type PayloadStore struct {
	StoreID       string  `json:"storeId"`
	StoreName     string  `json:"storeName"`
	LocationGroup *string `json:"locationGroup"`
}

// SubmissionPayload is the record sent to the submit service.
// TemplateID, StartDate and EndDate are always null.
type SubmissionPayload struct {
	PromotionName string           `json:"promotionName"`
	AccountID     string           `json:"accountId"`
	TemplateID    *string          `json:"templateId"`
	StartDate     *string          `json:"startDate"`
	EndDate       *string          `json:"endDate"`
	Products      []PayloadProduct `json:"products"`
	Stores        []PayloadStore   `json:"stores"`
}

// NewSubmissionPayload assembles a payload from a store snapshot.
func NewSubmissionPayload(s Snapshot, accountID string) SubmissionPayload {
	p := SubmissionPayload{
		PromotionName: s.PromotionName,
		AccountID:     accountID,
		Products:      make([]PayloadProduct, 0, len(s.Products)),
		Stores:        make([]PayloadStore, 0, len(s.Stores)),
	}
	for _, prod := range s.Products {
		p.Products = append(p.Products, PayloadProduct{
			ProductID:       prod.ProductID,
			ProductName:     prod.ProductName,
			Category:        nullable(prod.Category),
			DiscountPercent: prod.DiscountPercent,
		})
	}
	for _, st := range s.Stores {
		p.Stores = append(p.Stores, PayloadStore{
			StoreID:       st.StoreID,
			StoreName:     st.StoreName,
			LocationGroup: nullable(st.LocationGroup),
		})
	}
	return p
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SubmitResult is the submit service response. Both fields are optional.
type SubmitResult struct {
	Message     string `json:"message,omitempty"`
	PromotionID string `json:"promotionId,omitempty"`
}

// SessionRecord is the persisted form of a live wizard session.
type SessionRecord struct {
	SessionID   string    `json:"session_id"`
	AccountID   string    `json:"account_id"`
	Step        Step      `json:"step"`
	CatalogPage int       `json:"catalog_page"`
	Snapshot    Snapshot  `json:"snapshot"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Draft holds step edits not yet committed to the snapshot.
	Draft *StepDraft `json:"draft,omitempty"`

	// Envelope carries the sealed record when an encryption middleware is in use.
	Envelope string `json:"envelope,omitempty"`
}

// StepDraft is the working data of the name and store steps.
type StepDraft struct {
	PromotionName string           `json:"promotionName"`
	Stores        []StoreSelection `json:"stores"`
}

// Clone returns a copy that shares no slices with d. A nil draft stays nil.
func (d *StepDraft) Clone() *StepDraft {
	if d == nil {
		return nil
	}
	return &StepDraft{PromotionName: d.PromotionName, Stores: slices.Clone(d.Stores)}
}

// Key returns a comparable form of the draft, "" for nil.
func (d *StepDraft) Key() string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\x1d")
	b.WriteString(d.PromotionName)
	for _, st := range d.Stores {
		b.WriteString("\x1e")
		b.WriteString(st.StoreID)
		b.WriteString("\x1f")
		b.WriteString(st.StoreName)
		b.WriteString("\x1f")
		b.WriteString(st.LocationGroup)
	}
	return b.String()
}
