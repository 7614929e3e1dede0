package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepChange  EventType = "step_change"
	EventValidation  EventType = "validation_failed"
	EventCatalogLoad EventType = "catalog_fetch"
	EventSubmit      EventType = "submit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent represents a step transition or a rejected one.
type StepEvent struct {
	EventBase
	From    Step   `json:"from"`
	To      Step   `json:"to"`
	Message string `json:"message,omitempty"`
}

// FetchEvent represents a completed catalog fetch.
type FetchEvent struct {
	EventBase
	PageNumber int           `json:"page_number"`
	Duration   time.Duration `json:"duration"`
	Stale      bool          `json:"stale,omitempty"`
	Err        error         `json:"-"`
}

// SubmitEvent represents a completed submission attempt.
type SubmitEvent struct {
	EventBase
	PromotionID string        `json:"promotion_id,omitempty"`
	Products    int           `json:"products"`
	Stores      int           `json:"stores"`
	Duration    time.Duration `json:"duration"`
	Err         error         `json:"-"`
}

// LifecycleHooks defines callbacks for wizard observability.
type LifecycleHooks struct {
	OnStepChange       func(context.Context, *StepEvent)
	OnValidationFailed func(context.Context, *StepEvent)
	OnCatalogFetch     func(context.Context, *FetchEvent)
	OnSubmit           func(context.Context, *SubmitEvent)
}
