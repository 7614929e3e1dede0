package observability

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aretw0/promowizard/internal/logging"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "promowizard"

// Metrics holds the collectors fed by wizard lifecycle events.
type Metrics struct {
	StepTransitions   *prometheus.CounterVec
	ValidationFailed  *prometheus.CounterVec
	CatalogFetches    *prometheus.CounterVec
	CatalogLatency    prometheus.Histogram
	Submissions       *prometheus.CounterVec
	SubmitLatency     prometheus.Histogram
	SubmittedProducts prometheus.Histogram

	logger *slog.Logger
}

// Option configures Metrics.
type Option func(*Metrics)

// WithLogger logs every lifecycle event at debug level (errors at warn).
func WithLogger(logger *slog.Logger) Option {
	return func(m *Metrics) {
		m.logger = logger
	}
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, opts ...Option) *Metrics {
	m := &Metrics{
		StepTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_transitions_total",
			Help:      "Wizard step transitions by origin and destination step.",
		}, []string{"from", "to"}),
		ValidationFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected step transitions by step.",
		}, []string{"step"}),
		CatalogFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetches_total",
			Help:      "Catalog page fetches by outcome (ok, error, stale).",
		}, []string{"outcome"}),
		CatalogLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_duration_seconds",
			Help:      "Duration of catalog page fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Promotion submissions by outcome (ok, error).",
		}, []string{"outcome"}),
		SubmitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Duration of promotion submissions.",
			Buckets:   prometheus.DefBuckets,
		}),
		SubmittedProducts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submitted_products",
			Help:      "Number of products per submitted promotion.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	reg.MustRegister(
		m.StepTransitions,
		m.ValidationFailed,
		m.CatalogFetches,
		m.CatalogLatency,
		m.Submissions,
		m.SubmitLatency,
		m.SubmittedProducts,
	)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepChange: func(ctx context.Context, e *domain.StepEvent) {
			m.StepTransitions.WithLabelValues(stepLabel(e.From), stepLabel(e.To)).Inc()
			m.logger.Debug("step_change", "from", int(e.From), "to", int(e.To))
		},
		OnValidationFailed: func(ctx context.Context, e *domain.StepEvent) {
			m.ValidationFailed.WithLabelValues(stepLabel(e.From)).Inc()
			m.logger.Debug("validation_failed", "step", int(e.From), "message", e.Message)
		},
		OnCatalogFetch: func(ctx context.Context, e *domain.FetchEvent) {
			m.CatalogFetches.WithLabelValues(fetchOutcome(e)).Inc()
			m.CatalogLatency.Observe(e.Duration.Seconds())
			if e.Err != nil && !e.Stale {
				m.logger.Warn("catalog_fetch", "page", e.PageNumber, "err", e.Err)
				return
			}
			m.logger.Debug("catalog_fetch", "page", e.PageNumber, "stale", e.Stale, "duration", e.Duration)
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			m.SubmitLatency.Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.Submissions.WithLabelValues("error").Inc()
				m.logger.Warn("submit", "products", e.Products, "stores", e.Stores, "err", e.Err)
				return
			}
			m.Submissions.WithLabelValues("ok").Inc()
			m.SubmittedProducts.Observe(float64(e.Products))
			m.logger.Debug("submit", "promotion_id", e.PromotionID, "products", e.Products, "stores", e.Stores)
		},
	}
}

func stepLabel(s domain.Step) string {
	return strconv.Itoa(int(s))
}

func fetchOutcome(e *domain.FetchEvent) string {
	switch {
	case e.Stale:
		return "stale"
	case e.Err != nil:
		return "error"
	default:
		return "ok"
	}
}

// Combine returns hooks that call each of the given hooks in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepChange: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range all {
				if h.OnStepChange != nil {
					h.OnStepChange(ctx, e)
				}
			}
		},
		OnValidationFailed: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range all {
				if h.OnValidationFailed != nil {
					h.OnValidationFailed(ctx, e)
				}
			}
		},
		OnCatalogFetch: func(ctx context.Context, e *domain.FetchEvent) {
			for _, h := range all {
				if h.OnCatalogFetch != nil {
					h.OnCatalogFetch(ctx, e)
				}
			}
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			for _, h := range all {
				if h.OnSubmit != nil {
					h.OnSubmit(ctx, e)
				}
			}
		},
	}
}
