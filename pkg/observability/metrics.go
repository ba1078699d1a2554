package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "claire"

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	DialogsBegun    *prometheus.CounterVec
	DialogsEnded    *prometheus.CounterVec
	PromptsRejected *prometheus.CounterVec
	TurnsCommitted  prometheus.Counter
	TurnActivities  prometheus.Histogram
	ActiveDepth     *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses the default registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		DialogsBegun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialog_begin_total",
			Help:      "Dialogs pushed onto a conversation stack.",
		}, []string{"dialog_id"}),
		DialogsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialog_end_total",
			Help:      "Dialogs popped off a conversation stack.",
		}, []string{"dialog_id"}),
		PromptsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_rejected_total",
			Help:      "Prompt answers refused by their validator.",
		}, []string{"prompt_id"}),
		TurnsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_committed_total",
			Help:      "Turns whose state was persisted.",
		}),
		TurnActivities: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_activities",
			Help:      "Outbound activities per committed turn.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		}),
		ActiveDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dialog_depth",
			Help:      "Stack depth after the last dialog event, by dialog.",
		}, []string{"dialog_id"}),
	}

	for _, c := range []prometheus.Collector{
		m.DialogsBegun, m.DialogsEnded, m.PromptsRejected,
		m.TurnsCommitted, m.TurnActivities, m.ActiveDepth,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogBegin: func(_ context.Context, e *domain.DialogEvent) {
			m.DialogsBegun.WithLabelValues(e.DialogID).Inc()
			m.ActiveDepth.WithLabelValues(e.DialogID).Set(float64(e.Depth))
		},
		OnDialogEnd: func(_ context.Context, e *domain.DialogEvent) {
			m.DialogsEnded.WithLabelValues(e.DialogID).Inc()
			m.ActiveDepth.WithLabelValues(e.DialogID).Set(float64(e.Depth))
		},
		OnPromptRejected: func(_ context.Context, e *domain.PromptEvent) {
			m.PromptsRejected.WithLabelValues(e.PromptID).Inc()
		},
		OnTurnCommitted: func(_ context.Context, e *domain.TurnEvent) {
			m.TurnsCommitted.Inc()
			m.TurnActivities.Observe(float64(e.Activities))
		},
	}
}

// Handler serves the registry m was registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// LogHooks returns lifecycle hooks that log every event at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogBegin: func(ctx context.Context, e *domain.DialogEvent) {
			logger.DebugContext(ctx, "dialog_begin", "conversation_id", e.ConversationID, "dialog_id", e.DialogID, "depth", e.Depth)
		},
		OnDialogEnd: func(ctx context.Context, e *domain.DialogEvent) {
			logger.DebugContext(ctx, "dialog_end", "conversation_id", e.ConversationID, "dialog_id", e.DialogID, "depth", e.Depth)
		},
		OnPromptRejected: func(ctx context.Context, e *domain.PromptEvent) {
			logger.DebugContext(ctx, "prompt_rejected", "conversation_id", e.ConversationID, "prompt_id", e.PromptID)
		},
		OnTurnCommitted: func(ctx context.Context, e *domain.TurnEvent) {
			logger.DebugContext(ctx, "turn_committed", "conversation_id", e.ConversationID, "activities", e.Activities)
		},
	}
}
