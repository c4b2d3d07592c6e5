package observability

import (
	"context"
	"errors"

	"github.com/aretw0/simflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	BlockActivations   *prometheus.CounterVec
	BlockDeactivations *prometheus.CounterVec
	BlockCompletions   *prometheus.CounterVec
	QuestionChanges    *prometheus.CounterVec
	FlowsStopped       *prometheus.CounterVec
	UnresolvedTargets  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. Collectors
// already registered by another Metrics are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	blockLabels := []string{"form", "block"}
	m := &Metrics{
		BlockActivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simflow_block_activations_total",
			Help: "Blocks added to a session's active set.",
		}, blockLabels),
		BlockDeactivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simflow_block_deactivations_total",
			Help: "Blocks removed from a session's active set.",
		}, blockLabels),
		BlockCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simflow_block_completions_total",
			Help: "Blocks left through a block-level transition.",
		}, blockLabels),
		QuestionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simflow_question_changes_total",
			Help: "Changes of the active question, by destination block.",
		}, blockLabels),
		FlowsStopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simflow_flows_stopped_total",
			Help: "Sessions that reached a stop_flow target.",
		}, []string{"form"}),
		UnresolvedTargets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simflow_unresolved_targets_total",
			Help: "Navigation requests whose target could not be resolved.",
		}, []string{"form"}),
	}

	for _, c := range []**prometheus.CounterVec{
		&m.BlockActivations, &m.BlockDeactivations, &m.BlockCompletions,
		&m.QuestionChanges, &m.FlowsStopped, &m.UnresolvedTargets,
	} {
		if err := reg.Register(*c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			*c = are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return m, nil
}

// UnknownBlock labels events about blocks the form does not declare.
const UnknownBlock = "unknown"

// Hooks returns lifecycle hooks recording into m for one form. Block labels
// are limited to the form's block ids, dynamic copies counting under their
// blueprint, so client-chosen ids cannot grow the label set.
func (m *Metrics) Hooks(form *domain.Form) domain.LifecycleHooks {
	formID := form.ID
	label := func(blockID, blueprintID string) string {
		if blueprintID != "" {
			blockID = blueprintID
		}
		if _, ok := form.Block(blockID); ok {
			return blockID
		}
		return UnknownBlock
	}
	blockLabel := func(e *domain.BlockEvent) string {
		return label(e.BlockID, e.BlueprintID)
	}

	return domain.LifecycleHooks{
		OnBlockActivated: func(_ context.Context, e *domain.BlockEvent) {
			m.BlockActivations.WithLabelValues(formID, blockLabel(e)).Inc()
		},
		OnBlockDeactivated: func(_ context.Context, e *domain.BlockEvent) {
			m.BlockDeactivations.WithLabelValues(formID, blockLabel(e)).Inc()
		},
		OnBlockCompleted: func(_ context.Context, e *domain.BlockEvent) {
			m.BlockCompletions.WithLabelValues(formID, blockLabel(e)).Inc()
		},
		OnQuestionChanged: func(_ context.Context, e *domain.QuestionEvent) {
			m.QuestionChanges.WithLabelValues(formID, label(e.To.BlockID, e.ToBlueprintID)).Inc()
		},
		OnFlowStopped: func(_ context.Context, _ *domain.EventBase) {
			m.FlowsStopped.WithLabelValues(formID).Inc()
		},
		OnUnresolvedTarget: func(_ context.Context, _ *domain.TargetEvent) {
			m.UnresolvedTargets.WithLabelValues(formID).Inc()
		},
	}
}
