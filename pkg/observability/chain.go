package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/simflow/pkg/domain"
)

// Chain combines several hook sets. Each event is delivered to every set in
// order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnBlockActivated = chain(out.OnBlockActivated, h.OnBlockActivated)
		out.OnBlockDeactivated = chain(out.OnBlockDeactivated, h.OnBlockDeactivated)
		out.OnBlockCompleted = chain(out.OnBlockCompleted, h.OnBlockCompleted)
		out.OnQuestionChanged = chain(out.OnQuestionChanged, h.OnQuestionChanged)
		out.OnFlowStopped = chain(out.OnFlowStopped, h.OnFlowStopped)
		out.OnUnresolvedTarget = chain(out.OnUnresolvedTarget, h.OnUnresolvedTarget)
	}
	return out
}

func chain[E any](first, next func(context.Context, E)) func(context.Context, E) {
	switch {
	case first == nil:
		return next
	case next == nil:
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		next(ctx, e)
	}
}

// LogHooks writes one INFO record per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	block := func(msg string) func(context.Context, *domain.BlockEvent) {
		return func(ctx context.Context, e *domain.BlockEvent) {
			attrs := []any{"session_id", e.SessionID, "block_id", e.BlockID}
			if e.Dynamic {
				attrs = append(attrs, "blueprint_id", e.BlueprintID)
			}
			logger.InfoContext(ctx, msg, attrs...)
		}
	}
	return domain.LifecycleHooks{
		OnBlockActivated:   block("block_activated"),
		OnBlockDeactivated: block("block_deactivated"),
		OnBlockCompleted:   block("block_completed"),
		OnQuestionChanged: func(ctx context.Context, e *domain.QuestionEvent) {
			logger.InfoContext(ctx, "question_changed",
				"session_id", e.SessionID,
				"from", e.From.QuestionID,
				"to", e.To.QuestionID,
				"block_id", e.To.BlockID,
			)
		},
		OnFlowStopped: func(ctx context.Context, e *domain.EventBase) {
			logger.InfoContext(ctx, "flow_stopped", "session_id", e.SessionID)
		},
		OnUnresolvedTarget: func(ctx context.Context, e *domain.TargetEvent) {
			logger.WarnContext(ctx, "unresolved_target",
				"session_id", e.SessionID,
				"question_id", e.QuestionID,
				"target", e.Target,
			)
		},
	}
}
