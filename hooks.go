package simflow

import (
	"context"

	"github.com/aretw0/simflow/pkg/domain"
)

// emit translates the difference between two states into lifecycle hooks.
func (e *Engine) emit(ctx context.Context, sessionID string, before, after *domain.FormState) {
	diff := domain.Diff(sessionID, before, after)
	if diff == nil {
		return
	}
	if before == nil {
		before = domain.NewFormState()
	}
	h := e.hooks
	base := func(t domain.EventType) domain.EventBase {
		return domain.EventBase{Timestamp: e.now(), Type: t, SessionID: sessionID}
	}

	blockEvent := func(t domain.EventType, s *domain.FormState, id string) *domain.BlockEvent {
		ev := &domain.BlockEvent{EventBase: base(t), BlockID: id}
		if d, ok := s.DynamicBlock(id); ok {
			ev.Dynamic = true
			ev.BlueprintID = d.BlueprintID
		}
		return ev
	}

	for _, id := range diff.ActivatedBlocks {
		ev := blockEvent(domain.EventBlockActivated, after, id)
		e.logger.Debug("block activated", "session_id", sessionID, "block_id", id, "dynamic", ev.Dynamic)
		if h.OnBlockActivated != nil {
			h.OnBlockActivated(ctx, ev)
		}
	}
	for _, id := range diff.DeactivatedBlocks {
		ev := blockEvent(domain.EventBlockDeactivated, before, id)
		e.logger.Debug("block deactivated", "session_id", sessionID, "block_id", id, "dynamic", ev.Dynamic)
		if h.OnBlockDeactivated != nil {
			h.OnBlockDeactivated(ctx, ev)
		}
	}
	for _, id := range diff.CompletedBlocks {
		ev := blockEvent(domain.EventBlockCompleted, after, id)
		if h.OnBlockCompleted != nil {
			h.OnBlockCompleted(ctx, ev)
		}
	}
	if diff.ActiveQuestion != nil && h.OnQuestionChanged != nil {
		ev := &domain.QuestionEvent{
			EventBase: base(domain.EventQuestionChanged),
			From:      before.ActiveQuestion,
			To:        *diff.ActiveQuestion,
		}
		if d, ok := after.DynamicBlock(ev.To.BlockID); ok {
			ev.ToBlueprintID = d.BlueprintID
		}
		h.OnQuestionChanged(ctx, ev)
	}
	if diff.Finished != nil && *diff.Finished {
		e.logger.Info("flow stopped", "session_id", sessionID)
		if h.OnFlowStopped != nil {
			ev := base(domain.EventFlowStopped)
			h.OnFlowStopped(ctx, &ev)
		}
	}
}

func (e *Engine) emitUnresolved(ctx context.Context, sessionID, questionID string, target domain.Target) {
	e.logger.Warn("unresolved navigation target",
		"session_id", sessionID,
		"question_id", questionID,
		"target", target.String(),
	)
	if e.hooks.OnUnresolvedTarget != nil {
		e.hooks.OnUnresolvedTarget(ctx, &domain.TargetEvent{
			EventBase:  domain.EventBase{Timestamp: e.now(), Type: domain.EventUnresolvedTarget, SessionID: sessionID},
			QuestionID: questionID,
			Target:     target.String(),
		})
	}
}
