package ports

import (
	"context"

	"github.com/aretw0/simflow/pkg/domain"
)

// StateStore defines the interface for persisting session state.
// The engine checkpoints the FormState after every mutation, so a session can
// be resumed from any process that shares the store.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.FormState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.FormState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
