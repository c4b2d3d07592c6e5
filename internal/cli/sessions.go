package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/simflow/pkg/ports"
)

// ListSessions prints one line per stored session.
func ListSessions(ctx context.Context, store ports.StateStore, w io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No sessions.")
		return nil
	}
	for _, id := range ids {
		state, err := store.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "%s\tunreadable: %v\n", id, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d answered\n", id, describe(state), len(state.AnsweredQuestions))
	}
	return nil
}

// InspectSession prints the stored state as indented JSON.
func InspectSession(ctx context.Context, store ports.StateStore, id string, w io.Writer) error {
	state, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}

// RemoveSession deletes a stored session. Unknown ids report ErrSessionNotFound.
func RemoveSession(ctx context.Context, store ports.StateStore, id string) error {
	if _, err := store.Load(ctx, id); err != nil {
		return err
	}
	return store.Delete(ctx, id)
}
