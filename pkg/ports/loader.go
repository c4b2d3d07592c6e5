package ports

import (
	"context"

	"github.com/aretw0/simflow/pkg/domain"
)

// FormLoader defines how the engine retrieves form definitions.
type FormLoader interface {
	// LoadForm returns the definition with the given id.
	// Returns domain.ErrFormNotFound if it does not exist.
	LoadForm(ctx context.Context, id string) (*domain.Form, error)

	// ListForms returns the ids of all available forms.
	ListForms(ctx context.Context) ([]string, error)
}
