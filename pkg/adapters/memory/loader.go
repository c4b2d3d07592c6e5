package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/simflow/pkg/domain"
)

// Loader implements ports.FormLoader over forms held in memory.
type Loader struct {
	mu    sync.RWMutex
	forms map[string]domain.Form
}

// NewLoader creates a loader serving the given forms by id.
func NewLoader(forms ...*domain.Form) (*Loader, error) {
	l := &Loader{forms: make(map[string]domain.Form)}
	for _, f := range forms {
		if err := l.Add(f); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add registers or replaces a form.
func (l *Loader) Add(form *domain.Form) error {
	if form == nil || form.ID == "" {
		return fmt.Errorf("form missing ID")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.forms[form.ID] = cloneForm(form)
	return nil
}

// LoadForm returns a copy of the form with the given id.
func (l *Loader) LoadForm(ctx context.Context, id string) (*domain.Form, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	form, ok := l.forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFormNotFound, id)
	}
	out := cloneForm(&form)
	return &out, nil
}

// ListForms returns all form ids in lexical order.
func (l *Loader) ListForms(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.forms))
	for id := range l.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func cloneForm(f *domain.Form) domain.Form {
	out := *f
	out.Blocks = make([]domain.Block, len(f.Blocks))
	for i, b := range f.Blocks {
		out.Blocks[i] = b.Clone()
	}
	return out
}
