package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/aretw0/simflow/pkg/domain"
)

// ReadForm loads a single definition file. A form without an id takes the
// file name without extension.
func ReadForm(path string) (*domain.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFormNotFound, path)
		}
		return nil, fmt.Errorf("failed to read form: %w", err)
	}
	form, err := ParseForm(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if form.ID == "" {
		form.ID = formID(path)
	}
	return form, nil
}

// Loader implements ports.FormLoader over a directory of definition files.
// The form id is the file name without extension.
type Loader struct {
	Dir string
}

// NewLoader creates a loader reading from dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// LoadForm reads <dir>/<id>.{yaml,yml,json}, in that order.
func (l *Loader) LoadForm(ctx context.Context, id string) (*domain.Form, error) {
	if id == "" || filepath.Base(id) != id {
		return nil, fmt.Errorf("%w: invalid id %q", domain.ErrFormNotFound, id)
	}
	for _, ext := range Extensions {
		path := filepath.Join(l.Dir, id+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		form, err := ReadForm(path)
		if err != nil {
			return nil, err
		}
		if form.ID != id {
			return nil, fmt.Errorf("%s: declares id %q, expected %q", path, form.ID, id)
		}
		return form, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrFormNotFound, id)
}

// ListForms returns the ids of every definition file in the directory.
func (l *Loader) ListForms(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(Extensions, filepath.Ext(e.Name())) {
			continue
		}
		if id := formID(e.Name()); !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
