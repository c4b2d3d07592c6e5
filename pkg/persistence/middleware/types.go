// Package middleware wraps a ports.StateStore with cross-cutting behavior:
// encryption at rest and masking of sensitive answers.
package middleware

import "github.com/aretw0/simflow/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Wrap applies middlewares so that the first one is the outermost.
func Wrap(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
