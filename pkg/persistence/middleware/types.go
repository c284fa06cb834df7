// Package middleware wraps a CheckpointStore with cross-cutting persistence
// behavior: encryption at rest and PII scrubbing. Middlewares compose, so a
// store can scrub and then encrypt.
package middleware

import "github.com/attestra/veritor/pkg/ports"

// Middleware allows wrapping a CheckpointStore to add behavior.
type Middleware func(ports.CheckpointStore) ports.CheckpointStore

// Chain applies middlewares left to right: the first middleware sees the
// snapshot first on Save.
func Chain(store ports.CheckpointStore, mws ...Middleware) ports.CheckpointStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
