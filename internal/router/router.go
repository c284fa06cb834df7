// Package router maps classified intents to registered agent capabilities.
package router

import (
	"fmt"
	"sync"

	"github.com/attestra/veritor/pkg/ports"
)

// DefaultConfidenceFloor is the minimum intent confidence required to route
// to a specialized agent instead of the default one.
const DefaultConfidenceFloor = 0.35

// Registry holds the agents available to the engine, keyed by intent. It
// always carries a default agent, so routing is total: Route can never fail
// to produce an agent ID.
type Registry struct {
	mu        sync.RWMutex
	agents    map[string]ports.Agent
	defaultID string
	floor     float64
}

// NewRegistry creates a registry routing everything below the confidence
// floor (or without a specialized agent) to the default agent.
func NewRegistry(defaultID string, defaultAgent ports.Agent) *Registry {
	r := &Registry{
		agents:    make(map[string]ports.Agent),
		defaultID: defaultID,
		floor:     DefaultConfidenceFloor,
	}
	r.agents[defaultID] = defaultAgent
	return r
}

// SetConfidenceFloor overrides the routing confidence floor.
func (r *Registry) SetConfidenceFloor(floor float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floor = floor
}

// Register adds an agent for an intent. Registering the same intent twice
// overwrites the previous agent.
func (r *Registry) Register(intent string, agent ports.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[intent] = agent
}

// Route maps (intent, confidence) to an agent ID. Confident queries with a
// registered specialist go there; everything else lands on the default.
func (r *Registry) Route(intent string, confidence float64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if confidence >= r.floor {
		if _, ok := r.agents[intent]; ok {
			return intent
		}
	}
	return r.defaultID
}

// Get returns the agent registered under the given ID.
func (r *Registry) Get(id string) (ports.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("no agent registered under %q", id)
	}
	return agent, nil
}

// DefaultID returns the ID of the default agent.
func (r *Registry) DefaultID() string {
	return r.defaultID
}
