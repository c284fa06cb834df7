package router_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestra/veritor/internal/router"
	"github.com/attestra/veritor/pkg/ports"
)

func stubAgent(response string) ports.Agent {
	return ports.AgentFunc(func(ctx context.Context, query string) (*ports.AgentResult, error) {
		return &ports.AgentResult{Response: response}, nil
	})
}

func TestRoute_TotalCoverage(t *testing.T) {
	r := router.NewRegistry("general", stubAgent("default"))
	r.Register("allowance", stubAgent("allowance"))

	cases := []struct {
		name       string
		intent     string
		confidence float64
		want       string
	}{
		{"confident registered intent", "allowance", 0.8, "allowance"},
		{"confident unregistered intent", "weather", 0.9, "general"},
		{"below floor", "allowance", 0.1, "general"},
		{"exactly at floor", "allowance", router.DefaultConfidenceFloor, "allowance"},
		{"empty intent", "", 0.0, "general"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Route(tc.intent, tc.confidence))
		})
	}
}

func TestRoute_CustomFloor(t *testing.T) {
	r := router.NewRegistry("general", stubAgent("default"))
	r.Register("allowance", stubAgent("allowance"))
	r.SetConfidenceFloor(0.9)

	assert.Equal(t, "general", r.Route("allowance", 0.8))
	assert.Equal(t, "allowance", r.Route("allowance", 0.95))
}

func TestGet(t *testing.T) {
	r := router.NewRegistry("general", stubAgent("default"))

	agent, err := r.Get("general")
	require.NoError(t, err)
	require.NotNil(t, agent)

	_, err = r.Get("missing")
	assert.Error(t, err)
}
