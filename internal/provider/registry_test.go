package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	Adapter
	typ    string
	status Availability
}

func (s *stubAdapter) Type() string { return s.typ }

func (s *stubAdapter) CheckAvailability(ctx context.Context) Availability { return s.status }

func TestRegistryGet(t *testing.T) {
	reg := NewRegistry("claude")
	claude := &stubAdapter{typ: "claude"}
	reg.Register(claude)

	got, err := reg.Get("claude")
	require.NoError(t, err)
	assert.Same(t, claude, got.(*stubAdapter))
}

func TestRegistryGetEmptyUsesDefault(t *testing.T) {
	reg := NewRegistry("claude")
	claude := &stubAdapter{typ: "claude"}
	reg.Register(claude)
	reg.Register(&stubAdapter{typ: "gemini"})

	got, err := reg.Get("")
	require.NoError(t, err)
	assert.Same(t, claude, got.(*stubAdapter))
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := NewRegistry("claude")
	reg.Register(&stubAdapter{typ: "claude"})

	_, err := reg.Get("codex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "codex")
}

func TestRegistryRegisterReplaces(t *testing.T) {
	reg := NewRegistry("claude")
	first := &stubAdapter{typ: "claude"}
	second := &stubAdapter{typ: "claude"}
	reg.Register(first)
	reg.Register(second)

	got, err := reg.Get("claude")
	require.NoError(t, err)
	assert.Same(t, second, got.(*stubAdapter))
}

func TestRegistryStatus(t *testing.T) {
	reg := NewRegistry("claude")
	reg.Register(&stubAdapter{typ: "claude", status: Availability{Available: true, Configured: true}})
	reg.Register(&stubAdapter{typ: "gemini", status: Availability{Available: false, Detail: "no key"}})

	status := reg.Status(context.Background())
	require.Len(t, status, 2)
	assert.True(t, status["claude"].Available)
	assert.False(t, status["gemini"].Available)
	assert.Equal(t, "no key", status["gemini"].Detail)
}

func TestRegistryTypesSorted(t *testing.T) {
	reg := NewRegistry("claude")
	reg.Register(&stubAdapter{typ: "gemini"})
	reg.Register(&stubAdapter{typ: "claude"})

	assert.Equal(t, []string{"claude", "gemini"}, reg.Types())
}
