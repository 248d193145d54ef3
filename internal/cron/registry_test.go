package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	registry := NewRegistry()
	jobA := &stubJob{name: "a"}
	jobB := &stubJob{name: "b"}
	require.NoError(t, registry.Register(jobA))
	require.NoError(t, registry.Register(jobB))
	require.NoError(t, registry.Register(nil))

	jobs := registry.Jobs()
	require.Equal(t, []Job{jobA, jobB}, jobs)

	jobs[0] = nil
	require.NotNil(t, registry.Jobs()[0])
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry(&stubJob{name: CheckoutExpiryJobName})
	require.Error(t, registry.Register(&stubJob{name: CheckoutExpiryJobName}))
	require.Len(t, registry.Jobs(), 1)

	require.Panics(t, func() {
		NewRegistry(&stubJob{name: "x"}, &stubJob{name: "x"})
	})
}

func TestRegistryLookup(t *testing.T) {
	job := &stubJob{name: CheckoutExpiryJobName}
	registry := NewRegistry(job)

	found, ok := registry.Lookup(CheckoutExpiryJobName)
	require.True(t, ok)
	require.Same(t, job, found)

	_, ok = registry.Lookup("missing")
	require.False(t, ok)
}
