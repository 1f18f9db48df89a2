package kb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustFact(t *testing.T, k *KnowledgeBase, text string) *Fact {
	t.Helper()
	f, err := k.CreateFact(text)
	require.NoError(t, err)
	return f
}

func mustRule(t *testing.T, k *KnowledgeBase, text string) *Rule {
	t.Helper()
	r, err := k.CreateRule(text)
	require.NoError(t, err)
	return r
}

func mustAssert(t *testing.T, k *KnowledgeBase, st Statement) Statement {
	t.Helper()
	stored, err := k.Assert(st)
	require.NoError(t, err)
	return stored
}

// countingRecorder is a metrics.Recorder that counts events by name.
type countingRecorder struct {
	counts map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counts: make(map[string]int)}
}

func (c *countingRecorder) Asserted(kind string)   { c.counts["asserted_"+kind]++ }
func (c *countingRecorder) Derived(kind string)    { c.counts["derived_"+kind]++ }
func (c *countingRecorder) Retracted(kind string)  { c.counts["retracted_"+kind]++ }
func (c *countingRecorder) Cascaded(kind string)   { c.counts["cascaded_"+kind]++ }
func (c *countingRecorder) Rejected(reason string) { c.counts["rejected_"+reason]++ }
func (c *countingRecorder) DepthExceeded()         { c.counts["depth_exceeded"]++ }
