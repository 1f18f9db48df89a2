package kb

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// names flattens bindings to "var=value" strings for order-insensitive
// comparison.
func names(bs []Binding) [][]string {
	out := make([][]string, 0, len(bs))
	for _, b := range bs {
		row := make([]string, 0, len(b))
		for _, p := range b {
			row = append(row, p.Var.Name()+"="+p.Value.Name())
		}
		out = append(out, row)
	}
	return out
}

var sortRows = cmpopts.SortSlices(func(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
})

func queryKB(t *testing.T) *KnowledgeBase {
	t.Helper()
	k := New()
	for _, text := range []string{
		"fact: (isa a b);",
		"fact: (isa a c);",
		"fact: (isa d e);",
		"fact: (isa f g);",
		"fact: (likes a b c);",
		"fact: (likes a b d);",
		"fact: (likes a c d);",
		"fact: (likes e b c);",
		"fact: (likes f f f);",
	} {
		mustAssert(t, k, mustFact(t, k, text))
	}
	return k
}

func TestQuery(t *testing.T) {
	k := queryKB(t)

	tests := []struct {
		pattern string
		want    [][]string
	}{
		{pattern: "(isa f ?b)", want: [][]string{{"?b=g"}}},
		{pattern: "(isa a ?b)", want: [][]string{{"?b=b"}, {"?b=c"}}},
		{pattern: "(isa ?a e)", want: [][]string{{"?a=d"}}},
		{pattern: "(isa ?a ?b)", want: [][]string{
			{"?a=a", "?b=b"}, {"?a=a", "?b=c"}, {"?a=d", "?b=e"}, {"?a=f", "?b=g"},
		}},
		{pattern: "(likes a b ?z)", want: [][]string{{"?z=c"}, {"?z=d"}}},
		{pattern: "(likes ?x b c)", want: [][]string{{"?x=a"}, {"?x=e"}}},
		{pattern: "(likes a ?y d)", want: [][]string{{"?y=b"}, {"?y=c"}}},
		{pattern: "(isa a b)", want: [][]string{{}}},
		{pattern: "(isa z ?b)", want: [][]string{}},
		{pattern: "(isa a e)", want: [][]string{}},
		{pattern: "(unknown ?x)", want: [][]string{}},
		{pattern: "(isa ?x)", want: [][]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := names(k.Query(mustFact(t, k, "fact: "+tt.pattern+";")))
			if diff := cmp.Diff(tt.want, got, sortRows, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Query(%s) mismatch (-want +got):\n%s", tt.pattern, diff)
			}
		})
	}
}

func TestQueryAllVariables(t *testing.T) {
	k := queryKB(t)

	got := k.Query(mustFact(t, k, "fact: (likes ?x ?y ?z);"))

	assert.Len(t, got, 5)
	for _, b := range got {
		require.Len(t, b, 3)
		assert.Equal(t, "?x", b[0].Var.Name())
		assert.Equal(t, "?y", b[1].Var.Name())
		assert.Equal(t, "?z", b[2].Var.Name())
	}
}

func TestQueryRepeatedVariableIsNotChecked(t *testing.T) {
	k := queryKB(t)

	got := k.Query(mustFact(t, k, "fact: (isa ?x ?x);"))

	assert.Len(t, got, 4)
}

func TestQueryIncludesDerivedFacts(t *testing.T) {
	k := New()
	mustAssert(t, k, mustFact(t, k, "fact: (isa Bob boy);"))
	mustAssert(t, k, mustFact(t, k, "fact: (isa Tom boy);"))
	mustAssert(t, k, mustRule(t, k, "rule: ((isa ?x boy)) -> (cool ?x);"))

	got := names(k.Query(mustFact(t, k, "fact: (cool ?who);")))

	assert.ElementsMatch(t, [][]string{{"?who=Bob"}, {"?who=Tom"}}, got)
}

func TestAsk(t *testing.T) {
	k := queryKB(t)

	assert.True(t, k.Ask(mustFact(t, k, "fact: (likes f f f);")))
	assert.False(t, k.Ask(mustFact(t, k, "fact: (likes f f a);")))
	assert.False(t, k.Ask(mustFact(t, k, "fact: (likes ?x f f);")))
}

func TestBindingLookup(t *testing.T) {
	k := queryKB(t)
	got := k.Query(mustFact(t, k, "fact: (isa f ?b);"))
	require.Len(t, got, 1)

	v, ok := got[0].Lookup(k.Intern("?b"))
	assert.True(t, ok)
	assert.Equal(t, "g", v.Name())
	assert.Equal(t, "?b = g", got[0].String())

	_, ok = got[0].Lookup(k.Intern("?c"))
	assert.False(t, ok)
}
