package kb

import (
	"strings"

	"github.com/cognicore/deduce/pkg/deduce/symbol"
)

// Pair binds one query variable to the symbol found in a matching fact.
type Pair struct {
	Var   *symbol.Symbol
	Value *symbol.Symbol
}

// Binding lists a value for every variable of a query pattern, in the order
// the variables appear in the pattern.
type Binding []Pair

// Lookup returns the value bound to v.
func (b Binding) Lookup(v *symbol.Symbol) (*symbol.Symbol, bool) {
	for _, p := range b {
		if p.Var == v {
			return p.Value, true
		}
	}
	return nil, false
}

func (b Binding) String() string {
	parts := make([]string, len(b))
	for i, p := range b {
		parts[i] = p.Var.Name() + " = " + p.Value.Name()
	}
	return strings.Join(parts, ", ")
}

// Ask reports whether fact is stored. No inference happens at ask time; the
// answer reflects only what forward chaining has already materialized.
func (k *KnowledgeBase) Ask(fact *Fact) bool {
	return k.ContainsFact(fact)
}

// Query returns one Binding per stored fact matching pattern. Constant
// positions must match exactly; variable positions match anything.
//
// The order of the returned bindings is unspecified.
func (k *KnowledgeBase) Query(pattern *Fact) []Binding {
	if pattern == nil {
		return nil
	}

	var vars []int
	for i, a := range pattern.args {
		if a.IsVar() {
			vars = append(vars, i)
		}
	}

	matches := k.lookup(pattern)
	out := make([]Binding, 0, len(matches))
	for f := range matches {
		b := make(Binding, 0, len(vars))
		for _, i := range vars {
			b = append(b, Pair{Var: pattern.args[i], Value: f.args[i]})
		}
		out = append(out, b)
	}
	return out
}
