package kb

import (
	"slices"

	"github.com/cognicore/deduce/pkg/deduce/symbol"
)

// indexKey separates facts of one predicate used at different arities, so
// every level of a predicateIndex has a symbol for every fact it holds.
type indexKey struct {
	pred  *symbol.Symbol
	arity int
}

// predicateIndex maps, for each argument position, a symbol to the facts
// holding that symbol at that position.
type predicateIndex struct {
	facts     []*Fact
	positions []map[*symbol.Symbol][]*Fact
}

func newPredicateIndex(arity int) *predicateIndex {
	idx := &predicateIndex{positions: make([]map[*symbol.Symbol][]*Fact, arity)}
	for i := range idx.positions {
		idx.positions[i] = make(map[*symbol.Symbol][]*Fact)
	}
	return idx
}

func (idx *predicateIndex) add(f *Fact) {
	idx.facts = append(idx.facts, f)
	for i, a := range f.args {
		idx.positions[i][a] = append(idx.positions[i][a], f)
	}
}

func (idx *predicateIndex) remove(f *Fact) {
	idx.facts = removePtr(idx.facts, f)
	for i, a := range f.args {
		bucket := removePtr(idx.positions[i][a], f)
		if len(bucket) == 0 {
			delete(idx.positions[i], a)
			continue
		}
		idx.positions[i][a] = bucket
	}
}

func (idx *predicateIndex) empty() bool { return len(idx.facts) == 0 }

// match returns the facts agreeing with pattern on every constant position.
// With no constant position every fact of the predicate matches.
func (idx *predicateIndex) match(pattern *Fact) map[*Fact]struct{} {
	var set map[*Fact]struct{}

	for i, a := range pattern.args {
		if a.IsVar() {
			continue
		}
		bucket := idx.positions[i][a]
		if len(bucket) == 0 {
			return nil
		}
		if set == nil {
			set = make(map[*Fact]struct{}, len(bucket))
			for _, f := range bucket {
				set[f] = struct{}{}
			}
			continue
		}
		next := make(map[*Fact]struct{}, min(len(set), len(bucket)))
		for _, f := range bucket {
			if _, ok := set[f]; ok {
				next[f] = struct{}{}
			}
		}
		if len(next) == 0 {
			return nil
		}
		set = next
	}

	if set == nil {
		set = make(map[*Fact]struct{}, len(idx.facts))
		for _, f := range idx.facts {
			set[f] = struct{}{}
		}
	}
	return set
}

func (k *KnowledgeBase) indexFact(f *Fact) {
	key := indexKey{pred: f.pred, arity: len(f.args)}
	idx, ok := k.index[key]
	if !ok {
		idx = newPredicateIndex(len(f.args))
		k.index[key] = idx
	}
	idx.add(f)
}

func (k *KnowledgeBase) unindexFact(f *Fact) {
	key := indexKey{pred: f.pred, arity: len(f.args)}
	idx, ok := k.index[key]
	if !ok {
		return
	}
	idx.remove(f)
	if idx.empty() {
		delete(k.index, key)
	}
}

// lookup returns the stored facts matching pattern.
func (k *KnowledgeBase) lookup(pattern *Fact) map[*Fact]struct{} {
	if pattern == nil || pattern.pred == nil {
		return nil
	}
	idx, ok := k.index[indexKey{pred: pattern.pred, arity: len(pattern.args)}]
	if !ok {
		return nil
	}
	return idx.match(pattern)
}

// removePtr deletes the first occurrence of p, preserving order.
func removePtr[T any](s []*T, p *T) []*T {
	i := slices.Index(s, p)
	if i < 0 {
		return s
	}
	return slices.Delete(s, i, i+1)
}
