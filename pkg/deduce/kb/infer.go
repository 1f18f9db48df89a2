package kb

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/symbol"
)

// Bindings maps variables to the symbols they were unified with.
type Bindings map[*symbol.Symbol]*symbol.Symbol

func (b Bindings) String() string {
	parts := make([]string, 0, len(b))
	for v, s := range b {
		parts = append(parts, v.Name()+"="+s.Name())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Assert stores a fact or rule and forward-chains its consequences.
//
// A fact must be ground. Asserting a statement that is already stored fails
// with internalerr.ErrDuplicate. The returned statement is the stored record.
func (k *KnowledgeBase) Assert(st Statement) (Statement, error) {
	if st == nil {
		return nil, k.reject("unknown", fmt.Errorf("assert: %w: nil statement", internalerr.ErrInvalidInput))
	}
	if rule, ok := st.AsRule(); ok && rule.rhs == nil {
		return nil, k.reject(kindOf(st), fmt.Errorf("assert rule: %w: missing conclusion", internalerr.ErrInvalidInput))
	}

	stored, err := k.assert(st, 0)
	if err != nil {
		return nil, k.reject(kindOf(st), err)
	}
	return stored, nil
}

func (k *KnowledgeBase) assert(st Statement, depth int) (Statement, error) {
	if fact, ok := st.AsFact(); ok {
		stored, err := k.addFact(fact)
		if err != nil {
			return nil, err
		}
		k.recordStored(stored, depth)
		k.log.Debug("fact stored",
			zap.Stringer("fact", stored),
			zap.String("id", stored.id),
			zap.Int("depth", depth))

		for _, rule := range k.Rules() {
			k.infer(stored, rule, depth)
		}
		return stored, nil
	}

	rule, _ := st.AsRule()
	stored, err := k.addRule(rule)
	if err != nil {
		return nil, err
	}
	k.recordStored(stored, depth)
	k.log.Debug("rule stored",
		zap.Stringer("rule", stored),
		zap.String("id", stored.id),
		zap.Int("depth", depth))

	for _, fact := range k.Facts() {
		k.infer(fact, stored, depth)
	}
	return stored, nil
}

// infer matches fact against the first premise of rule only. A single-premise
// rule yields its conclusion; a longer rule yields a specialized rule with the
// first premise consumed, which fires later as matching facts arrive.
func (k *KnowledgeBase) infer(fact *Fact, rule *Rule, depth int) {
	if len(rule.lhs) == 0 {
		return
	}
	bindings, err := TryBind(fact, rule.lhs[0])
	if err != nil {
		return
	}

	support := Support{Fact: fact, Rule: rule}
	var derived Statement
	if len(rule.lhs) == 1 {
		rhs := ApplyBindings(rule.rhs, bindings)
		if rhs.HasVar() {
			return
		}
		derived = NewFact(rhs.pred, rhs.args, support)
	} else {
		lhs := make([]*Fact, 0, len(rule.lhs)-1)
		for _, premise := range rule.lhs[1:] {
			lhs = append(lhs, ApplyBindings(premise, bindings))
		}
		derived = NewRule(lhs, ApplyBindings(rule.rhs, bindings), support)
	}

	if k.maxDepth > 0 && depth+1 > k.maxDepth {
		k.metrics.DepthExceeded()
		k.log.Warn("derivation dropped at depth limit",
			zap.Stringer("statement", derived),
			zap.Int("max_depth", k.maxDepth))
		return
	}

	// Redundant and underdetermined derivations are expected.
	if _, err := k.assert(derived, depth+1); err != nil {
		k.log.Debug("derivation not stored", zap.Stringer("statement", derived), zap.Error(err))
	}
}

// TryBind unifies two facts position by position.
//
// It fails when predicates or arities differ, or when a position holds two
// distinct constants or two distinct variables. Variable-to-variable aliasing is
// not supported. A variable bound twice keeps its last binding.
func TryBind(f1, f2 *Fact) (Bindings, error) {
	if f1.pred != f2.pred || len(f1.args) != len(f2.args) {
		return nil, internalerr.ErrNoUnifier
	}

	bindings := make(Bindings)
	for i, a1 := range f1.args {
		a2 := f2.args[i]
		switch {
		case a1 == a2:
		case a1.IsVar() && !a2.IsVar():
			bindings[a1] = a2
		case a2.IsVar() && !a1.IsVar():
			bindings[a2] = a1
		default:
			return nil, internalerr.ErrNoUnifier
		}
	}
	return bindings, nil
}

// ApplyBindings returns a copy of fact with every bound variable replaced.
// Unbound variables are left in place.
func ApplyBindings(fact *Fact, bindings Bindings) *Fact {
	args := make([]*symbol.Symbol, len(fact.args))
	for i, a := range fact.args {
		if v, ok := bindings[a]; ok && a.IsVar() {
			args[i] = v
			continue
		}
		args[i] = a
	}
	return &Fact{pred: fact.pred, args: args}
}
