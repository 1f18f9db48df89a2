package kb

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
)

// insertFact stores a frozen copy of fact and indexes it.
func (k *KnowledgeBase) insertFact(fact *Fact) *Fact {
	stored := NewFact(fact.pred, fact.args, fact.supportedBy...)
	stored.id = k.newID()

	k.facts = append(k.facts, stored)
	k.indexFact(stored)
	return stored
}

// addFact stores a ground fact that is not already present.
func (k *KnowledgeBase) addFact(fact *Fact) (*Fact, error) {
	if fact.HasVar() {
		return nil, fmt.Errorf("add fact %s: %w", fact, internalerr.ErrGroundness)
	}
	if k.findFact(fact) != nil {
		return nil, fmt.Errorf("add fact %s: %w", fact, internalerr.ErrDuplicate)
	}
	return k.insertFact(fact), nil
}

// removeFact removes the stored fact equal to fact and everything that
// depended on it.
func (k *KnowledgeBase) removeFact(fact *Fact) error {
	stored := k.findFact(fact)
	if stored == nil {
		return fmt.Errorf("remove fact %s: %w", fact, internalerr.ErrNotFound)
	}
	k.dropFact(stored)
	return nil
}

// dropFact unlinks a stored fact and cascades. It reports false when the
// fact was already gone.
func (k *KnowledgeBase) dropFact(stored *Fact) bool {
	i := slices.Index(k.facts, stored)
	if i < 0 {
		return false
	}
	k.facts = slices.Delete(k.facts, i, i+1)
	k.unindexFact(stored)

	k.log.Debug("fact removed", zap.Stringer("fact", stored), zap.String("id", stored.id))
	k.cascade(Support{Fact: stored})
	return true
}

func (k *KnowledgeBase) insertRule(rule *Rule) *Rule {
	stored := NewRule(rule.lhs, rule.rhs, rule.supportedBy...)
	stored.id = k.newID()

	k.rules = append(k.rules, stored)
	return stored
}

func (k *KnowledgeBase) addRule(rule *Rule) (*Rule, error) {
	if k.findRule(rule) != nil {
		return nil, fmt.Errorf("add rule %s: %w", rule, internalerr.ErrDuplicate)
	}
	return k.insertRule(rule), nil
}

func (k *KnowledgeBase) removeRule(rule *Rule) error {
	stored := k.findRule(rule)
	if stored == nil {
		return fmt.Errorf("remove rule %s: %w", rule, internalerr.ErrNotFound)
	}
	k.dropRule(stored)
	return nil
}

func (k *KnowledgeBase) dropRule(stored *Rule) bool {
	i := slices.Index(k.rules, stored)
	if i < 0 {
		return false
	}
	k.rules = slices.Delete(k.rules, i, i+1)

	k.log.Debug("rule removed", zap.Stringer("rule", stored), zap.String("id", stored.id))
	k.cascade(Support{Rule: stored})
	return true
}

// findFact returns the stored fact structurally equal to fact, or nil.
// Stored facts are ground, so a pattern with variables never matches.
func (k *KnowledgeBase) findFact(fact *Fact) *Fact {
	if fact == nil || fact.HasVar() {
		return nil
	}
	for f := range k.lookup(fact) {
		return f
	}
	return nil
}

func (k *KnowledgeBase) findRule(rule *Rule) *Rule {
	i := slices.IndexFunc(k.rules, rule.Equal)
	if i < 0 {
		return nil
	}
	return k.rules[i]
}

// ContainsFact reports whether a fact with the same predicate and arguments
// is stored.
func (k *KnowledgeBase) ContainsFact(fact *Fact) bool {
	return k.findFact(fact) != nil
}

// ContainsRule reports whether a structurally equal rule is stored.
func (k *KnowledgeBase) ContainsRule(rule *Rule) bool {
	return rule != nil && k.findRule(rule) != nil
}

func (k *KnowledgeBase) recordStored(st Statement, depth int) {
	if depth == 0 {
		k.metrics.Asserted(kindOf(st))
		return
	}
	k.metrics.Derived(kindOf(st))
}
