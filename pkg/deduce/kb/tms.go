package kb

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/metrics"
)

// Retract removes an asserted fact or rule together with every statement
// derived from it, transitively.
//
// Derived statements cannot be retracted directly; retract one of their
// justifications instead.
func (k *KnowledgeBase) Retract(st Statement) error {
	if st == nil {
		return k.reject("unknown", fmt.Errorf("retract: %w: nil statement", internalerr.ErrInvalidInput))
	}

	if fact, ok := st.AsFact(); ok {
		if fact.HasVar() {
			return k.reject(metrics.KindFact, fmt.Errorf("retract fact %s: %w", fact, internalerr.ErrGroundness))
		}
		stored := k.findFact(fact)
		if stored == nil {
			return k.reject(metrics.KindFact, fmt.Errorf("retract fact %s: %w", fact, internalerr.ErrNotFound))
		}
		if !stored.Asserted() {
			return k.reject(metrics.KindFact, fmt.Errorf("retract fact %s: %w", fact, internalerr.ErrUnsupportable))
		}
		k.dropFact(stored)
		k.metrics.Retracted(metrics.KindFact)
		k.log.Debug("fact retracted", zap.Stringer("fact", stored), zap.Int("remaining", len(k.facts)))
		return nil
	}

	rule, _ := st.AsRule()
	stored := k.findRule(rule)
	if stored == nil {
		return k.reject(metrics.KindRule, fmt.Errorf("retract rule %s: %w", rule, internalerr.ErrNotFound))
	}
	if !stored.Asserted() {
		return k.reject(metrics.KindRule, fmt.Errorf("retract rule %s: %w", rule, internalerr.ErrUnsupportable))
	}
	k.dropRule(stored)
	k.metrics.Retracted(metrics.KindRule)
	k.log.Debug("rule retracted", zap.Stringer("rule", stored), zap.Int("remaining", len(k.rules)))
	return nil
}

// cascade removes every stored statement justified by the removed one. Each
// dependent is removed whole, so no surviving statement keeps a pointer to a
// removed justification.
func (k *KnowledgeBase) cascade(removed Support) {
	dependsOn := func(supports []Support) bool {
		for _, s := range supports {
			if removed.Fact != nil && s.Fact == removed.Fact {
				return true
			}
			if removed.Rule != nil && s.Rule == removed.Rule {
				return true
			}
		}
		return false
	}

	for _, f := range k.Facts() {
		if dependsOn(f.supportedBy) && k.dropFact(f) {
			k.metrics.Cascaded(metrics.KindFact)
		}
	}
	for _, r := range k.Rules() {
		if dependsOn(r.supportedBy) && k.dropRule(r) {
			k.metrics.Cascaded(metrics.KindRule)
		}
	}
}
