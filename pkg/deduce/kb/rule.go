package kb

import (
	"slices"
	"strings"
)

// Rule is an implication: when every lhs pattern holds, rhs holds.
//
// Rules are stored whether or not their patterns are ground. A rule produced by
// specializing a multi-premise rule carries the (fact, rule) pair that produced
// it in its support list.
type Rule struct {
	id          string
	lhs         []*Fact
	rhs         *Fact
	supportedBy []Support
}

// NewRule builds a rule from premise patterns and a conclusion pattern.
func NewRule(lhs []*Fact, rhs *Fact, supportedBy ...Support) *Rule {
	return &Rule{
		lhs:         slices.Clone(lhs),
		rhs:         rhs,
		supportedBy: slices.Clone(supportedBy),
	}
}

func (r *Rule) ID() string { return r.id }

// LHS returns a copy of the premise list.
func (r *Rule) LHS() []*Fact { return slices.Clone(r.lhs) }

func (r *Rule) RHS() *Fact { return r.rhs }

func (r *Rule) SupportedBy() []Support { return slices.Clone(r.supportedBy) }

func (r *Rule) Asserted() bool { return len(r.supportedBy) == 0 }

// Equal compares premises in order and the conclusion structurally.
func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.rhs.Equal(other.rhs) && slices.EqualFunc(r.lhs, other.lhs, (*Fact).Equal)
}

func (r *Rule) AsFact() (*Fact, bool) { return nil, false }
func (r *Rule) AsRule() (*Rule, bool) { return r, true }

// String renders the rule as ((p ...) (q ...)) -> (r ...).
func (r *Rule) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range r.lhs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> ")
	b.WriteString(r.rhs.String())
	return b.String()
}
