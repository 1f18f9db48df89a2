package kb

import (
	"slices"
	"strings"

	"github.com/cognicore/deduce/pkg/deduce/symbol"
)

// Support is one justification of a derived statement: the fact that
// triggered a rule, and the rule that fired.
type Support struct {
	Fact *Fact
	Rule *Rule
}

// Fact is a predicate applied to an ordered argument list.
//
// Facts are immutable. A fact with an empty support list was asserted directly;
// otherwise it was derived by forward chaining. Only ground facts are stored;
// facts with variables act as rule patterns and query patterns.
type Fact struct {
	id          string
	pred        *symbol.Symbol
	args        []*symbol.Symbol
	supportedBy []Support
}

// NewFact builds a fact from interned symbols.
func NewFact(pred *symbol.Symbol, args []*symbol.Symbol, supportedBy ...Support) *Fact {
	return &Fact{
		pred:        pred,
		args:        slices.Clone(args),
		supportedBy: slices.Clone(supportedBy),
	}
}

// ID is assigned when the fact is stored; templates have an empty ID.
func (f *Fact) ID() string { return f.id }

func (f *Fact) Pred() *symbol.Symbol { return f.pred }

// Args returns a copy of the argument list.
func (f *Fact) Args() []*symbol.Symbol { return slices.Clone(f.args) }

func (f *Fact) Arity() int { return len(f.args) }

// SupportedBy returns a copy of the justification list.
func (f *Fact) SupportedBy() []Support { return slices.Clone(f.supportedBy) }

// Asserted reports whether the fact has no justification, i.e. it was told
// directly rather than derived.
func (f *Fact) Asserted() bool { return len(f.supportedBy) == 0 }

// HasVar reports whether any argument is a variable.
func (f *Fact) HasVar() bool {
	for _, a := range f.args {
		if a.IsVar() {
			return true
		}
	}
	return false
}

// IsGround reports whether the fact has no variable arguments.
func (f *Fact) IsGround() bool { return !f.HasVar() }

// Equal compares predicate and arguments by symbol identity. Support is ignored.
func (f *Fact) Equal(other *Fact) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.pred == other.pred && slices.Equal(f.args, other.args)
}

func (f *Fact) AsFact() (*Fact, bool) { return f, true }
func (f *Fact) AsRule() (*Rule, bool) { return nil, false }

// String renders the fact as (pred arg ...).
func (f *Fact) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(f.pred.Name())
	for _, a := range f.args {
		b.WriteByte(' ')
		b.WriteString(a.Name())
	}
	b.WriteByte(')')
	return b.String()
}
