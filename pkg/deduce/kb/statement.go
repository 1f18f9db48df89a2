package kb

import "github.com/cognicore/deduce/pkg/deduce/metrics"

// Statement is either a Fact or a Rule. Assert and Retract accept both and
// branch on the concrete kind through AsFact/AsRule.
type Statement interface {
	AsFact() (*Fact, bool)
	AsRule() (*Rule, bool)
	String() string
}

var (
	_ Statement = (*Fact)(nil)
	_ Statement = (*Rule)(nil)
)

func kindOf(st Statement) string {
	if _, ok := st.AsFact(); ok {
		return metrics.KindFact
	}
	return metrics.KindRule
}
