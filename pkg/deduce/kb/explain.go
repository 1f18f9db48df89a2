package kb

import (
	"fmt"
	"strings"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
)

// Justification is the support tree of a stored statement. Asserted
// statements are leaves.
type Justification struct {
	Statement Statement
	Because   []Derivation
}

// Derivation is one way a statement was derived.
type Derivation struct {
	Fact *Justification
	Rule *Justification
}

// Explain returns the support tree of a stored fact.
func (k *KnowledgeBase) Explain(fact *Fact) (*Justification, error) {
	stored := k.findFact(fact)
	if stored == nil {
		return nil, fmt.Errorf("explain %s: %w", fact, internalerr.ErrNotFound)
	}
	return justify(stored), nil
}

// ExplainRule returns the support tree of a stored rule.
func (k *KnowledgeBase) ExplainRule(rule *Rule) (*Justification, error) {
	stored := k.findRule(rule)
	if stored == nil {
		return nil, fmt.Errorf("explain %s: %w", rule, internalerr.ErrNotFound)
	}
	return justify(stored), nil
}

// justify terminates because support links always point at statements that
// were stored earlier.
func justify(st Statement) *Justification {
	var supports []Support
	if f, ok := st.AsFact(); ok {
		supports = f.supportedBy
	} else {
		r, _ := st.AsRule()
		supports = r.supportedBy
	}

	j := &Justification{Statement: st}
	for _, s := range supports {
		j.Because = append(j.Because, Derivation{Fact: justify(s.Fact), Rule: justify(s.Rule)})
	}
	return j
}

// Asserted reports whether the statement is a leaf.
func (j *Justification) Asserted() bool { return len(j.Because) == 0 }

// Depth is the length of the longest derivation chain below j.
func (j *Justification) Depth() int {
	depth := 0
	for _, d := range j.Because {
		depth = max(depth, d.Fact.Depth()+1, d.Rule.Depth()+1)
	}
	return depth
}

// String renders the tree with one statement per line.
func (j *Justification) String() string {
	var b strings.Builder
	j.write(&b, "", "")
	return strings.TrimRight(b.String(), "\n")
}

func (j *Justification) write(b *strings.Builder, indent, label string) {
	b.WriteString(indent)
	b.WriteString(label)
	b.WriteString(j.Statement.String())
	if j.Asserted() {
		b.WriteString(" [asserted]")
	}
	b.WriteByte('\n')

	for _, d := range j.Because {
		d.Fact.write(b, indent+"  ", "from ")
		d.Rule.write(b, indent+"  ", "via ")
	}
}
