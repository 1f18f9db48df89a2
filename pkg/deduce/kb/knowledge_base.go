// Package kb implements an in-memory deductive knowledge base.
//
// Facts and rules are asserted into a KnowledgeBase, which forward-chains new
// facts and specialized rules as soon as their premises are available. Every
// derived statement records the (fact, rule) pair that produced it; retracting
// a statement removes everything that depended on it.
//
// A KnowledgeBase is not safe for concurrent use.
package kb

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/metrics"
	"github.com/cognicore/deduce/pkg/deduce/parse"
	"github.com/cognicore/deduce/pkg/deduce/symbol"
)

// KnowledgeBase owns the stored facts, the fact index, the rules and the
// symbol table every stored symbol was interned from.
type KnowledgeBase struct {
	facts   []*Fact
	index   map[indexKey]*predicateIndex
	rules   []*Rule
	symbols *symbol.Table

	log      *zap.Logger
	metrics  metrics.Recorder
	entropy  *ulid.MonotonicEntropy
	maxDepth int
}

// Option configures a KnowledgeBase.
type Option func(*KnowledgeBase)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(k *KnowledgeBase) {
		if l != nil {
			k.log = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(k *KnowledgeBase) {
		if r != nil {
			k.metrics = r
		}
	}
}

// WithMaxDepth bounds how many nested derivations a single assertion may
// trigger. Zero means unlimited. Derivations past the bound are dropped, so a
// bounded knowledge base may hold fewer facts than an unbounded one; use it
// only to stop rule sets that derive forever.
func WithMaxDepth(n int) Option {
	return func(k *KnowledgeBase) {
		if n > 0 {
			k.maxDepth = n
		}
	}
}

// WithSymbolTable shares an existing symbol table.
func WithSymbolTable(t *symbol.Table) Option {
	return func(k *KnowledgeBase) {
		if t != nil {
			k.symbols = t
		}
	}
}

// New creates an empty knowledge base.
func New(opts ...Option) *KnowledgeBase {
	k := &KnowledgeBase{
		index:   make(map[indexKey]*predicateIndex),
		symbols: symbol.NewTable(),
		log:     zap.NewNop(),
		metrics: metrics.NoOp{},
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// FromParsed creates a knowledge base holding the parsed facts and rules.
func FromParsed(pkb parse.ParsedKnowledgeBase, opts ...Option) *KnowledgeBase {
	k := New(opts...)
	k.Load(pkb)
	return k
}

// LoadResult counts what Load stored and what it skipped.
type LoadResult struct {
	Facts   int
	Rules   int
	Skipped int
}

// Load asserts parsed facts first, then parsed rules. Facts containing
// variables and statements already present are skipped.
func (k *KnowledgeBase) Load(pkb parse.ParsedKnowledgeBase) LoadResult {
	var res LoadResult

	for _, pf := range pkb.Facts {
		f := k.FactFrom(pf)
		if f.HasVar() {
			k.log.Debug("skipping non-ground fact", zap.Stringer("fact", f))
			res.Skipped++
			continue
		}
		if _, err := k.Assert(f); err != nil {
			k.log.Debug("skipping fact", zap.Stringer("fact", f), zap.Error(err))
			res.Skipped++
			continue
		}
		res.Facts++
	}

	for _, pr := range pkb.Rules {
		r := k.RuleFrom(pr)
		if _, err := k.Assert(r); err != nil {
			k.log.Debug("skipping rule", zap.Stringer("rule", r), zap.Error(err))
			res.Skipped++
			continue
		}
		res.Rules++
	}

	k.log.Info("knowledge loaded",
		zap.Int("facts", res.Facts),
		zap.Int("rules", res.Rules),
		zap.Int("skipped", res.Skipped))
	return res
}

// Intern returns this knowledge base's handle for name.
func (k *KnowledgeBase) Intern(name string) *symbol.Symbol {
	return k.symbols.Intern(name)
}

// FactFromTokens builds a fact from [pred, arg1, ..., argN]. An empty token
// list yields a fact whose predicate is the empty constant.
func (k *KnowledgeBase) FactFromTokens(tokens []string) *Fact {
	if len(tokens) == 0 {
		return NewFact(k.symbols.Intern(""), nil)
	}
	args := make([]*symbol.Symbol, 0, len(tokens)-1)
	for _, tok := range tokens[1:] {
		args = append(args, k.symbols.Intern(tok))
	}
	return NewFact(k.symbols.Intern(tokens[0]), args)
}

// FactFrom builds a fact from parser output.
func (k *KnowledgeBase) FactFrom(pf parse.ParsedFact) *Fact {
	return k.FactFromTokens(pf.Tokens())
}

// RuleFrom builds a rule from parser output.
func (k *KnowledgeBase) RuleFrom(pr parse.ParsedRule) *Rule {
	lhs := make([]*Fact, 0, len(pr.LHS))
	for _, premise := range pr.LHS {
		lhs = append(lhs, k.FactFromTokens(premise))
	}
	return NewRule(lhs, k.FactFromTokens(pr.RHS))
}

// CreateFact parses a single `fact: (...)` statement. Parse errors are
// returned unchanged.
func (k *KnowledgeBase) CreateFact(text string) (*Fact, error) {
	pf, err := parse.Fact(text)
	if err != nil {
		return nil, err
	}
	return k.FactFrom(pf), nil
}

// CreateRule parses a single `rule: (...) -> (...)` statement.
func (k *KnowledgeBase) CreateRule(text string) (*Rule, error) {
	pr, err := parse.Rule(text)
	if err != nil {
		return nil, err
	}
	return k.RuleFrom(pr), nil
}

// CreateStatement parses either a fact or a rule.
func (k *KnowledgeBase) CreateStatement(text string) (Statement, error) {
	ps, err := parse.Statement(text)
	if err != nil {
		return nil, err
	}
	if ps.Fact != nil {
		return k.FactFrom(*ps.Fact), nil
	}
	return k.RuleFrom(*ps.Rule), nil
}

// Facts returns a snapshot of the stored facts in insertion order.
func (k *KnowledgeBase) Facts() []*Fact {
	out := make([]*Fact, len(k.facts))
	copy(out, k.facts)
	return out
}

// Rules returns a snapshot of the stored rules in insertion order.
func (k *KnowledgeBase) Rules() []*Rule {
	out := make([]*Rule, len(k.rules))
	copy(out, k.rules)
	return out
}

// Stats summarizes the knowledge base contents.
type Stats struct {
	Facts         int
	AssertedFacts int
	Rules         int
	AssertedRules int
	Predicates    int
	Symbols       int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d facts (%d asserted), %d rules (%d asserted), %d predicates, %d symbols",
		s.Facts, s.AssertedFacts, s.Rules, s.AssertedRules, s.Predicates, s.Symbols)
}

func (k *KnowledgeBase) Stats() Stats {
	s := Stats{
		Facts:      len(k.facts),
		Rules:      len(k.rules),
		Predicates: len(k.index),
		Symbols:    k.symbols.Len(),
	}
	for _, f := range k.facts {
		if f.Asserted() {
			s.AssertedFacts++
		}
	}
	for _, r := range k.rules {
		if r.Asserted() {
			s.AssertedRules++
		}
	}
	return s
}

func (k *KnowledgeBase) newID() string {
	return ulid.MustNew(ulid.Now(), k.entropy).String()
}

func (k *KnowledgeBase) reject(kind string, err error) error {
	switch {
	case errors.Is(err, internalerr.ErrDuplicate):
		k.metrics.Rejected("duplicate")
	case errors.Is(err, internalerr.ErrGroundness):
		k.metrics.Rejected("groundness")
	case errors.Is(err, internalerr.ErrNotFound):
		k.metrics.Rejected("not_found")
	case errors.Is(err, internalerr.ErrUnsupportable):
		k.metrics.Rejected("unsupportable")
	default:
		k.metrics.Rejected("invalid")
	}
	k.log.Debug("statement rejected", zap.String("kind", kind), zap.Error(err))
	return err
}
