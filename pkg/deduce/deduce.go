// Package deduce is the text-level entry point to the knowledge base: it
// accepts statements in the `fact: (...)` / `rule: (...) -> (...)` syntax and
// forwards them to a kb.KnowledgeBase.
package deduce

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cognicore/deduce/pkg/deduce/config"
	"github.com/cognicore/deduce/pkg/deduce/kb"
	"github.com/cognicore/deduce/pkg/deduce/metrics"
	"github.com/cognicore/deduce/pkg/deduce/parse"
)

// Engine is the main knowledge engine facade.
type Engine struct {
	kb       *kb.KnowledgeBase
	log      *zap.Logger
	registry *prometheus.Registry
	sources  []string
}

// Options configures an Engine built with New.
type Options struct {
	Logger   *zap.Logger
	Metrics  metrics.Recorder
	MaxDepth int
}

// New creates an empty engine.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		kb: kb.New(
			kb.WithLogger(log),
			kb.WithMetrics(opts.Metrics),
			kb.WithMaxDepth(opts.MaxDepth),
		),
		log: log,
	}
}

// Open builds an engine from a configuration file and loads the configured
// knowledge files followed by kbPaths. configPath may be empty.
func Open(configPath string, kbPaths ...string) (*Engine, error) {
	loader := config.Loader{ConfigPath: configPath, KnowledgePaths: kbPaths}
	comp, err := loader.Load()
	if err != nil {
		return nil, err
	}
	var sources []string
	if configPath != "" {
		sources = append(sources, configPath)
	}
	sources = append(sources, comp.Config.Knowledge.Files...)
	sources = append(sources, kbPaths...)

	return &Engine{kb: comp.KB, log: comp.Logger, registry: comp.Registry, sources: sources}, nil
}

// Sources lists the configuration and knowledge files an engine built by
// Open was read from.
func (e *Engine) Sources() []string { return slices.Clone(e.sources) }

// Close flushes the logger.
func (e *Engine) Close() error {
	_ = e.log.Sync()
	return nil
}

// KB exposes the underlying knowledge base.
func (e *Engine) KB() *kb.KnowledgeBase { return e.kb }

// Registry is the metrics registry, or nil when metrics are disabled.
func (e *Engine) Registry() *prometheus.Registry { return e.registry }

// Load parses a knowledge base file and asserts its contents.
func (e *Engine) Load(path string) (kb.LoadResult, error) {
	pkb, err := parse.File(path)
	if err != nil {
		return kb.LoadResult{}, err
	}
	return e.kb.Load(pkb), nil
}

// Tell asserts a fact or rule.
func (e *Engine) Tell(text string) (kb.Statement, error) {
	st, err := e.kb.CreateStatement(text)
	if err != nil {
		return nil, err
	}
	return e.kb.Assert(st)
}

// Ask reports whether a ground fact is stored. The `fact:` keyword is
// optional.
func (e *Engine) Ask(text string) (bool, error) {
	f, err := e.fact(text)
	if err != nil {
		return false, err
	}
	return e.kb.Ask(f), nil
}

// Query returns the bindings of every stored fact matching the pattern,
// sorted by their rendering.
func (e *Engine) Query(text string) ([]kb.Binding, error) {
	f, err := e.fact(text)
	if err != nil {
		return nil, err
	}
	out := e.kb.Query(f)
	SortBindings(out)
	return out, nil
}

// Retract removes an asserted fact or rule and its consequences.
func (e *Engine) Retract(text string) error {
	st, err := e.statement(text)
	if err != nil {
		return err
	}
	return e.kb.Retract(st)
}

// Explain returns the support tree of a stored fact or rule.
func (e *Engine) Explain(text string) (*kb.Justification, error) {
	st, err := e.statement(text)
	if err != nil {
		return nil, err
	}
	if f, ok := st.AsFact(); ok {
		return e.kb.Explain(f)
	}
	r, _ := st.AsRule()
	return e.kb.ExplainRule(r)
}

func (e *Engine) fact(text string) (*kb.Fact, error) {
	return e.kb.CreateFact(withKeyword(text))
}

func (e *Engine) statement(text string) (kb.Statement, error) {
	return e.kb.CreateStatement(withKeyword(text))
}

// withKeyword prefixes bare tuples with the fact keyword, and bare rules
// with the rule keyword.
func withKeyword(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "(") {
		return t
	}
	if strings.Contains(t, "->") {
		return "rule: " + t
	}
	return "fact: " + t
}

// SortBindings orders query results by their rendering.
func SortBindings(bs []kb.Binding) {
	slices.SortFunc(bs, func(a, b kb.Binding) int {
		return strings.Compare(a.String(), b.String())
	})
}

// FormatBindings renders query results one per line; a match with no
// variables prints as "yes".
func FormatBindings(bs []kb.Binding) string {
	if len(bs) == 0 {
		return "no"
	}
	var b strings.Builder
	for i, binding := range bs {
		if i > 0 {
			b.WriteByte('\n')
		}
		if len(binding) == 0 {
			b.WriteString("yes")
			continue
		}
		fmt.Fprint(&b, binding)
	}
	return b.String()
}
