// Package symbol interns predicate and argument names into identity-compared
// handles.
//
// Two symbols are equal iff they are the same *Symbol. A Table only holds its
// entries weakly: once no fact, rule or caller references a symbol it may be
// collected, and a later Intern of the same text returns a fresh handle.
package symbol

import (
	"runtime"
	"strings"
	"sync"
	"weak"
)

// VariablePrefix marks a name as a variable.
const VariablePrefix = "?"

// Kind distinguishes constants from variables.
type Kind uint8

const (
	Constant Kind = iota
	Variable
)

func (k Kind) String() string {
	switch k {
	case Constant:
		return "constant"
	case Variable:
		return "variable"
	default:
		return "unknown"
	}
}

// Symbol is an interned name. Compare symbols by pointer, never by Name.
type Symbol struct {
	name string
	kind Kind
}

// Name returns the text the symbol was interned from.
func (s *Symbol) Name() string { return s.name }

// Kind returns whether the symbol is a constant or a variable.
func (s *Symbol) Kind() Kind { return s.kind }

// IsVar reports whether the symbol is a variable.
func (s *Symbol) IsVar() bool { return s.kind == Variable }

func (s *Symbol) String() string { return s.name }

// Table deduplicates symbols by name.
//
// The mutex only guards against the runtime cleanup goroutine evicting dead
// entries; a Table is otherwise used from a single goroutine.
type Table struct {
	mu      sync.Mutex
	entries map[string]weak.Pointer[Symbol]
}

// NewTable creates an empty symbol table.
func NewTable() *Table {
	return &Table{entries: make(map[string]weak.Pointer[Symbol])}
}

// Intern returns the live handle for name, creating and registering one if
// none exists.
func (t *Table) Intern(name string) *Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wp, ok := t.entries[name]; ok {
		if s := wp.Value(); s != nil {
			return s
		}
	}

	s := &Symbol{name: name, kind: Classify(name)}
	t.entries[name] = weak.Make(s)
	runtime.AddCleanup(s, t.evict, name)
	return s
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, wp := range t.entries {
		if wp.Value() != nil {
			n++
		}
	}
	return n
}

func (t *Table) evict(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A newer handle may already have replaced the collected one.
	if wp, ok := t.entries[name]; ok && wp.Value() == nil {
		delete(t.entries, name)
	}
}

// Classify decides the kind of a name lexically.
func Classify(name string) Kind {
	if strings.HasPrefix(name, VariablePrefix) {
		return Variable
	}
	return Constant
}
