// Package parse turns knowledge base text into parsed records.
//
// Statement syntax:
//
//	fact: (isa Bob boy);
//	rule: ((isa ?x boy) (was ?x ?y)) -> (cool ?y);
//
// A file holds any number of statements, optionally wrapped in `kb { ... }`.
// Lines starting with # are comments and the trailing semicolon is optional.
package parse

import (
	"fmt"
	"os"
	"strings"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
)

// ParsedFact is a predicate name followed by argument names.
type ParsedFact struct {
	Pred string
	Args []string
}

// Tokens returns the fact as [pred, arg1, ..., argN].
func (f ParsedFact) Tokens() []string {
	out := make([]string, 0, len(f.Args)+1)
	out = append(out, f.Pred)
	return append(out, f.Args...)
}

// ParsedRule holds each premise and the conclusion as [pred, args...] token
// sequences.
type ParsedRule struct {
	LHS [][]string
	RHS []string
}

// ParsedStatement is either a fact or a rule; exactly one field is set.
type ParsedStatement struct {
	Fact *ParsedFact
	Rule *ParsedRule
}

// ParsedKnowledgeBase is the content of a knowledge base file.
type ParsedKnowledgeBase struct {
	Facts []ParsedFact
	Rules []ParsedRule
}

// Fact parses a single `fact: (...)` statement.
func Fact(text string) (ParsedFact, error) {
	st, err := Statement(text)
	if err != nil {
		return ParsedFact{}, err
	}
	if st.Fact == nil {
		return ParsedFact{}, fmt.Errorf("%w: expected a fact, got a rule", internalerr.ErrParse)
	}
	return *st.Fact, nil
}

// Rule parses a single `rule: (...) -> (...)` statement.
func Rule(text string) (ParsedRule, error) {
	st, err := Statement(text)
	if err != nil {
		return ParsedRule{}, err
	}
	if st.Rule == nil {
		return ParsedRule{}, fmt.Errorf("%w: expected a rule, got a fact", internalerr.ErrParse)
	}
	return *st.Rule, nil
}

// Statement parses exactly one fact or rule.
func Statement(text string) (ParsedStatement, error) {
	p, err := newParser(text)
	if err != nil {
		return ParsedStatement{}, err
	}
	st, err := p.statement()
	if err != nil {
		return ParsedStatement{}, err
	}
	if err := p.expect(tokEOF); err != nil {
		return ParsedStatement{}, err
	}
	return st, nil
}

// KnowledgeBase parses a whole knowledge base document.
func KnowledgeBase(text string) (ParsedKnowledgeBase, error) {
	p, err := newParser(text)
	if err != nil {
		return ParsedKnowledgeBase{}, err
	}

	wrapped := p.peek().kind == tokName && p.peek().text == "kb" && p.peekAt(1).kind == tokLBrace
	if wrapped {
		p.pos += 2
	}

	var pkb ParsedKnowledgeBase
	for {
		next := p.peek().kind
		if next == tokEOF || (wrapped && next == tokRBrace) {
			break
		}
		st, err := p.statement()
		if err != nil {
			return ParsedKnowledgeBase{}, err
		}
		if st.Fact != nil {
			pkb.Facts = append(pkb.Facts, *st.Fact)
		} else {
			pkb.Rules = append(pkb.Rules, *st.Rule)
		}
	}

	if wrapped {
		if err := p.expect(tokRBrace); err != nil {
			return ParsedKnowledgeBase{}, err
		}
	}
	if err := p.expect(tokEOF); err != nil {
		return ParsedKnowledgeBase{}, err
	}
	return pkb, nil
}

// File reads and parses a knowledge base file.
func File(path string) (ParsedKnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParsedKnowledgeBase{}, err
	}
	pkb, err := KnowledgeBase(string(data))
	if err != nil {
		return ParsedKnowledgeBase{}, fmt.Errorf("%s: %w", path, err)
	}
	return pkb, nil
}

type parser struct {
	toks []token
	pos  int
}

func newParser(text string) (*parser, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks}, nil
}

func (p *parser) peek() token { return p.peekAt(0) }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	tok := p.peek()
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) error {
	tok := p.next()
	if tok.kind != kind {
		return p.errorf(tok, "expected %s, got %s", kind, tok)
	}
	return nil
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", tok.line, internalerr.ErrParse, fmt.Sprintf(format, args...))
}

func (p *parser) statement() (ParsedStatement, error) {
	head := p.next()
	if head.kind != tokName || (head.text != "fact" && head.text != "rule") {
		return ParsedStatement{}, p.errorf(head, "expected fact: or rule:, got %s", head)
	}
	if err := p.expect(tokColon); err != nil {
		return ParsedStatement{}, err
	}

	var st ParsedStatement
	if head.text == "fact" {
		tokens, err := p.tuple()
		if err != nil {
			return ParsedStatement{}, err
		}
		st.Fact = &ParsedFact{Pred: tokens[0], Args: tokens[1:]}
	} else {
		rule, err := p.rule()
		if err != nil {
			return ParsedStatement{}, err
		}
		st.Rule = &rule
	}

	if p.peek().kind == tokSemi {
		p.next()
	}
	return st, nil
}

func (p *parser) rule() (ParsedRule, error) {
	if err := p.expect(tokLParen); err != nil {
		return ParsedRule{}, err
	}

	var rule ParsedRule
	for p.peek().kind == tokLParen {
		premise, err := p.tuple()
		if err != nil {
			return ParsedRule{}, err
		}
		rule.LHS = append(rule.LHS, premise)
	}
	if len(rule.LHS) == 0 {
		return ParsedRule{}, p.errorf(p.peek(), "rule needs at least one premise")
	}
	if err := p.expect(tokRParen); err != nil {
		return ParsedRule{}, err
	}
	if err := p.expect(tokArrow); err != nil {
		return ParsedRule{}, err
	}

	rhs, err := p.tuple()
	if err != nil {
		return ParsedRule{}, err
	}
	rule.RHS = rhs
	return rule, nil
}

// tuple parses `(pred arg...)`.
func (p *parser) tuple() ([]string, error) {
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}

	var out []string
	for p.peek().kind == tokName {
		out = append(out, p.next().text)
	}
	if len(out) == 0 {
		return nil, p.errorf(p.peek(), "expected a predicate name, got %s", p.peek())
	}
	if strings.HasPrefix(out[0], "?") {
		return nil, p.errorf(p.peek(), "predicate %q cannot be a variable", out[0])
	}
	if err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return out, nil
}
