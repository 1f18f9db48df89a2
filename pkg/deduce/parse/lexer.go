package parse

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokColon
	tokSemi
	tokArrow
)

var tokenNames = map[tokenKind]string{
	tokEOF:    "end of input",
	tokName:   "name",
	tokLParen: "'('",
	tokRParen: "')'",
	tokLBrace: "'{'",
	tokRBrace: "'}'",
	tokColon:  "':'",
	tokSemi:   "';'",
	tokArrow:  "'->'",
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) String() string {
	if t.kind == tokName {
		return fmt.Sprintf("%q", t.text)
	}
	return t.kind.String()
}

var punct = map[rune]tokenKind{
	'(': tokLParen,
	')': tokRParen,
	'{': tokLBrace,
	'}': tokRBrace,
	':': tokColon,
	';': tokSemi,
}

// lex always terminates the token stream with a tokEOF.
func lex(text string) ([]token, error) {
	var toks []token
	line := 1

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])

		switch {
		case r == '\n':
			line++
			i += size
		case unicode.IsSpace(r):
			i += size
		case r == '#':
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case r == '-' && i+1 < len(text) && text[i+1] == '>':
			toks = append(toks, token{kind: tokArrow, text: "->", line: line})
			i += 2
		case punct[r] != tokEOF:
			toks = append(toks, token{kind: punct[r], text: string(r), line: line})
			i += size
		case isNameStart(r):
			start := i
			i += size
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if !isNameRune(r) || (r == '-' && i+1 < len(text) && text[i+1] == '>') {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokName, text: text[start:i], line: line})
		default:
			return nil, fmt.Errorf("line %d: %w: unexpected character %q", line, internalerr.ErrParse, r)
		}
	}

	return append(toks, token{kind: tokEOF, line: line}), nil
}

func isNameStart(r rune) bool {
	return r == '?' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
