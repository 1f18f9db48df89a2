package internalerr

import "errors"

// Sentinel errors shared by the knowledge base, the parser and the config layer.
// Callers match them with errors.Is; operations wrap them with context.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("duplicate entry")
	ErrGroundness    = errors.New("fact contains a variable")
	ErrUnsupportable = errors.New("statement is supported by other statements")
	ErrNoUnifier     = errors.New("no unifier")
	ErrParse         = errors.New("parse failure")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
)
