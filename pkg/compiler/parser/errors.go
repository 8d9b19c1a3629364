package parser

import (
	"fmt"
	"strings"

	"github.com/recera/vtc/pkg/compiler/ast"
)

// Error is a syntax error anchored at a source location
type Error struct {
	Filename string
	Loc      ast.SourceLocation
	Msg      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Loc.Start.Line, e.Loc.Start.Column, e.Msg)
}

// ErrorList collects every error found during a parse, in source order
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%s (and %d more errors)\n%s", l[0].Error(), len(l)-1, strings.Join(msgs[1:], "\n"))
}

// Err returns l as an error, or nil when l is empty
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
