package ast

import "fmt"

// Position is a single point in the original template source
type Position struct {
	Offset int `json:"offset" yaml:"offset"` // from start of file, 0-based
	Line   int `json:"line" yaml:"line"`     // 1-based
	Column int `json:"column" yaml:"column"` // 1-based
}

// SourceLocation is the node's range. Start is inclusive and End is exclusive:
// [Start, End). Source holds the exact input slice for that range.
type SourceLocation struct {
	Start  Position `json:"start" yaml:"start"`
	End    Position `json:"end" yaml:"end"`
	Source string   `json:"source" yaml:"source"`
}

// LocStub is the location given to nodes synthesized by transforms. It has no
// source text behind it.
var LocStub = SourceLocation{
	Start:  Position{Offset: 0, Line: 1, Column: 1},
	End:    Position{Offset: 0, Line: 1, Column: 1},
	Source: "",
}

// Len returns the number of source bytes covered by the location
func (l SourceLocation) Len() int {
	return l.End.Offset - l.Start.Offset
}

// IsSynthetic reports whether l is LocStub. Zero-length spans the parser
// produces at other offsets are real locations.
func (l SourceLocation) IsSynthetic() bool {
	return l == LocStub
}

// Contains reports whether other lies entirely within l
func (l SourceLocation) Contains(other SourceLocation) bool {
	return other.Start.Offset >= l.Start.Offset && other.End.Offset <= l.End.Offset
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", l.Start.Line, l.Start.Column, l.End.Line, l.End.Column)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
