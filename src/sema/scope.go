// Package sema implements the two-pass semantic analyzer: symbol resolution,
// expression typing, return-path ("always_returns") checking, and pointer-compatibility
// rules, via a scope stack and a plain recursive walk of the AST.
package sema

import "cplusc/src/ast"
import "cplusc/src/source"

// Kind differentiates the role a Symbol plays.
type Kind int

const (
	Variable Kind = iota
	Function
	Parameter
)

// ParamSig is one entry of a Function symbol's parameter signature.
type ParamSig struct {
	Type ast.TypeKind
	PointerLevel int
}

// Symbol is a named entity visible in some Scope.
type Symbol struct {
	Name string
	Kind Kind
	Type ast.TypeKind
	PointerLevel int
	IsConst bool
	ArraySize int // > 0 for array-decayed Variable/Parameter symbols
	Location source.Location

	// Function-only fields.
	Params []ParamSig
	ReturnType ast.TypeKind
	ReturnPointerLevel int
}

// ScopeKind differentiates the syntactic region a Scope was opened for.
type ScopeKind int

const (
	Global ScopeKind = iota
	FunctionScope
	Block
	Loop
)

// Scope is a lexical symbol table with a parent pointer for nested lookup.
type Scope struct {
	kind ScopeKind
	parent *Scope
	symbols []*Symbol
}

// NewScope opens a child scope of kind under parent (parent may be nil for the
// Global scope).
func NewScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{kind: kind, parent: parent}
}

// Declare adds sym to s. If s already has a symbol of that name, Declare leaves s
// unmodified and returns the existing symbol together with false, so the caller can
// report both the duplicate and where the original was declared.
func (s *Scope) Declare(sym *Symbol) (existing *Symbol, ok bool) {
	for _, e := range s.symbols {
		if e.Name == sym.Name {
			return e, false
		}
	}
	s.symbols = append(s.symbols, sym)
	return nil, true
}

// Lookup searches s and then its ancestors, front-to-back within each scope.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		for _, e := range cur.symbols {
			if e.Name == name {
				return e, true
			}
		}
	}
	return nil, false
}

// EnclosingLoop walks s's ancestors (including s itself) for the nearest Loop-kind
// scope, used to validate break/continue.
func (s *Scope) EnclosingLoop() (*Scope, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.kind == Loop {
			return cur, true
		}
	}
	return nil, false
}
