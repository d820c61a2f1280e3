// Package symbols models document symbol forests and resolves the smallest symbol enclosing a position.
package symbols

import (
	"context"
	"strings"
)

// Kind classifies a symbol node. The set mirrors the LSP symbol kinds the editor integrations care about.
type Kind int

const (
	KindFile Kind = iota + 1
	KindModule
	KindNamespace
	KindPackage
	KindClass
	KindMethod
	KindProperty
	KindField
	KindConstructor
	KindEnum
	KindInterface
	KindFunction
	KindVariable
	KindConstant
	KindStruct
	KindEvent
	KindOperator
	KindTypeParameter
)

var kindNames = map[Kind]string{
	KindFile:          "file",
	KindModule:        "module",
	KindNamespace:     "namespace",
	KindPackage:       "package",
	KindClass:         "class",
	KindMethod:        "method",
	KindProperty:      "property",
	KindField:         "field",
	KindConstructor:   "constructor",
	KindEnum:          "enum",
	KindInterface:     "interface",
	KindFunction:      "function",
	KindVariable:      "variable",
	KindConstant:      "constant",
	KindStruct:        "struct",
	KindEvent:         "event",
	KindOperator:      "operator",
	KindTypeParameter: "type_parameter",
}

// String returns the lower-case label of the kind.
func (kind Kind) String() string {
	if name, known := kindNames[kind]; known {
		return name
	}
	return "unknown"
}

// KindSet is a membership predicate over symbol kinds.
type KindSet map[Kind]struct{}

// NewKindSet builds a KindSet from the provided kinds.
func NewKindSet(kinds ...Kind) KindSet {
	set := make(KindSet, len(kinds))
	for _, kind := range kinds {
		set[kind] = struct{}{}
	}
	return set
}

// Contains reports whether kind belongs to the set.
func (set KindSet) Contains(kind Kind) bool {
	_, found := set[kind]
	return found
}

var (
	// CallableKinds selects functions, methods and constructors.
	CallableKinds = NewKindSet(KindFunction, KindMethod, KindConstructor)
	// TypeKinds selects classes, structs and interfaces.
	TypeKinds = NewKindSet(KindClass, KindStruct, KindInterface)
)

// Position is a zero-based line and byte column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Before reports whether position sorts strictly before other.
func (position Position) Before(other Position) bool {
	if position.Line != other.Line {
		return position.Line < other.Line
	}
	return position.Column < other.Column
}

// Span delimits a region of text. End is never before Start.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether position lies within the span, both endpoints included.
func (span Span) Contains(position Position) bool {
	return !position.Before(span.Start) && !span.End.Before(position)
}

// IsEmpty reports whether the span covers no text.
func (span Span) IsEmpty() bool {
	return span.Start == span.End
}

// Node is a symbol in a forest. Children are expected to nest inside the parent's span.
type Node struct {
	Name          string
	Kind          Kind
	Span          Span
	SelectionSpan Span
	Children      []Node
}

// Document identifies the source handed to a Provider.
type Document struct {
	Path       string
	LanguageID string
	Source     []byte
}

// Provider produces the symbol forest of a document. A nil forest means the provider has nothing for it.
type Provider interface {
	DocumentSymbols(ctx context.Context, document Document) ([]Node, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(context.Context, Document) ([]Node, error)

// DocumentSymbols invokes the underlying function.
func (provider ProviderFunc) DocumentSymbols(ctx context.Context, document Document) ([]Node, error) {
	return provider(ctx, document)
}

// Describe renders a node as "kind name" for logs.
func Describe(node Node) string {
	name := strings.TrimSpace(node.Name)
	if name == "" {
		return node.Kind.String()
	}
	return node.Kind.String() + " " + name
}
