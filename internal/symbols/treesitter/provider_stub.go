//go:build !cgo

// Package treesitter builds document symbol forests from tree-sitter syntax trees.
package treesitter

import (
	"context"

	"github.com/temirov/doccomments/internal/symbols"
)

// Provider yields no symbols when cgo is unavailable, so callers fall back to selection-only targets.
type Provider struct{}

// NewProvider constructs the cgo-less Provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Supports always reports false without the tree-sitter bindings.
func (provider *Provider) Supports(string) bool {
	return false
}

// DocumentSymbols returns a nil forest.
func (provider *Provider) DocumentSymbols(context.Context, symbols.Document) ([]symbols.Node, error) {
	return nil, nil
}
