package filter

import (
	"context"
)

// Entry is one decoded JSON object from a Sierra list response.
type Entry = map[string]any

// Filter defines the basic interface for entry filters
type Filter interface {
	// Match checks if an entry matches the filter criteria
	Match(entry Entry) (bool, error)
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator applies a filter to a decoded response document
type Evaluator interface {
	// Evaluate returns doc with only the matching entries left
	Evaluate(ctx context.Context, filter Filter, doc any) (any, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
