package filter

import (
	"context"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*EntryEvaluator)

// WithSkipErrors treats entries the filter cannot evaluate as non-matching
// instead of failing the whole document.
func WithSkipErrors() EvaluatorOption {
	return func(e *EntryEvaluator) {
		e.skipErrors = true
	}
}

// EntryEvaluator filters the entries of Sierra responses.
//
// Two document shapes are understood: a list object whose "entries" array
// holds the records (its "total" is updated to the filtered count) and a
// bare top-level array. Non-object entries are exposed to the expression as
// the variable value.
type EntryEvaluator struct {
	skipErrors bool
}

// NewEntryEvaluator creates a new evaluator
func NewEntryEvaluator(opts ...EvaluatorOption) *EntryEvaluator {
	e := &EntryEvaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns a copy of doc holding only the entries filter matches
func (e *EntryEvaluator) Evaluate(ctx context.Context, filter Filter, doc any) (any, error) {
	switch d := doc.(type) {
	case []any:
		return e.filterEntries(ctx, filter, d)

	case map[string]any:
		entries, ok := d["entries"].([]any)
		if !ok {
			return nil, ErrNotFilterable
		}
		matched, err := e.filterEntries(ctx, filter, entries)
		if err != nil {
			return nil, err
		}

		out := make(map[string]any, len(d))
		for k, v := range d {
			out[k] = v
		}
		out["entries"] = matched
		if _, ok := d["total"]; ok {
			out["total"] = len(matched)
		}
		return out, nil

	default:
		return nil, ErrNotFilterable
	}
}

func (e *EntryEvaluator) filterEntries(ctx context.Context, filter Filter, entries []any) ([]any, error) {
	matched := make([]any, 0, len(entries))
	for i, raw := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, ok := raw.(map[string]any)
		if !ok {
			entry = Entry{"value": raw}
		}

		match, err := filter.Match(entry)
		if err != nil {
			if e.skipErrors {
				continue
			}
			return nil, &EvaluationError{
				Expression: expressionOf(filter),
				Index:      i,
				Reason:     err.Error(),
				Err:        err,
			}
		}
		if match {
			matched = append(matched, raw)
		}
	}
	return matched, nil
}

func expressionOf(filter Filter) string {
	if cf, ok := filter.(CompiledFilter); ok {
		return cf.Expression()
	}
	return "<filter>"
}

var _ Evaluator = (*EntryEvaluator)(nil)
