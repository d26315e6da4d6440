package filter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

const itemsResponse = `{
	"total": 3,
	"start": 0,
	"entries": [
		{"id": "1001", "status": {"code": "-", "display": "AVAILABLE"}, "location": {"code": "main"}, "barcode": "3100001", "createdDate": "2015-03-10T09:00:00Z"},
		{"id": "1002", "status": {"code": "m", "display": "MISSING"}, "location": {"code": "branch"}, "suppressed": true},
		{"id": "1003", "status": {"code": "-", "display": "AVAILABLE"}, "location": {"code": "branch"}, "callNumber": "QA76.73 .G63"}
	]
}`

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{name: "field comparison", expression: `status.code == "-"`},
		{name: "helpers", expression: `has("barcode") and startsWith(location.code, "ma")`},
		{name: "empty expression", expression: "   ", wantErr: true, errContains: "empty expression"},
		{name: "invalid syntax", expression: `contains("unclosed`, wantErr: true},
		{name: "non-boolean result", expression: `1 + 2`, wantErr: true},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.ErrorAs(t, err, &compErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, f.Expression())
		})
	}
}

func TestMatch(t *testing.T) {
	entry := decode(t, `{
		"id": "1001",
		"status": {"code": "-", "display": "AVAILABLE"},
		"location": {"code": "main", "name": "Main Library"},
		"fixedFields": {"61": {"label": "I TYPE", "value": "0"}},
		"copyNo": 2,
		"createdDate": "2015-03-10T09:00:00Z",
		"suppressed": false
	}`).(map[string]any)

	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{"nested field", `status.code == "-"`, true},
		{"number", `copyNo >= 2`, true},
		{"bool field", `not suppressed`, true},
		{"contains helper", `contains(location.name, "main library")`, true},
		{"endsWith helper", `endsWith(status.display, "able")`, true},
		{"has present", `has("fixedFields.61.value")`, true},
		{"has missing", `has("varFields")`, false},
		{"get path", `get("fixedFields.61.value") == "0"`, true},
		{"entry variable", `entry.id == "1001"`, true},
		{"in operator", `location.code in ["main", "branch"]`, true},
		{"date helper", `parseDate(createdDate) < parseDate("2016-01-01")`, true},
		{"days since", `daysSince(createdDate) > 365`, true},
		{"days since bad date", `daysSince("soon") == -1`, true},
		{"str helper", `str(copyNo) == "2"`, true},
		{"no match", `status.code == "m"`, false},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			require.NoError(t, err)

			got, err := f.Match(entry)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchRuntimeError(t *testing.T) {
	f, err := NewExprCompiler().Compile(`barcode`)
	require.NoError(t, err)

	_, err = f.Match(Entry{"barcode": "3100001"})
	assert.Error(t, err, "a string is not a boolean")
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isLost": func(code string) bool { return code == "$" },
	}))

	f, err := compiler.Compile(`isLost(status.code)`)
	require.NoError(t, err)

	got, err := f.Match(Entry{"status": map[string]any{"code": "$"}})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCompilerCache(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	a, err := compiler.Compile(`id == "a"`)
	require.NoError(t, err)
	again, err := compiler.Compile(`  id == "a"  `)
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, 1, compiler.Size())

	_, err = compiler.Compile(`id == "b"`)
	require.NoError(t, err)
	_, err = compiler.Compile(`id == "c"`)
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.Size())

	evicted, err := compiler.Compile(`id == "a"`)
	require.NoError(t, err)
	assert.NotSame(t, a, evicted)

	compiler.Clear()
	assert.Equal(t, 0, compiler.Size())

	assert.Equal(t, 0, NewExprCompiler().Size())
}

func TestLRUCache(t *testing.T) {
	c := newLRUCache[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// "b" is now the least recently used
	c.Put("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok)

	c.Put("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Size())
}

func TestEvaluateListResponse(t *testing.T) {
	compiler := NewExprCompiler()
	f, err := compiler.Compile(`status.code == "-"`)
	require.NoError(t, err)

	doc := decode(t, itemsResponse)
	out, err := NewEntryEvaluator().Evaluate(context.Background(), f, doc)
	require.NoError(t, err)

	result := out.(map[string]any)
	entries := result["entries"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "1001", entries[0].(map[string]any)["id"])
	assert.Equal(t, "1003", entries[1].(map[string]any)["id"])
	assert.Equal(t, 2, result["total"])
	assert.EqualValues(t, 0, result["start"])

	// The input document is left alone
	assert.Len(t, doc.(map[string]any)["entries"], 3)
}

func TestEvaluateArray(t *testing.T) {
	f, err := NewExprCompiler().Compile(`value > 2`)
	require.NoError(t, err)

	out, err := NewEntryEvaluator().Evaluate(context.Background(), f, decode(t, `[1, 2, 3, 4]`))
	require.NoError(t, err)
	assert.Equal(t, []any{float64(3), float64(4)}, out)
}

func TestEvaluateNotFilterable(t *testing.T) {
	f, err := NewExprCompiler().Compile(`true`)
	require.NoError(t, err)

	for _, doc := range []string{`{"id": "1"}`, `"text"`, `{"entries": "nope"}`} {
		_, err := NewEntryEvaluator().Evaluate(context.Background(), f, decode(t, doc))
		assert.ErrorIs(t, err, ErrNotFilterable, doc)
	}
}

func TestEvaluateErrors(t *testing.T) {
	f, err := NewExprCompiler().Compile(`barcode`)
	require.NoError(t, err)
	doc := decode(t, `[{"barcode": true}, {"barcode": "x"}, {"barcode": false}]`)

	_, err = NewEntryEvaluator().Evaluate(context.Background(), f, doc)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, 1, evalErr.Index)
	assert.Equal(t, "barcode", evalErr.Expression)

	out, err := NewEntryEvaluator(WithSkipErrors()).Evaluate(context.Background(), f, doc)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestEvaluateCanceled(t *testing.T) {
	f, err := NewExprCompiler().Compile(`true`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewEntryEvaluator().Evaluate(ctx, f, decode(t, itemsResponse))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestManager(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.RegisterFilters(map[string]string{
		"available": `status.code == "-"`,
		"branch":    `location.code == "branch"`,
	}))
	assert.Equal(t, []string{"available", "branch"}, m.ListFilters())

	err := m.RegisterFilters(map[string]string{"broken": `status.code ==`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	_, ok := m.GetFilter("broken")
	assert.False(t, ok)

	ctx := context.Background()
	out, err := m.Apply(ctx, "branch", decode(t, itemsResponse))
	require.NoError(t, err)
	assert.Len(t, out.(map[string]any)["entries"], 2)

	_, err = m.Apply(ctx, "missing", decode(t, itemsResponse))
	assert.Error(t, err)

	out, err = m.ApplyExpression(ctx, `has("callNumber")`, decode(t, itemsResponse))
	require.NoError(t, err)
	assert.Len(t, out.(map[string]any)["entries"], 1)

	m.UnregisterFilter("branch")
	assert.Equal(t, []string{"available"}, m.ListFilters())

	require.NoError(t, m.RegisterFilter("recent", `daysSince(createdDate) < 30`))
	f, ok := m.GetFilter("recent")
	require.True(t, ok)
	assert.Equal(t, `daysSince(createdDate) < 30`, f.Expression())

	_, err = m.Compile("")
	assert.Error(t, err)
}

func TestToTime(t *testing.T) {
	tests := []struct {
		in   any
		want time.Time
		ok   bool
	}{
		{"2015-03-10T09:00:00Z", time.Date(2015, 3, 10, 9, 0, 0, 0, time.UTC), true},
		{"2015-03-10", time.Date(2015, 3, 10, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"yesterday", time.Time{}, false},
		{42, time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := toTime(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.True(t, tt.want.Equal(got), tt.in)
	}
}
