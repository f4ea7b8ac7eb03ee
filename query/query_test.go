package query

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/trail/query/eval"
	"github.com/dhamidi/trail/query/methods"
	"github.com/dhamidi/trail/query/parser"
	"github.com/dhamidi/trail/query/suggest"
	"github.com/dhamidi/trail/query/value"
)

var data = value.MustParse(`{
	"foo": [{"a": 1, "b": 2}, {"b": 3, "c": 4}, {}, {"d": 5}],
	"bar": 2
}`)

func TestPrimitiveStrings(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`"str\"ing"`, `str"ing`},
		{`'str\'ing'`, `str'ing`},
	}

	for _, tt := range tests {
		result, err := MustCompile(tt.source).Evaluate(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, result)
	}
}

// modules builds a small dependency graph: a -> b -> c, a -> c, d -> a.
func modules() *value.Object {
	c := value.ObjectOf("filename", "c.js", "deps", []any{})
	b := value.ObjectOf("filename", "b.js", "deps", []any{c})
	a := value.ObjectOf("filename", "a.js", "deps", []any{b, c})
	return value.ObjectOf("filename", "d.js", "deps", []any{a})
}

func sortedStrings(t *testing.T, v any) []string {
	t.Helper()
	list, ok := v.([]any)
	require.True(t, ok, "result %#v is not a list", v)
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		require.True(t, ok, "element %#v is not a string", item)
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func TestRecursiveDependencies(t *testing.T) {
	q := MustCompile("#..deps.filename")

	result, err := q.Evaluate(nil, modules())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "b.js", "c.js"}, sortedStrings(t, result))

	result, err = MustCompile("(# + #..deps).filename").Evaluate(nil, modules())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "b.js", "c.js", "d.js"}, sortedStrings(t, result))
}

func TestQueryStartsFromContext(t *testing.T) {
	input := value.MustParse(`{"nums": [1, 2, 3], "foo": 1}`)
	context := value.ObjectOf("deps", []any{}, "filename", "a.js")

	result, err := MustCompile("filename").Evaluate(input, context)
	require.NoError(t, err)
	assert.Equal(t, "a.js", result)

	result, err = MustCompile("$.nums.[# > 1]").Evaluate(input, context)
	require.NoError(t, err)
	assert.Equal(t, []any{2.0, 3.0}, result)

	suggestion, err := MustCompile("", WithSuggest()).Suggest(input, context, 0)
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, []string{"property:deps", "property:filename"}, suggestion.Candidates)
}

func TestCompileFailsWithSyntaxError(t *testing.T) {
	_, err := Compile("foo +")
	require.Error(t, err)

	var syntaxErr *parser.SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 5, syntaxErr.Pos.Offset)
}

func TestCompileWithSuggestAcceptsIncompleteQuery(t *testing.T) {
	q, err := Compile("foo +", WithSuggest())
	require.NoError(t, err)
	assert.Error(t, q.Err())
	assert.Equal(t, "foo +", q.Source())
	assert.NotNil(t, q.Root())
	assert.NotEmpty(t, q.Slots())
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name   string
		source string
		offset int
		want   *suggest.Suggestion
	}{
		{"empty query", "", 0, &suggest.Suggestion{
			ContextKind: "path",
			Current:     "",
			Candidates:  []string{"property:foo", "property:bar"},
			From:        0,
			To:          0,
		}},
		{"trailing stop", ".foo.", 5, &suggest.Suggestion{
			ContextKind: "path",
			Current:     "",
			Candidates:  []string{"property:a", "property:b", "property:c", "property:d"},
			From:        5,
			To:          5,
		}},
		{"operator without gap", "foo =", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := MustCompile(tt.source, WithSuggest())
			got, err := q.Suggest(data, value.Undefined, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestRequiresSuggestMode(t *testing.T) {
	_, err := MustCompile("foo").Suggest(data, nil, 0)
	assert.ErrorIs(t, err, ErrSuggestDisabled)
}

func TestMethodsAreInjected(t *testing.T) {
	_, err := MustCompile("foo.size()").Evaluate(data, nil)
	var unknown *eval.UnknownMethodError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "size", unknown.Name)

	result, err := MustCompile("foo.size()", WithMethods(methods.Builtins())).Evaluate(data, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, result)

	shout := methods.Registry{
		"shout": {Fn: func(target any, _ []any) (any, error) {
			return value.ToString(target) + "!", nil
		}},
	}
	result, err = MustCompile("'hey'.shout()", WithMethods(shout)).Evaluate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hey!", result)
}

func TestMatcherOption(t *testing.T) {
	q := MustCompile("'a.c' ~= '.'", WithMatcher(eval.SubstringMatcher))
	result, err := q.Evaluate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, result)

	result, err = MustCompile("'abc' ~= '.'").Evaluate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, result)

	result, err = MustCompile("'abc' ~= '.'", WithMatcher(eval.SubstringMatcher)).Evaluate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, false, result)
}

func TestEvaluateIsReusable(t *testing.T) {
	q := MustCompile("bar * 2")

	var wg sync.WaitGroup
	results := make([]any, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := value.ObjectOf("bar", float64(i))
			results[i], _ = q.Evaluate(input, nil)
		}(i)
	}
	wg.Wait()

	for i, result := range results {
		assert.Equal(t, float64(i*2), result)
	}
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("(") })
}
