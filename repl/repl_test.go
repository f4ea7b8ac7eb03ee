package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/trail/query/methods"
	"github.com/dhamidi/trail/query/value"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newSession() (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	data := value.MustParse(`{"foo": [{"a": 1}, {"b": 2}], "bar": 2}`)
	return NewSession(&out, data, nil, methods.Builtins()), &out
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		pos         int
		head        string
		completions []string
		tail        string
	}{
		{"property prefix", "fo", 2, "", []string{"foo"}, ""},
		{"all properties", "", 0, "", []string{"bar", "foo"}, ""},
		{"nested", "foo.", 4, "foo.", []string{"a", "b"}, ""},
		{"method name", "foo.si()", 6, "foo.", []string{"size"}, "()"},
		{"no slot", "1 +", 3, "1 +", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession()
			head, completions, tail := s.Complete(tt.line, tt.pos)
			assert.Equal(t, tt.head, head)
			assert.Equal(t, tt.completions, completions)
			assert.Equal(t, tt.tail, tail)
		})
	}
}

func TestCompleteCountsRunes(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out, value.MustParse(`{"été": 1, "ça": 2}`), nil, nil)

	head, completions, tail := s.Complete("ét", 2)
	assert.Equal(t, "", head)
	assert.Equal(t, []string{"été"}, completions)
	assert.Equal(t, "", tail)
}

func TestEval(t *testing.T) {
	s, out := newSession()

	s.Eval("bar * 2")
	assert.Equal(t, "4\n", out.String())

	out.Reset()
	s.Format = "line"
	s.Eval("foo.(a)")
	assert.Equal(t, "1\n", out.String())

	out.Reset()
	s.Eval("foo.size()")
	assert.Equal(t, "2\n", out.String())
}

func TestEvalReportsErrors(t *testing.T) {
	s, out := newSession()

	s.Eval("foo +")
	assert.Contains(t, out.String(), "error: syntax error at 1:6")

	out.Reset()
	s.Eval("foo.nope()")
	assert.Contains(t, out.String(), "error: ")
	assert.Contains(t, out.String(), "nope")
}

func TestCommand(t *testing.T) {
	s, out := newSession()

	assert.True(t, s.Command(":format yaml"))
	assert.Equal(t, "yaml", s.Format)

	assert.True(t, s.Command(":format xml"))
	assert.Equal(t, "yaml", s.Format)
	assert.Contains(t, out.String(), "error: ")

	out.Reset()
	assert.True(t, s.Command(":format"))
	assert.Equal(t, "yaml\n", out.String())

	out.Reset()
	assert.True(t, s.Command(":fmt 1+2"))
	assert.Equal(t, "1 + 2\n", out.String())

	out.Reset()
	assert.True(t, s.Command(":help"))
	assert.Contains(t, out.String(), ":data <file>")

	out.Reset()
	assert.True(t, s.Command(":methods"))
	assert.Contains(t, out.String(), "size")

	out.Reset()
	assert.True(t, s.Command(":ast foo."))
	assert.Contains(t, out.String(), "(missing)")

	assert.False(t, s.Command(":nope"))
}

func TestCommandLoadsDocuments(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.json")
	contextPath := filepath.Join(dir, "context.yaml")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"x": 1}`), 0o644))
	require.NoError(t, os.WriteFile(contextPath, []byte("name: ctx\n"), 0o644))

	s, out := newSession()
	require.True(t, s.Command(":data "+dataPath))
	require.True(t, s.Command(":context "+contextPath))

	out.Reset()
	s.Eval("[$.x, name, #.name]")
	assert.JSONEq(t, `[1, "ctx", "ctx"]`, out.String())

	out.Reset()
	s.Command(":data " + filepath.Join(dir, "missing.json"))
	assert.Contains(t, out.String(), "error: ")
	assert.Equal(t, 1.0, value.Get(s.Data, "x"))
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"foo", false},
		{"foo[", true},
		{"foo[a]", false},
		{"{a: (1", true},
		{"'abc", true},
		{`"a\"`, true},
		{"'a' + 'b'", false},
		{"a)", false},
		{"foo\n.bar", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsMoreInput(tt.input))
		})
	}
}
