package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// run executes the command line args against a configuration in a fresh
// directory and returns standard output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "trail.yaml")}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEvalCommand(t *testing.T) {
	data := writeFile(t, "data.json", `{"items": [{"n": 1}, {"n": 2}, {"n": 3}]}`)

	out, err := run(t, "", "eval", "-d", data, "items[n > 1].n")
	require.NoError(t, err)
	assert.JSONEq(t, `[2, 3]`, out)

	out, err = run(t, "", "eval", "-d", data, "-f", "line", "items.n.sum()")
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestEvalReadsStdin(t *testing.T) {
	context := writeFile(t, "context.yaml", "name: ctx\n")

	out, err := run(t, "a: 1\nb: two\n", "eval", "-d", "-", "-c", context, "-f", "yaml", "{b: $.b, who: name}")
	require.NoError(t, err)
	assert.Equal(t, "b: two\nwho: ctx\n", out)
}

func TestEvalUsesConfiguredData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte(`{"x": 41}`), 0o644))
	configPath := filepath.Join(dir, "trail.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("data: data.json\nformat: line\n"), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath, "eval", "x + 1"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "42\n", out.String())
}

func TestEvalSyntaxError(t *testing.T) {
	_, err := run(t, "", "eval", "foo +")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error at 1:6")
}

func TestSuggestCommand(t *testing.T) {
	data := writeFile(t, "data.json", `{"foo": {"a": 1, "b": 2}, "bar": 2}`)

	out, err := run(t, "", "suggest", "-d", data, "foo.|")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"contextKind": "path",
		"current": "",
		"candidates": ["property:a", "property:b"],
		"from": 4,
		"to": 4
	}`, out)

	out, err = run(t, "", "suggest", "-d", data, "--pos", "5", "foo =")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)
}

func TestCursor(t *testing.T) {
	tests := []struct {
		source string
		pos    int
		want   string
		offset int
	}{
		{"foo.|bar", -1, "foo.bar", 4},
		{"foo", -1, "foo", 3},
		{"a|b", 1, "a|b", 1},
	}

	for _, tt := range tests {
		source, offset, err := cursor(tt.source, tt.pos)
		require.NoError(t, err)
		assert.Equal(t, tt.want, source)
		assert.Equal(t, tt.offset, offset)
	}

	_, _, err := cursor("abc", 4)
	assert.Error(t, err)
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "", "parse", "foo.bar")
	require.NoError(t, err)
	assert.Equal(t, "Property [0-7] bar\n"+
		"  Property [0-3] foo\n"+
		"    Current [0-0] (implicit)\n", out)

	_, err = run(t, "", "parse", "foo.")
	assert.Error(t, err)

	out, err = run(t, "", "parse", "--suggest", "-f", "json", "foo.")
	require.NoError(t, err)
	assert.Contains(t, out, `"slots"`)
	assert.Contains(t, out, `"missing"`)
}

func TestTokensCommand(t *testing.T) {
	out, err := run(t, "", "tokens", "a.b")
	require.NoError(t, err)
	assert.Equal(t, "Identifier\t0-1\t1:1\t\"a\"\n"+
		".\t1-2\t1:2\t\".\"\n"+
		"Identifier\t2-3\t1:3\t\"b\"\n"+
		"EOF\t3-3\t1:4\t\"\"\n", out)
}

func TestFmtCommand(t *testing.T) {
	out, err := run(t, "a and(b or c)", "fmt")
	require.NoError(t, err)
	assert.Equal(t, "a and (b or c)\n", out)

	path := writeFile(t, "query.trail", ".foo . bar")
	_, err = run(t, "", "fmt", "-w", path)
	require.NoError(t, err)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo.bar\n", string(written))

	_, err = run(t, "", "fmt", "-w")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	configPath := writeFile(t, "trail.yaml", "format: xml\n")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", configPath, "tokens", "a"})
	assert.Error(t, cmd.Execute())
}
