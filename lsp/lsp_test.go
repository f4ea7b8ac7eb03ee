package lsp

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/trail/query/methods"
	"github.com/dhamidi/trail/query/suggest"
	"github.com/dhamidi/trail/query/value"
)

func TestOffsetAt(t *testing.T) {
	text := "foo\n  .bär\nx"

	tests := []struct {
		line, character int
		want            int
	}{
		{0, 0, 0},
		{0, 3, 3},
		{0, 99, 3},
		{1, 0, 4},
		{1, 3, 7},
		{1, 5, 10},
		{1, 6, 11},
		{2, 1, 13},
		{5, 0, len(text)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OffsetAt(text, tt.line, tt.character), "line %d character %d", tt.line, tt.character)
	}
}

func TestPositionAt(t *testing.T) {
	text := "foo\n  .bär\nx"

	tests := []struct {
		offset          int
		line, character int
	}{
		{0, 0, 0},
		{3, 0, 3},
		{4, 1, 0},
		{11, 1, 6},
		{13, 2, 1},
		{99, 2, 1},
	}

	for _, tt := range tests {
		line, character := PositionAt(text, tt.offset)
		assert.Equal(t, []int{tt.line, tt.character}, []int{line, character}, "offset %d", tt.offset)
	}
}

func TestDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	store.Update("file:///a.trail", 1, "foo")
	store.Update("file:///a.trail", 2, "foo.")

	doc := store.Get("file:///a.trail")
	require.NotNil(t, doc)
	assert.Equal(t, int32(2), doc.Version)
	assert.Equal(t, "foo.", doc.Text)
	assert.Equal(t, []string{"file:///a.trail"}, store.URIs())

	store.Close("file:///a.trail")
	assert.Nil(t, store.Get("file:///a.trail"))
}

func TestCompletionItems(t *testing.T) {
	text := "foo\n.si"
	s := &suggest.Suggestion{
		ContextKind: "method",
		Current:     "si",
		Candidates:  []string{"method:size", "property:sig"},
		From:        5,
		To:          7,
	}

	items := completionItems(text, s)
	require.Len(t, items, 2)

	assert.Equal(t, "size", items[0].Label)
	assert.Equal(t, protocol.CompletionItemKindMethod, *items[0].Kind)
	assert.Equal(t, "method", *items[0].Detail)
	assert.Equal(t, protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 1, Character: 1},
			End:   protocol.Position{Line: 1, Character: 3},
		},
		NewText: "size",
	}, items[0].TextEdit)

	assert.Equal(t, "sig", items[1].Label)
	assert.Equal(t, protocol.CompletionItemKindField, *items[1].Kind)

	assert.Nil(t, completionItems(text, nil))
}

func TestDiagnostics(t *testing.T) {
	assert.Empty(t, diagnostics("foo.bar"))

	got := diagnostics("foo\n  +")
	require.Len(t, got, 1)
	assert.Equal(t, protocol.DiagnosticSeverityError, *got[0].Severity)
	assert.Equal(t, "trail", *got[0].Source)
	assert.Equal(t, protocol.Position{Line: 1, Character: 3}, got[0].Range.Start)
	assert.Contains(t, got[0].Message, "expected expression")

	got = diagnostics("a )")
	require.Len(t, got, 1)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 2},
		End:   protocol.Position{Line: 0, Character: 3},
	}, got[0].Range)
}

func writeData(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDataSource(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.json")
	contextPath := filepath.Join(dir, "context.yaml")
	writeData(t, dataPath, `{"foo": 1}`)
	writeData(t, contextPath, "name: ctx\n")

	source := NewDataSource(dataPath, contextPath)
	require.NoError(t, source.Load())
	data, context := source.Get()
	assert.Equal(t, value.ObjectOf("foo", 1.0), data)
	assert.Equal(t, value.ObjectOf("name", "ctx"), context)
	assert.Equal(t, []string{dataPath, contextPath}, source.Paths())

	writeData(t, dataPath, `{"foo": `)
	assert.Error(t, source.Load())
	data, _ = source.Get()
	assert.Equal(t, value.ObjectOf("foo", 1.0), data, "failed reload keeps previous data")
}

func TestDataSourceWithoutFiles(t *testing.T) {
	source := NewDataSource("", "")
	require.NoError(t, source.Load())
	data, context := source.Get()
	assert.Equal(t, value.Undefined, data)
	assert.Equal(t, value.Undefined, context)
	assert.Empty(t, source.Paths())
}

func TestServerCompletes(t *testing.T) {
	source := NewDataSource("", "")
	source.Set(value.MustParse(`{"foo": [{"a": 1}, {"b": 2}], "bar": 2}`), nil)
	ls := NewLSPServer("test", source, methods.Builtins())

	items := ls.complete("foo.", 4)
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	assert.Equal(t, []string{"a", "b"}, labels)

	items = ls.complete("foo.si()", 6)
	require.NotEmpty(t, items)
	assert.Equal(t, protocol.CompletionItemKindMethod, *items[0].Kind)

	assert.Empty(t, ls.complete("foo =", 5))
}

func TestDataWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.json")
	writeData(t, dataPath, `{"version": 1}`)

	source := NewDataSource(dataPath, "")
	require.NoError(t, source.Load())

	var reloads atomic.Int32
	watcher, err := NewDataWatcher(source, func() { reloads.Add(1) })
	require.NoError(t, err)
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	writeData(t, dataPath, `{"version": 2}`)

	assert.Eventually(t, func() bool {
		data, _ := source.Get()
		return value.Equal(data, value.ObjectOf("version", 2.0))
	}, 5*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))
}
