// Package lsp serves query documents over the Language Server Protocol.
// Completions come from the suggestion engine evaluated against a data
// file, and syntax errors are published as diagnostics.
package lsp

import (
	"context"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/trail/query/methods"
	"github.com/dhamidi/trail/query/suggest"
)

const lsName = "trail"

type LSPServer struct {
	documents *DocumentStore
	source    *DataSource
	engine    *suggest.Engine
	handler   protocol.Handler
	server    *server.Server
	watcher   *DataWatcher
	log       commonlog.Logger
	version   string
	cancel    context.CancelFunc
}

// NewLSPServer creates a server completing against source with the given
// methods.
func NewLSPServer(version string, source *DataSource, registry methods.Registry) *LSPServer {
	ls := &LSPServer{
		documents: NewDocumentStore(),
		source:    source,
		engine:    suggest.New(suggest.WithMethods(registry)),
		log:       commonlog.GetLogger("trail.lsp"),
		version:   version,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", "(", "[", "{", ",", "#", "$"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.source.Load(); err != nil {
		ls.log.Errorf("%v", err)
	}
	if len(ls.source.Paths()) == 0 {
		return nil
	}

	watcher, err := NewDataWatcher(ls.source, func() {
		ls.log.Debugf("data reloaded, %d open documents", len(ls.documents.URIs()))
	})
	if err != nil {
		ls.log.Errorf("cannot watch data files: %v", err)
		return nil
	}
	watchCtx, cancel := context.WithCancel(context.Background())
	if err := watcher.Start(watchCtx); err != nil {
		cancel()
		watcher.Close()
		ls.log.Errorf("cannot watch data files: %v", err)
		return nil
	}
	ls.watcher, ls.cancel = watcher, cancel
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.cancel != nil {
		ls.cancel()
	}
	if ls.watcher != nil {
		return ls.watcher.Close()
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := ls.documents.Update(params.TextDocument.URI, params.TextDocument.Version, params.TextDocument.Text)
	ls.log.Debugf("opened %s", doc.URI)
	ls.publishDiagnostics(ctx, doc)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}
	doc := ls.documents.Update(params.TextDocument.URI, params.TextDocument.Version, textChange.Text)
	ls.log.Debugf("changed %s (version %d)", doc.URI, doc.Version)
	ls.publishDiagnostics(ctx, doc)
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.documents.Close(params.TextDocument.URI)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text == nil {
		return nil
	}
	version := int32(0)
	if doc := ls.documents.Get(params.TextDocument.URI); doc != nil {
		version = doc.Version
	}
	doc := ls.documents.Update(params.TextDocument.URI, version, *params.Text)
	ls.publishDiagnostics(ctx, doc)
	return nil
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := ls.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	offset := OffsetAt(doc.Text, int(params.Position.Line), int(params.Position.Character))
	items := ls.complete(doc.Text, offset)
	ls.log.Debugf("completion at %s:%d: %d items", doc.URI, offset, len(items))
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func (ls *LSPServer) complete(text string, offset int) []protocol.CompletionItem {
	data, context := ls.source.Get()
	return completionItems(text, ls.engine.Suggest(text, data, context, offset))
}

func (ls *LSPServer) publishDiagnostics(ctx *glsp.Context, doc *Document) {
	version := protocol.UInteger(doc.Version)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: diagnostics(doc.Text),
	})
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
