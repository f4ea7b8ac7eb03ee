package lsp

import (
	"errors"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/trail/query/parser"
	"github.com/dhamidi/trail/query/suggest"
)

const diagnosticSource = "trail"

// completionItems turns a suggestion into completion items that replace
// the suggestion's span of text.
func completionItems(text string, s *suggest.Suggestion) []protocol.CompletionItem {
	if s == nil {
		return nil
	}
	editRange := rangeOf(text, s.From, s.To)

	items := make([]protocol.CompletionItem, 0, len(s.Candidates))
	for _, candidate := range s.Candidates {
		kind := protocol.CompletionItemKindField
		name := strings.TrimPrefix(candidate, suggest.PropertyPrefix)
		if strings.HasPrefix(candidate, suggest.MethodPrefix) {
			kind = protocol.CompletionItemKindMethod
			name = strings.TrimPrefix(candidate, suggest.MethodPrefix)
		}
		detail := s.ContextKind
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
			TextEdit: protocol.TextEdit{
				Range:   editRange,
				NewText: name,
			},
		})
	}
	return items
}

// diagnostics compiles text strictly and reports the syntax error, if any.
func diagnostics(text string) []protocol.Diagnostic {
	_, err := parser.Parse(text)
	if err == nil {
		return []protocol.Diagnostic{}
	}

	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource
	diagnostic := protocol.Diagnostic{
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
		Range:    rangeOf(text, len(text), len(text)),
	}

	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		diagnostic.Range = rangeOf(text, syntaxErr.Got.Start(), syntaxErr.Got.End())
	}
	return []protocol.Diagnostic{diagnostic}
}

func rangeOf(text string, from, to int) protocol.Range {
	return protocol.Range{
		Start: positionOf(text, from),
		End:   positionOf(text, to),
	}
}

func positionOf(text string, offset int) protocol.Position {
	line, character := PositionAt(text, offset)
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(character),
	}
}
