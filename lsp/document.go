package lsp

import (
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"
)

// Document is an open query document. Text is the full content as last
// sent by the client.
type Document struct {
	URI     string
	Version int32
	Text    string
}

// DocumentStore keeps the open documents by URI. It is safe for
// concurrent use.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

func (s *DocumentStore) Update(uri string, version int32, text string) *Document {
	doc := &Document{URI: uri, Version: version, Text: text}
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// URIs returns the URIs of all open documents.
func (s *DocumentStore) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	return uris
}

// OffsetAt converts a zero-based line and UTF-16 character position to a
// byte offset into text. Positions past the end of a line clamp to the
// line end, lines past the end of text clamp to len(text).
func OffsetAt(text string, line, character int) int {
	offset := 0
	for l := 0; l < line; l++ {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}
		offset += next + 1
	}

	units := 0
	for offset < len(text) && units < character {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}
		units += utf16.RuneLen(r)
		offset += size
	}
	return offset
}

// PositionAt converts a byte offset into text to a zero-based line and
// UTF-16 character position.
func PositionAt(text string, offset int) (line, character int) {
	if offset > len(text) {
		offset = len(text)
	}
	for _, r := range text[:offset] {
		if r == '\n' {
			line++
			character = 0
			continue
		}
		character += utf16.RuneLen(r)
	}
	return line, character
}
