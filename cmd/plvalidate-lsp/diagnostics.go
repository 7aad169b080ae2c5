package main

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"

	"github.com/featureforge/plvalidate/registry"
	"github.com/featureforge/plvalidate/rules"
	"github.com/featureforge/plvalidate/validate"
)

type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*document
}

type document struct {
	uri     string
	content string
	version int32
}

func (ds *documentStore) get(uri string) *document {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.docs[uri]
}

func (ds *documentStore) put(uri string, content string, version int32) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.docs[uri] = &document{uri: uri, content: content, version: version}
}

func (ds *documentStore) remove(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.docs, uri)
}

func (s *Server) publishDiagnostics(ctx context.Context, uri string) {
	doc := s.docs.get(uri)
	if doc == nil {
		return
	}

	diagnostics := validateDocument(doc)

	if s.conn != nil {
		s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentURI(uri),
			Diagnostics: diagnostics,
		})
	}
}

// validateDocument parses doc as a registry document and reports the
// parse error, any feature-model inconsistency, and any peripheral rule
// violation as zero-position diagnostics. Registry documents carry no
// position-tracking metadata the way tony IR nodes do, so every
// diagnostic anchors to the start of the document.
func validateDocument(doc *document) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	reg, err := registry.Parse([]byte(doc.content))
	if err != nil {
		return append(diagnostics, diagAt(err.Error(), "plvalidate"))
	}

	modelRes := validate.ModelConsistency(reg, validate.DefaultRootFeatureID)
	if !modelRes.IsConsistent {
		diagnostics = append(diagnostics, diagAt(modelRes.Message, "plvalidate-sat"))
	}

	rulesRes := rules.Check(reg, "", nil)
	for _, v := range rulesRes.Violations {
		diagnostics = append(diagnostics, diagAt(v.String(), "plvalidate-rules"))
	}

	return diagnostics
}

func diagAt(message, source string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 0},
		},
		Severity: protocol.DiagnosticSeverityError,
		Message:  message,
		Source:   source,
	}
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs.put(string(params.TextDocument.URI), params.TextDocument.Text, params.TextDocument.Version)
	s.publishDiagnostics(ctx, string(params.TextDocument.URI))
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return nil
	}

	content := doc.content
	for _, change := range params.ContentChanges {
		// Full-document sync only (see Initialize's TextDocumentSyncKindFull):
		// every change replaces the whole text.
		content = change.Text
	}

	s.docs.put(string(params.TextDocument.URI), content, params.TextDocument.Version)
	s.publishDiagnostics(ctx, string(params.TextDocument.URI))
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.remove(string(params.TextDocument.URI))
	return nil
}
