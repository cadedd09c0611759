// # internal/engine/parser/pool.go
package parser

import (
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parsers for one grammar. Component analysis
// parses two or three regions per file, so allocating a fresh parser per
// region adds up quickly on large trees.
//
// Usage:
//
//	sp := pool.Get()
//	defer pool.Put(sp)
//	tree := sp.Parse(source, nil)
//
// Concurrency: safe for use by multiple goroutines simultaneously.
type ParserPool struct {
	langID string
	lang   *sitter.Language
	pool   sync.Pool
	active atomic.Int64
}

// NewParserPool creates a pool for the given grammar.
// The language must remain valid for the lifetime of the pool.
func NewParserPool(langID string, lang *sitter.Language) *ParserPool {
	p := &ParserPool{langID: langID, lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			_ = sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// Get leases a parser configured for the pool's grammar.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	// Reset() drops the language on some binding versions.
	_ = sp.SetLanguage(p.lang)
	p.active.Add(1)
	return sp
}

// Put returns a parser to the pool. Callers must not use sp afterwards.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.active.Add(-1)
	sp.Reset()
	p.pool.Put(sp)
}

// Language returns the language ID the pool parses.
func (p *ParserPool) Language() string {
	return p.langID
}

// Stats returns the number of parsers currently leased.
func (p *ParserPool) Stats() int {
	return int(p.active.Load())
}
