// # internal/engine/parser/parser.go
package parser

import (
	"fmt"
	"time"

	"vuescope/internal/core/errors"
	"vuescope/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parser turns region content into grammar-agnostic trees. One Parser is
// shared by every goroutine of a run; parsers are leased per call.
type Parser struct {
	loader *GrammarLoader
	pools  map[string]*ParserPool
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader: loader,
		pools:  make(map[string]*ParserPool),
	}
	for _, langID := range loader.Languages() {
		lang, _ := loader.Language(langID)
		p.pools[langID] = NewParserPool(langID, lang)
	}
	return p
}

// Supports reports whether a grammar for langID is loaded.
func (p *Parser) Supports(langID string) bool {
	_, ok := p.pools[langID]
	return ok
}

// Parse parses content with the grammar for langID. Grammar errors do not
// fail the call; they are reported through Tree.FirstError so the caller can
// decide how strict to be.
func (p *Parser) Parse(langID, content string) (*Tree, error) {
	pool, ok := p.pools[langID]
	if !ok {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("grammar not loaded: %s", langID))
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(langID).Observe(time.Since(start).Seconds())
	}()

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse([]byte(content), nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("%s parse returned no tree", langID))
	}
	defer tree.Close()

	root, firstErr := convertTree(tree.RootNode())
	return &Tree{
		Language:   langID,
		Root:       root,
		FirstError: firstErr,
	}, nil
}

// convertTree copies the tree-sitter tree into Nodes using a cursor, which
// is the only way to recover field names for every child.
func convertTree(root *sitter.Node) (*Node, *Node) {
	if root == nil {
		return nil, nil
	}
	cursor := root.Walk()
	defer cursor.Close()

	var firstErr *Node
	var build func() *Node
	build = func() *Node {
		sn := cursor.Node()
		pos := sn.StartPosition()
		n := &Node{
			Kind:       sn.Kind(),
			Field:      cursor.FieldName(),
			Named:      sn.IsNamed(),
			Start:      int(sn.StartByte()),
			End:        int(sn.EndByte()),
			StartPoint: Point{Row: int(pos.Row), Column: int(pos.Column)},
		}
		if firstErr == nil && (sn.IsError() || sn.IsMissing()) {
			firstErr = n
		}
		if cursor.GotoFirstChild() {
			for {
				n.Children = append(n.Children, build())
				if !cursor.GotoNextSibling() {
					break
				}
			}
			cursor.GotoParent()
		}
		return n
	}
	return build(), firstErr
}
