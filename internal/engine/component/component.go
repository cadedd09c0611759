// Package component resolves a component file into its parsed regions and
// keeps the run-scoped cache of resolved structures.
package component

import (
	"vuescope/internal/engine/parser"
)

// Region names used in errors and logs.
const (
	RegionTemplate = "template"
	RegionScript   = "script"
	RegionStyle    = "style"
)

// Part is one parsed region of a component. Node positions in Program are
// relative to Content; Offset maps them back into the file at Path.
type Part struct {
	Path    string
	Content string
	Program *parser.Tree
	Offset  int
	Lang    string
	// Setup marks a <script setup> block.
	Setup    bool
	External bool
}

// Abs converts a Content-relative byte offset into a file offset.
func (p *Part) Abs(rel int) int {
	return p.Offset + rel
}

// Text returns the Content slice a node covers.
func (p *Part) Text(n *parser.Node) string {
	return n.Text(p.Content)
}

// Root returns the program root, or nil when the region was not parsed.
func (p *Part) Root() *parser.Node {
	if p == nil || p.Program == nil {
		return nil
	}
	return p.Program.Root
}

// Struct is the resolved structure of one component file. Absent regions
// are nil.
type Struct struct {
	Path     string
	Template *Part
	Script   *Part
	Style    *Part
}
