// Package patch applies offset-addressed text edits to source files.
package patch

import (
	"fmt"
	"sort"
	"strings"

	"vuescope/internal/core/errors"
)

// Edit replaces the bytes [Start, End) of a file with Text. Start == End is
// an insertion.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Insert is an edit that only adds text at offset.
func Insert(offset int, text string) Edit {
	return Edit{Start: offset, End: offset, Text: text}
}

// Delete is an edit that removes [start, end).
func Delete(start, end int) Edit {
	return Edit{Start: start, End: end}
}

type indexed struct {
	Edit
	index int
}

// Validate checks that every edit lies inside content and that no two
// edits overlap. Insertions may share an offset with each other and with
// the start of a replacement.
func Validate(path string, size int, edits []Edit) error {
	for i, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > size {
			return conflict(path, fmt.Sprintf("edit %d [%d,%d) outside content of length %d", i, e.Start, e.End, size))
		}
	}
	sorted := sortAscending(edits)
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.End > cur.Start {
			return conflict(path, fmt.Sprintf("edits %d [%d,%d) and %d [%d,%d) overlap",
				prev.index, prev.Start, prev.End, cur.index, cur.Start, cur.End))
		}
	}
	return nil
}

func conflict(path, msg string) error {
	return errors.AddContext(errors.New(errors.CodeConflict, msg), errors.CtxPath, path)
}

func sortAscending(edits []Edit) []indexed {
	out := make([]indexed, len(edits))
	for i, e := range edits {
		out[i] = indexed{Edit: e, index: i}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

// Splice applies validated edits to content in one pass from the same
// baseline, by descending start. At a shared offset the replacement goes
// first, then insertions from the last one listed to the first, so inserted
// texts keep their listed order ahead of the replacement.
func Splice(path, content string, edits []Edit) (string, error) {
	if err := Validate(path, len(content), edits); err != nil {
		return "", err
	}
	ordered := sortAscending(edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Start != b.Start {
			return a.Start > b.Start
		}
		if (a.End > a.Start) != (b.End > b.Start) {
			return a.End > a.Start
		}
		return a.index > b.index
	})

	out := content
	for _, e := range ordered {
		out = out[:e.Start] + e.Text + out[e.End:]
	}
	return out, nil
}

// sizeDelta reports how many bytes the edits add (negative when they remove).
func sizeDelta(edits []Edit) int {
	n := 0
	for _, e := range edits {
		n += len(e.Text) - (e.End - e.Start)
	}
	return n
}

func describe(edits []Edit) string {
	parts := make([]string, 0, len(edits))
	for _, e := range edits {
		parts = append(parts, fmt.Sprintf("[%d,%d)", e.Start, e.End))
	}
	return strings.Join(parts, " ")
}
