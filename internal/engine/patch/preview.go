package patch

import (
	"context"
	"os"
	"strings"

	"vuescope/internal/core/errors"

	"github.com/sourcegraph/go-diff/diff"
)

const contextLines = 3

// Preview renders the edits as a unified diff of path without writing.
// An empty string means the edits change nothing.
func (p *Patcher) Preview(ctx context.Context, path string, edits []Edit) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.IO(err, path, "read")
	}
	fd, err := FileDiff(path, string(data), edits)
	if err != nil || fd == nil {
		return "", err
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "render diff")
	}
	return string(out), nil
}

// FileDiff builds the diff of applying edits to content. Edits whose lines
// lie within three lines of each other share a hunk. It returns nil when the
// edits leave content unchanged.
func FileDiff(path, content string, edits []Edit) (*diff.FileDiff, error) {
	if err := Validate(path, len(content), edits); err != nil {
		return nil, err
	}
	lines := lineOffsets(content)

	type group struct {
		first, last int
		edits       []Edit
	}
	var groups []*group
	for _, e := range sortAscending(edits) {
		first := lineAt(lines, e.Start)
		last := first
		if e.End > e.Start {
			last = lineAt(lines, e.End-1)
		}
		lo := max(0, first-contextLines)
		hi := min(len(lines)-1, last+contextLines)
		if n := len(groups); n > 0 && lo <= groups[n-1].last+1 {
			g := groups[n-1]
			g.last = max(g.last, hi)
			g.edits = append(g.edits, e.Edit)
			continue
		}
		groups = append(groups, &group{first: lo, last: hi, edits: []Edit{e.Edit}})
	}

	fd := &diff.FileDiff{OrigName: "a/" + path, NewName: "b/" + path}
	shift := 0
	for _, g := range groups {
		segStart := lines[g.first]
		segEnd := len(content)
		if g.last+1 < len(lines) {
			segEnd = lines[g.last+1]
		}
		rel := make([]Edit, len(g.edits))
		for i, e := range g.edits {
			rel[i] = Edit{Start: e.Start - segStart, End: e.End - segStart, Text: e.Text}
		}
		before := content[segStart:segEnd]
		after, err := Splice(path, before, rel)
		if err != nil {
			return nil, err
		}
		if before == after {
			continue
		}
		hunk := buildHunk(splitLines(before), splitLines(after), g.first+1, g.first+1+shift)
		shift += int(hunk.NewLines) - int(hunk.OrigLines)
		fd.Hunks = append(fd.Hunks, hunk)
	}
	if len(fd.Hunks) == 0 {
		return nil, nil
	}
	return fd, nil
}

// buildHunk emits the common leading and trailing lines as context and the
// differing middle as a removal followed by an addition.
func buildHunk(before, after []string, origStart, newStart int) *diff.Hunk {
	prefix := 0
	for prefix < len(before) && prefix < len(after) && before[prefix] == after[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(before)-prefix && suffix < len(after)-prefix &&
		before[len(before)-1-suffix] == after[len(after)-1-suffix] {
		suffix++
	}

	var body strings.Builder
	write := func(mark byte, line string) {
		body.WriteByte(mark)
		body.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			body.WriteByte('\n')
		}
	}
	for _, l := range before[:prefix] {
		write(' ', l)
	}
	for _, l := range before[prefix : len(before)-suffix] {
		write('-', l)
	}
	for _, l := range after[prefix : len(after)-suffix] {
		write('+', l)
	}
	for _, l := range before[len(before)-suffix:] {
		write(' ', l)
	}

	return &diff.Hunk{
		OrigStartLine: int32(origStart),
		OrigLines:     int32(len(before)),
		NewStartLine:  int32(newStart),
		NewLines:      int32(len(after)),
		Body:          []byte(body.String()),
	}
}

// lineOffsets returns the start offset of every line.
func lineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' && i+1 < len(content) {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func lineAt(offsets []int, pos int) int {
	lo, hi := 0, len(offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if offsets[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// splitLines keeps line terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.SplitAfter(strings.TrimSuffix(s, "\n"), "\n")
}
