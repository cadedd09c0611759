// Package source loads component files and enumerates the project tree.
package source

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"vuescope/internal/core/errors"
)

// File is one loaded source file. It is immutable once built.
type File struct {
	Path    string
	Content string

	linesOnce  sync.Once
	lineStarts []int
}

// NewFile wraps already loaded content.
func NewFile(path, content string) *File {
	return &File{Path: path, Content: content}
}

// Loc renders a zero-based row/column as "path:line:col" with one-based
// numbers, the format editors jump to.
func (f *File) Loc(row, column int) string {
	return fmt.Sprintf("%s:%d:%d", f.Path, row+1, column+1)
}

// Locate renders a byte offset of the file as "path:line:col".
func (f *File) Locate(offset int) string {
	row, col := f.Position(offset)
	return f.Loc(row, col)
}

// Position converts a byte offset into a zero-based row and column.
func (f *File) Position(offset int) (int, int) {
	f.linesOnce.Do(func() { f.lineStarts = lineStarts(f.Content) })
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Content) {
		offset = len(f.Content)
	}
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, offset - f.lineStarts[lo]
}

func lineStarts(content string) []int {
	starts := make([]int, 1, strings.Count(content, "\n")+1)
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Reader reads file content. Tests substitute in-memory readers.
type Reader interface {
	ReadFile(path string) (string, error)
}

// OSReader reads from the local file system.
type OSReader struct{}

func (OSReader) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Load reads path through r into a File.
func Load(r Reader, path string) (*File, error) {
	content, err := r.ReadFile(path)
	if err != nil {
		return nil, errors.IO(err, path, "read")
	}
	return NewFile(path, content), nil
}
