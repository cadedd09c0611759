// Package sfc splits a single-file component into its template, script and
// style regions. Offsets are byte offsets into the owning file.
package sfc

import (
	"path/filepath"
	"regexp"
	"strings"

	"vuescope/internal/core/errors"
	"vuescope/internal/data/source"
)

const (
	templateOpen  = "<template>"
	templateClose = "</template>"
	scriptOpen    = "<script>"
	scriptOpenTag = "<script "
	scriptClose   = "</script>"
	styleOpenTag  = "<style"
	styleClose    = "</style>"
)

// Region is one delimited block of a component file.
type Region struct {
	// Path is the file Content was read from. It differs from the owning
	// file only for an external script.
	Path    string
	Content string
	// Offset is the index in Path's content where Content starts.
	Offset int
	// Lang is the lang attribute, or the external file's extension.
	Lang string
	// Attrs holds the opening tag attributes; valueless ones map to "".
	Attrs    map[string]string
	External bool
}

// Setup reports whether the region is a <script setup> block.
func (r *Region) Setup() bool {
	if r == nil {
		return false
	}
	_, ok := r.Attrs["setup"]
	return ok
}

// End is the offset just past the region content.
func (r *Region) End() int {
	return r.Offset + len(r.Content)
}

// Regions holds the blocks found in one file; absent blocks are nil.
type Regions struct {
	Template *Region
	Script   *Region
	Style    *Region
}

// Split locates the regions of the component at path. An external script is
// read through reader; a failed read is the only error Split returns.
func Split(path, content string, reader source.Reader) (*Regions, error) {
	if reader == nil {
		reader = source.OSReader{}
	}
	script, err := findScript(path, content, reader)
	if err != nil {
		return nil, err
	}
	return &Regions{
		Template: findTemplate(path, content),
		Script:   script,
		Style:    findStyle(path, content),
	}, nil
}

func findTemplate(path, content string) *Region {
	idx := strings.Index(content, templateOpen)
	if idx < 0 {
		return nil
	}
	start := idx + len(templateOpen)
	return &Region{
		Path:    path,
		Content: content[start:closeIndex(content, start, templateClose)],
		Offset:  start,
	}
}

func findScript(path, content string, reader source.Reader) (*Region, error) {
	if idx := strings.Index(content, scriptOpen); idx >= 0 {
		start := idx + len(scriptOpen)
		return &Region{
			Path:    path,
			Content: content[start:closeIndex(content, start, scriptClose)],
			Offset:  start,
		}, nil
	}

	idx := strings.Index(content, scriptOpenTag)
	if idx < 0 {
		return nil, nil
	}
	tagEnd := strings.IndexByte(content[idx:], '>')
	if tagEnd < 0 {
		return nil, nil
	}
	tagEnd += idx
	attrs := parseAttrs(content[idx+len(scriptOpenTag)-1 : tagEnd])
	lang := attrs["lang"]

	if src, ok := attrs["src"]; ok && src != "" {
		extPath := src
		if !filepath.IsAbs(extPath) {
			extPath = filepath.Join(filepath.Dir(path), src)
		}
		extContent, err := reader.ReadFile(extPath)
		if err != nil {
			return nil, errors.IO(err, extPath, "read external script")
		}
		if lang == "" {
			lang = strings.TrimPrefix(filepath.Ext(extPath), ".")
		}
		return &Region{
			Path:     extPath,
			Content:  extContent,
			Offset:   0,
			Lang:     lang,
			Attrs:    attrs,
			External: true,
		}, nil
	}

	if content[tagEnd-1] == '/' {
		return nil, nil
	}
	start := tagEnd + 1
	return &Region{
		Path:    path,
		Content: content[start:closeIndex(content, start, scriptClose)],
		Offset:  start,
		Lang:    lang,
		Attrs:   attrs,
	}, nil
}

func findStyle(path, content string) *Region {
	from := 0
	for {
		idx := strings.Index(content[from:], styleOpenTag)
		if idx < 0 {
			return nil
		}
		idx += from
		next := idx + len(styleOpenTag)
		if next < len(content) && (content[next] == '>' || isSpace(content[next])) {
			tagEnd := strings.IndexByte(content[next:], '>')
			if tagEnd < 0 {
				return nil
			}
			tagEnd += next
			attrs := parseAttrs(content[next:tagEnd])
			start := tagEnd + 1
			return &Region{
				Path:    path,
				Content: content[start:closeIndex(content, start, styleClose)],
				Offset:  start,
				Lang:    attrs["lang"],
				Attrs:   attrs,
			}
		}
		from = next
	}
}

// closeIndex finds the last closing marker at or after start; without one
// the region runs to the end of the file.
func closeIndex(content string, start int, marker string) int {
	end := strings.LastIndex(content, marker)
	if end < start {
		return len(content)
	}
	return end
}

var attrPattern = regexp.MustCompile(`([^\s"'<>/=]+)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `]+)))?`)

func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(raw, -1) {
		name := strings.ToLower(m[1])
		attrs[name] = m[2] + m[3] + m[4]
	}
	return attrs
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
