package report

import (
	"fmt"
	"os"
	"strings"

	"vuescope/internal/core/errors"
	"vuescope/internal/shared/util"
)

// InjectDiagram replaces the block between the vuescope start and end
// markers of a markdown file with diagram, fenced as mermaid.
func InjectDiagram(path, marker, diagram string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.IO(err, path, "stat")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.IO(err, path, "read")
	}

	next, err := ReplaceBetweenMarkers(string(content), marker, "```mermaid\n"+strings.TrimRight(diagram, "\n")+"\n```")
	if err != nil {
		return errors.AddContext(err, errors.CtxPath, path)
	}
	if err := util.WriteFileAtomic(path, []byte(next), info.Mode().Perm()); err != nil {
		return errors.IO(err, path, "write")
	}
	return nil
}

// ReplaceBetweenMarkers swaps the text between
// "<!-- vuescope:marker:start -->" and "<!-- vuescope:marker:end -->".
// Both markers must appear exactly once and in order.
func ReplaceBetweenMarkers(content, marker, replacement string) (string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return "", errors.New(errors.CodeValidationError, "markdown marker must not be empty")
	}

	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	start := fmt.Sprintf("<!-- vuescope:%s:start -->", marker)
	end := fmt.Sprintf("<!-- vuescope:%s:end -->", marker)
	if strings.Count(content, start) != 1 || strings.Count(content, end) != 1 {
		return "", errors.New(errors.CodeValidationError, fmt.Sprintf("marker %q must appear exactly once for start and end", marker))
	}

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return "", errors.New(errors.CodeValidationError, fmt.Sprintf("end marker %q precedes its start", marker))
	}

	body := strings.ReplaceAll(strings.TrimRight(replacement, "\r\n"), "\n", newline)
	return content[:startIdx+len(start)] + newline + body + newline + content[endIdx:], nil
}
