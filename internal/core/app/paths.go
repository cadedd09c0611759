package app

import (
	"path/filepath"
	"strings"
)

func relativeTo(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func scriptExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
