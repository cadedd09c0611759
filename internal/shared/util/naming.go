package util

import "strings"

// ToCamelCase turns a kebab-case attribute name into camelCase: every hyphen
// is dropped and the character after it upper-cased. A trailing hyphen is
// dropped. Names without hyphens come back unchanged.
func ToCamelCase(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for _, r := range s {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeComponentName is the key used to compare component names across
// authoring styles: "MyComp", "my-comp" and "mycomp" all map to "mycomp".
func NormalizeComponentName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "")
}
