package util

import "testing"

func TestToCamelCase(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expected string
	}{
		{"foo-bar", "fooBar"},
		{"foo-bar-baz", "fooBarBaz"},
		{"fooBar", "fooBar"},
		{"class", "class"},
		{"", ""},
		{"trailing-", "trailing"},
		{"aria-label", "ariaLabel"},
	}

	for _, tc := range cases {
		if got := ToCamelCase(tc.input); got != tc.expected {
			t.Errorf("ToCamelCase(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestToCamelCase_IsPure(t *testing.T) {
	t.Parallel()

	first := ToCamelCase("foo-bar")
	second := ToCamelCase("foo-bar")
	if first != second || first != "fooBar" {
		t.Fatalf("expected stable fooBar, got %q then %q", first, second)
	}
}

func TestNormalizeComponentName(t *testing.T) {
	t.Parallel()

	equivalent := []string{"MyComp", "my-comp", "mycomp", "MY-COMP", "My-Comp"}
	for _, name := range equivalent {
		if got := NormalizeComponentName(name); got != "mycomp" {
			t.Errorf("NormalizeComponentName(%q) = %q, expected mycomp", name, got)
		}
	}
	if NormalizeComponentName("router-link") != NormalizeComponentName("RouterLink") {
		t.Error("expected router-link and RouterLink to normalize identically")
	}
}
