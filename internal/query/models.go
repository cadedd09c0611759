package query

import (
	"sort"
	"strconv"
	"strings"

	"vuescope/internal/core/app"
)

// Task names, as used on the command line and in metrics.
const (
	TaskFind            = "find"
	TaskClickNative     = "click-native"
	TaskNonPropBindings = "non-prop-bindings"
	TaskMissingEmits    = "missing-emits"
	TaskRouterLinkAttrs = "router-link-attrs"
	TaskTemplateVFor    = "template-v-for"
	TaskTeleportTargets = "teleport-targets"
	TaskComponentGraph  = "graph"
)

// Finding is one reported location.
type Finding struct {
	// Location is "path:line:col" of the finding, or the bare path.
	Location  string
	Path      string
	Component string
	Attribute string
	Value     string
	Message   string
}

// Position splits Location into its path and one-based line and column.
// Line and column are zero when Location is a bare path.
func (f Finding) Position() (string, int, int) {
	rest, col, ok := cutNumber(f.Location)
	if !ok {
		return f.Location, 0, 0
	}
	path, line, ok := cutNumber(rest)
	if !ok {
		return f.Location, 0, 0
	}
	return path, line, col
}

func cutNumber(s string) (string, int, bool) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return s, 0, false
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n <= 0 {
		return s, 0, false
	}
	return s[:i], n, true
}

// Result is the outcome of one task over the project.
type Result struct {
	Task     string
	Findings []Finding
	// Fixed counts edits written when the task ran with fixes enabled.
	Fixed int
	// FixFailures holds paths whose edits were rejected.
	FixFailures map[string]error
	// Previews holds a unified diff per path when fixes ran as a dry run.
	Previews map[string]string
	Report   *app.BatchReport
}

func (r *Result) sort() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.Attribute < b.Attribute
	})
}

// FindRequest selects components receiving an attribute.
type FindRequest struct {
	// Tag is a component name in any authoring style; empty matches all.
	Tag string
	// Key is the attribute key; empty matches any attribute.
	Key string
	// Value, when set, must equal the attribute value.
	Value *string
}

// RemovedRouterLinkAttrs are <router-link> props dropped by Vue Router 4.
var RemovedRouterLinkAttrs = []string{"append", "event", "tag", "exact"}

// IgnoredBindings are attributes every element accepts without a prop.
var IgnoredBindings = []string{"class", "style", "id", "key", "ref", "slot", "is"}
