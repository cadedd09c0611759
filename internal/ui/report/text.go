package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"vuescope/internal/query"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	findingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// Text writes a human-readable report of res. name maps absolute paths
// and locations to their display form.
func Text(w io.Writer, res *query.Result, name func(string) string) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(res.Task))
	b.WriteString("\n")

	if len(res.Findings) == 0 {
		b.WriteString(successStyle.Render("no findings"))
		b.WriteString("\n")
	}
	for _, f := range res.Findings {
		b.WriteString(findingStyle.Render(name(f.Location)))
		b.WriteString("  ")
		b.WriteString(describe(res.Task, f, name))
		b.WriteString("\n")
	}

	if res.Fixed > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("fixed %d edit(s)", res.Fixed)))
		b.WriteString("\n")
	}
	for path, err := range res.FixFailures {
		b.WriteString(failureStyle.Render("fix failed: " + name(path)))
		b.WriteString(fmt.Sprintf(" %v\n", err))
	}
	if r := res.Report; r != nil {
		for _, path := range r.FailedPaths() {
			b.WriteString(failureStyle.Render("skipped: " + name(path)))
			b.WriteString(fmt.Sprintf(" %v\n", r.Failed[path]))
		}
		b.WriteString(statusStyle.Render(fmt.Sprintf("%d file(s), %d finding(s), %s, run %s",
			r.Processed, len(res.Findings), r.Duration.Round(time.Millisecond), r.RunID)))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func describe(task string, f query.Finding, name func(string) string) string {
	switch task {
	case query.TaskComponentGraph:
		return fmt.Sprintf("<%s> -> %s", f.Component, name(f.Value))
	case query.TaskNonPropBindings:
		return fmt.Sprintf("<%s> %s (defined in %s)", f.Component, f.Attribute, name(f.Path))
	case query.TaskMissingEmits, query.TaskTeleportTargets:
		if f.Message != "" {
			return f.Message
		}
		return f.Value
	}
	if f.Value != "" {
		return fmt.Sprintf("<%s> %s=%q", f.Component, f.Attribute, f.Value)
	}
	return fmt.Sprintf("<%s> %s", f.Component, f.Attribute)
}
