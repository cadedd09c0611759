package report

import (
	"fmt"
	"strings"

	"vuescope/internal/query"
)

// TSV renders findings one per line with a header row. Tabs and newlines
// inside values are replaced by spaces.
func TSV(res *query.Result, name func(string) string) string {
	var buf strings.Builder
	buf.WriteString("Task\tLocation\tComponent\tAttribute\tValue\tMessage\n")
	for _, f := range res.Findings {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\n",
			res.Task,
			tsvField(name(f.Location)),
			tsvField(f.Component),
			tsvField(f.Attribute),
			tsvField(f.Value),
			tsvField(f.Message),
		))
	}
	return buf.String()
}

var tsvReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func tsvField(s string) string {
	return tsvReplacer.Replace(s)
}
