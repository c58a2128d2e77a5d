package reporting

import (
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"matrixctl/internal/aggregate"
)

// RenderCounts writes the per-environment execution-count diagnostic as a
// table. Environments executed more than once point at overlapping selection
// patterns; environments executed zero times are already part of the diff
// and are not repeated here.
func RenderCounts(out io.Writer, report *aggregate.Report) {
	names := make([]string, 0, len(report.Counts))
	for name := range report.Counts {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Environment", "Executions"})
	for _, name := range names {
		t.AppendRow(table.Row{name, report.Counts[name]})
	}
	t.Render()
}
