package analysis

import (
	"fmt"

	"github.com/KaramelBytes/agentops-cli/internal/report"
)

// SuggestCharts proposes chart specs from column kinds: a histogram of the
// first numeric column and a scatter of the first two, or, when nothing is
// numeric, a bar chart of the first non-numeric column's categories.
func SuggestCharts(ds *Dataset) []report.ChartSpec {
	ds = orEmpty(ds)
	var charts []report.ChartSpec
	numeric := ds.NumericColumns()
	if len(numeric) >= 1 {
		charts = append(charts, report.ChartSpec{
			Title: fmt.Sprintf("Distribution of %s", numeric[0]),
			Type:  report.ChartHistogram,
			Cols:  []string{numeric[0]},
		})
	}
	if len(numeric) >= 2 {
		charts = append(charts, report.ChartSpec{
			Title: fmt.Sprintf("%s vs %s", numeric[0], numeric[1]),
			Type:  report.ChartScatter,
			Cols:  []string{numeric[0], numeric[1]},
		})
	}
	if len(charts) > 0 {
		return charts
	}
	for _, c := range ds.cols {
		if c.Kind == KindNumeric {
			continue
		}
		return []report.ChartSpec{{
			Title: fmt.Sprintf("Top %s categories", c.Name),
			Type:  report.ChartBar,
			Cols:  []string{c.Name},
		}}
	}
	return nil
}
