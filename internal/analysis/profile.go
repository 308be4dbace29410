package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// PreviewRows is how many leading rows a Profile carries.
const PreviewRows = 8

// Profile is the structural summary of a dataset.
type Profile struct {
	Rows           int                `json:"rows" yaml:"rows"`
	Cols           int                `json:"cols" yaml:"cols"`
	ColumnNames    []string           `json:"column_names" yaml:"column_names"`
	NumericColumns []string           `json:"numeric_cols" yaml:"numeric_cols"`
	MissingRatio   map[string]float64 `json:"missing_ratio" yaml:"missing_ratio"`
	Preview        []map[string]any   `json:"preview" yaml:"preview"`
}

// ProfileDataset computes row/column counts, numeric column names, missing
// ratios (only columns with any missing cell, rounded to 3 decimals) and the
// first PreviewRows rows keyed by column name. Numeric cells appear as
// float64 in the preview and missing cells as nil.
func ProfileDataset(ds *Dataset) Profile {
	ds = orEmpty(ds)
	p := Profile{
		Rows:           ds.Len(),
		Cols:           ds.Width(),
		ColumnNames:    ds.Header(),
		NumericColumns: ds.NumericColumns(),
		MissingRatio:   map[string]float64{},
	}
	denom := float64(max(ds.Len(), 1))
	for _, c := range ds.cols {
		if c.Missing == 0 {
			continue
		}
		p.MissingRatio[c.Name] = math.Round(float64(c.Missing)/denom*1000) / 1000
	}
	n := min(ds.Len(), PreviewRows)
	p.Preview = make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		rec := make(map[string]any, ds.Width())
		for j, name := range ds.header {
			switch {
			case ds.nums[j] != nil && !math.IsNaN(ds.nums[j][i]):
				rec[name] = ds.nums[j][i]
			case isMissing(ds.rows[i][j]):
				rec[name] = nil
			default:
				rec[name] = ds.rows[i][j]
			}
		}
		p.Preview = append(p.Preview, rec)
	}
	return p
}

// BasicFindings returns, in order: a size sentence; either the highest-mean
// and most volatile numeric columns or a note that none exist; and the
// duplicate-row count. Ties keep header order.
func BasicFindings(ds *Dataset) []string {
	ds = orEmpty(ds)
	findings := []string{fmt.Sprintf("Dataset has %d rows and %d columns.", ds.Len(), ds.Width())}
	idx := ds.numericIndexes()
	if len(idx) > 0 {
		byMean := append([]int(nil), idx...)
		sort.SliceStable(byMean, func(a, b int) bool {
			return ds.cols[byMean[a]].Mean > ds.cols[byMean[b]].Mean
		})
		top := ds.cols[byMean[0]]
		findings = append(findings, fmt.Sprintf("Highest average metric is '%s' at %.2f.", top.Name, top.Mean))

		// Columns with a single value have no sample deviation and sort last.
		byStd := append([]int(nil), idx...)
		sort.SliceStable(byStd, func(a, b int) bool {
			ca, cb := ds.cols[byStd[a]], ds.cols[byStd[b]]
			okA, okB := ca.NonNull > 1, cb.NonNull > 1
			if okA != okB {
				return okA
			}
			return ca.Std > cb.Std
		})
		findings = append(findings, fmt.Sprintf("Most volatile metric appears to be '%s'.", ds.cols[byStd[0]].Name))
	} else {
		findings = append(findings, "No numeric columns found; recommendations are based on categorical patterns.")
	}
	findings = append(findings, fmt.Sprintf("Detected %d duplicate rows.", countDuplicates(ds)))
	return findings
}

// countDuplicates counts rows identical to some earlier row.
func countDuplicates(ds *Dataset) int {
	seen := make(map[string]struct{}, ds.Len())
	dupes := 0
	keys := make([]string, ds.Width())
	for i := range ds.rows {
		for j := range keys {
			keys[j] = ds.cellKey(i, j)
		}
		k := strings.Join(keys, "\x1f")
		if _, ok := seen[k]; ok {
			dupes++
			continue
		}
		seen[k] = struct{}{}
	}
	return dupes
}

const (
	anomalyColumns = 4
	iqrFence       = 1.5
)

// NoAnomalies is reported when no scanned column has IQR outliers.
const NoAnomalies = "No severe anomalies detected with the quick IQR scan."

// DetectAnomalies applies the 1.5·IQR fence to the first four numeric
// columns. Columns with zero IQR are skipped.
func DetectAnomalies(ds *Dataset) []string {
	ds = orEmpty(ds)
	var out []string
	idx := ds.numericIndexes()
	if len(idx) > anomalyColumns {
		idx = idx[:anomalyColumns]
	}
	for _, j := range idx {
		vals := ds.values(j)
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		q1 := quantile(sorted, 0.25)
		q3 := quantile(sorted, 0.75)
		iqr := q3 - q1
		if iqr == 0 {
			continue
		}
		lo, hi := q1-iqrFence*iqr, q3+iqrFence*iqr
		count := 0
		for _, v := range vals {
			if v < lo || v > hi {
				count++
			}
		}
		if count > 0 {
			out = append(out, fmt.Sprintf("%s: %d potential outliers by IQR rule.", ds.header[j], count))
		}
	}
	if len(out) == 0 {
		return []string{NoAnomalies}
	}
	return out
}

func orEmpty(ds *Dataset) *Dataset {
	if ds == nil {
		return NewDataset("", nil, nil)
	}
	return ds
}
