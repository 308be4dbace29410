package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindDatetime    Kind = "datetime"
	KindCategorical Kind = "categorical"
	KindText        Kind = "text"
	KindUnknown     Kind = "unknown"
)

// Column captures the inferred type and statistics of one dataset column.
type Column struct {
	Name    string
	Kind    Kind
	NonNull int
	Missing int
	Unique  int
	// Numeric stats; Std is the sample standard deviation and is only
	// meaningful when NonNull > 1.
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Categorical top values, count desc then value asc, at most 8.
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// Dataset is an immutable in-memory table. Every row has exactly one cell per
// header column; blank cells and the usual NA spellings count as missing.
type Dataset struct {
	name   string
	header []string
	rows   [][]string
	cols   []Column
	// nums[j][i] is the parsed value of row i in numeric column j, NaN when
	// missing. nil for non-numeric columns.
	nums [][]float64
}

// naValues mirrors the spellings dataframe readers treat as missing by default.
var naValues = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true, "N/A": true,
	"NA": true, "NULL": true, "NaN": true, "None": true, "n/a": true, "nan": true, "null": true,
}

func isMissing(cell string) bool { return naValues[strings.TrimSpace(cell)] }

// NewDataset builds a Dataset from a header row and data rows. Short rows are
// padded with missing cells and long rows are truncated to the header width.
// Blank header names become "Unnamed: <i>" and repeated names get a ".<n>" suffix.
func NewDataset(name string, header []string, rows [][]string) *Dataset {
	ds := &Dataset{name: name, header: normalizeHeader(header)}
	ncol := len(ds.header)
	ds.rows = make([][]string, 0, len(rows))
	for _, rec := range rows {
		row := make([]string, ncol)
		for j := 0; j < ncol && j < len(rec); j++ {
			row[j] = strings.TrimSpace(rec[j])
		}
		ds.rows = append(ds.rows, row)
	}
	ds.infer()
	return ds
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	dupes := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			dupes[h]++
			name = fmt.Sprintf("%s.%d", h, dupes[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func (d *Dataset) infer() {
	ncol := len(d.header)
	d.cols = make([]Column, ncol)
	d.nums = make([][]float64, ncol)
	for j := 0; j < ncol; j++ {
		c := Column{Name: d.header[j], Min: math.Inf(1), Max: math.Inf(-1)}
		vals := make([]float64, len(d.rows))
		cats := make(map[string]int)
		var numCnt, dtCnt int
		// Welford
		var n int
		var mean, m2 float64
		for i, row := range d.rows {
			v := row[j]
			if isMissing(v) {
				c.Missing++
				vals[i] = math.NaN()
				continue
			}
			c.NonNull++
			if len(v) <= 64 {
				cats[v]++
			}
			x, ok := parseNumeric(v)
			if !ok {
				vals[i] = math.NaN()
				if _, ok := parseTimeMaybe(v); ok {
					dtCnt++
				}
				continue
			}
			vals[i] = x
			numCnt++
			n++
			if x < c.Min {
				c.Min = x
			}
			if x > c.Max {
				c.Max = x
			}
			delta := x - mean
			mean += delta / float64(n)
			m2 += delta * (x - mean)
		}
		switch {
		case c.NonNull == 0:
			c.Kind = KindUnknown
		case numCnt == c.NonNull:
			c.Kind = KindNumeric
			c.Mean = mean
			if n > 1 {
				c.Std = math.Sqrt(m2 / float64(n-1))
			}
			d.nums[j] = vals
		case dtCnt == c.NonNull:
			c.Kind = KindDatetime
		case len(cats) > 0:
			c.Kind = KindCategorical
			c.Unique = len(cats)
			c.TopValues = topValues(cats, 8)
		default:
			c.Kind = KindText
		}
		if c.Kind != KindNumeric {
			c.Min, c.Max = 0, 0
		}
		d.cols[j] = c
	}
}

func topValues(cats map[string]int, limit int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

// Name is the source filename, if any.
func (d *Dataset) Name() string { return d.name }

// Len returns the number of data rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Width returns the number of columns.
func (d *Dataset) Width() int { return len(d.header) }

// Header returns a copy of the normalized column names.
func (d *Dataset) Header() []string { return append([]string(nil), d.header...) }

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []string { return append([]string(nil), d.rows[i]...) }

// Columns returns a copy of the per-column summaries in header order.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.cols))
	for i, c := range d.cols {
		c.TopValues = append([]CategoryCount(nil), c.TopValues...)
		out[i] = c
	}
	return out
}

// NumericColumns returns the names of numeric columns in header order.
func (d *Dataset) NumericColumns() []string {
	var out []string
	for _, j := range d.numericIndexes() {
		out = append(out, d.header[j])
	}
	return out
}

func (d *Dataset) numericIndexes() []int {
	var out []int
	for j, c := range d.cols {
		if c.Kind == KindNumeric {
			out = append(out, j)
		}
	}
	return out
}

// values returns the non-missing values of numeric column j in row order.
func (d *Dataset) values(j int) []float64 {
	var out []float64
	for _, x := range d.nums[j] {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// cellKey is the comparable form of a cell used for duplicate detection:
// numeric cells compare by value, missing cells compare equal to each other.
func (d *Dataset) cellKey(i, j int) string {
	if nums := d.nums[j]; nums != nil {
		if math.IsNaN(nums[i]) {
			return "\x00"
		}
		return strconv.FormatFloat(nums[i], 'g', -1, 64)
	}
	if isMissing(d.rows[i][j]) {
		return "\x00"
	}
	return d.rows[i][j]
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumeric accepts plain and scientific notation, a trailing percent sign,
// and thousands separators. When both ',' and '.' appear the later one is the
// decimal separator. A lone ',' is a decimal comma unless the value is
// grouped in threes ("1,200", "12,500,000"), which reads as thousands.
// Non-finite results are rejected.
func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos >= 0 && cpos > dpos && !commaThousands.MatchString(raw) {
		dec = ','
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var commaThousands = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+$`)

// quantile interpolates linearly between the closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
