package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/agentops-cli/internal/analysis"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".xlsx")
}

// Load reads the first sheet of an Office Open XML workbook. The first row
// is the header.
func (xlsxLoader) Load(name string, content []byte) (*analysis.Dataset, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := &xlsxWorkbook{files: map[string]*zip.File{}}
	for _, f := range zr.File {
		wb.files[f.Name] = f
	}
	target, err := wb.firstSheet()
	if err != nil {
		return nil, err
	}
	shared, err := wb.sharedStrings()
	if err != nil {
		return nil, err
	}
	var sheet xlsxSheet
	if err := wb.decode(target, &sheet); err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 || len(sheet.Rows[0].Cells) == 0 {
		return nil, errors.New("no columns to parse from file")
	}
	rows := make([][]string, len(sheet.Rows))
	for i, r := range sheet.Rows {
		rows[i] = r.values(shared)
	}
	return analysis.NewDataset(filepath.Base(name), rows[0], rows[1:]), nil
}

type xlsxWorkbook struct {
	files map[string]*zip.File
}

// decode unmarshals one zip entry. A missing optional part leaves v empty
// and reports errPartMissing.
func (wb *xlsxWorkbook) decode(name string, v any) error {
	f, ok := wb.files[name]
	if !ok {
		return fmt.Errorf("open xlsx: %w: %s", errPartMissing, name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open xlsx %s: %w", name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read xlsx %s: %w", name, err)
	}
	if err := xml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse xlsx %s: %w", name, err)
	}
	return nil
}

var errPartMissing = errors.New("part not found")

// firstSheet resolves the zip entry of the first sheet listed in the
// workbook, falling back to the conventional sheet1 location.
func (wb *xlsxWorkbook) firstSheet() (string, error) {
	const fallback = "xl/worksheets/sheet1.xml"
	var book struct {
		Sheets []struct {
			RID string `xml:"id,attr"`
		} `xml:"sheets>sheet"`
	}
	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := wb.decode("xl/workbook.xml", &book); err != nil || len(book.Sheets) == 0 {
		return fallback, nil
	}
	if err := wb.decode("xl/_rels/workbook.xml.rels", &rels); err != nil {
		return fallback, nil
	}
	for _, r := range rels.Items {
		if r.ID == book.Sheets[0].RID && r.Target != "" {
			return normalizeRelPath(r.Target), nil
		}
	}
	return fallback, nil
}

type xlsxText struct {
	T    string `xml:"t"`
	Runs []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (x xlsxText) String() string {
	if len(x.Runs) == 0 {
		return x.T
	}
	var b strings.Builder
	for _, r := range x.Runs {
		b.WriteString(r.T)
	}
	return b.String()
}

// sharedStrings returns the string table. Workbooks without one are valid.
func (wb *xlsxWorkbook) sharedStrings() ([]string, error) {
	var sst struct {
		Items []xlsxText `xml:"si"`
	}
	if err := wb.decode("xl/sharedStrings.xml", &sst); err != nil {
		if errors.Is(err, errPartMissing) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]string, len(sst.Items))
	for i, it := range sst.Items {
		out[i] = it.String()
	}
	return out, nil
}

type xlsxSheet struct {
	Rows []xlsxRow `xml:"sheetData>row"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	Ref    string   `xml:"r,attr"`
	Type   string   `xml:"t,attr"`
	Value  string   `xml:"v"`
	Inline xlsxText `xml:"is"`
}

// values lays cells out by their A1 reference so sparse rows keep their
// column positions. Cells without a reference follow the previous one.
func (r xlsxRow) values(shared []string) []string {
	var out []string
	for _, c := range r.Cells {
		col := len(out)
		if c.Ref != "" {
			col = colIndexFromRef(c.Ref)
		}
		if col < 0 {
			continue
		}
		for len(out) <= col {
			out = append(out, "")
		}
		out[col] = c.text(shared)
	}
	return out
}

func (c xlsxCell) text(shared []string) string {
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "b":
		if strings.TrimSpace(c.Value) == "1" {
			return "TRUE"
		}
		return "FALSE"
	case "inlineStr":
		return c.Inline.String()
	}
	return c.Value
}

// colIndexFromRef maps "C12" to 2 (0-based).
func colIndexFromRef(ref string) int {
	idx := 0
	for _, ch := range strings.ToUpper(ref) {
		if ch < 'A' || ch > 'Z' {
			break
		}
		idx = idx*26 + int(ch-'A'+1)
	}
	return idx - 1
}

// normalizeRelPath converts a relationship target to a zip entry name.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
