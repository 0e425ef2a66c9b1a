package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rafianfasaa/stunting/pkg/growth"
	"github.com/xuri/excelize/v2"
)

// ageColumns are the accepted names of the age key column, compared case-insensitively
// after trimming.
var ageColumns = []string{"month", "months", "age", "age_months", "bulan", "umur (bulan)"}

// ReadFile reads LMS rows from a .xlsx workbook (first sheet) or a .csv/.tsv file.
func ReadFile(path string) ([]growth.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	case ".csv":
		return readDelimited(path, ',')
	case ".tsv", ".txt":
		return readDelimited(path, '\t')
	}
	return nil, fmt.Errorf("unsupported reference file type: %s", path)
}

func readWorkbook(path string) ([]growth.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheets[0], path, err)
	}
	rows, err := ParseRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func readDelimited(path string, comma rune) ([]growth.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadDelimited(f, comma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadDelimited reads LMS rows from delimited text with a header line.
func ReadDelimited(r io.Reader, comma rune) ([]growth.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return ParseRecords(records)
}

// ParseRecords converts a header row plus data rows into LMS rows. Header names are
// trimmed; extra columns (SD bands, percentiles) are ignored and blank rows skipped.
func ParseRecords(records [][]string) ([]growth.Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}
	cols, err := locateColumns(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]growth.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		var vals [4]float64
		for j, c := range cols {
			if c >= len(rec) {
				return nil, fmt.Errorf("line %d: missing column %d", i+2, c+1)
			}
			v, err := parseNumber(rec[c])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+2, err)
			}
			vals[j] = v
		}
		rows = append(rows, growth.Row{Month: vals[0], L: vals[1], M: vals[2], S: vals[3]})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	return rows, nil
}

// locateColumns returns the positions of the age, L, M and S columns.
func locateColumns(header []string) ([4]int, error) {
	idx := [4]int{-1, -1, -1, -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case idx[0] < 0 && isAgeColumn(name):
			idx[0] = i
		case name == "l":
			idx[1] = i
		case name == "m":
			idx[2] = i
		case name == "s":
			idx[3] = i
		}
	}
	for j, want := range []string{"Month", "L", "M", "S"} {
		if idx[j] < 0 {
			return idx, fmt.Errorf("header has no %q column: %v", want, header)
		}
	}
	return idx, nil
}

func isAgeColumn(name string) bool {
	for _, c := range ageColumns {
		if name == c {
			return true
		}
	}
	return false
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
