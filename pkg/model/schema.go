package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rafianfasaa/stunting/pkg/growth"
)

// Column names of the training data set.
const (
	ColumnSex      = "Jenis Kelamin"
	ColumnHeight   = "Tinggi Badan (cm)"
	ColumnAge      = "Umur (bulan)"
	ColumnZScore   = "Z-Score HAZ"
	ColumnMethod   = "Cara Ukur"
	methodStanding = "STANDING"
)

// Record is a named feature row, the shape of one training-set row after dummy encoding.
type Record map[string]float64

// NewRecord encodes the assessment features the way the classifier was trained: sex as
// 1 (male) / 0 (female) and the method as a dummy with LYING DOWN as the dropped baseline.
func NewRecord(f growth.Features) Record {
	r := Record{
		ColumnSex:    0,
		ColumnHeight: f.Value,
		ColumnAge:    f.AgeMonths,
		ColumnZScore: f.ZScore,
	}
	if f.Sex == growth.Male {
		r[ColumnSex] = 1
	}
	if f.Method == growth.Standing {
		r[dummyColumn(ColumnMethod, methodStanding)] = 1
	}
	return r
}

func dummyColumn(column, value string) string {
	return column + "_" + value
}

// Schema is the ordered list of columns a classifier expects.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema returns a schema for the given column order. Names are trimmed and must be
// unique and non-empty.
func NewSchema(columns []string) (*Schema, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("schema requires at least one column")
	}
	s := &Schema{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, ok := s.index[c]; ok {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		s.columns[i] = c
		s.index[c] = i
	}
	return s, nil
}

// Columns returns a copy of the column order.
func (s *Schema) Columns() []string {
	cp := make([]string, len(s.columns))
	copy(cp, s.columns)
	return cp
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.columns) }

// Index returns the position of a column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Align projects r onto the schema: values are placed in schema order, columns the record
// lacks are zero and record fields the schema does not know are returned as dropped.
func (s *Schema) Align(r Record) (vec []float64, dropped []string) {
	vec = make([]float64, len(s.columns))
	for name, v := range r {
		i, ok := s.index[name]
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		vec[i] = v
	}
	sort.Strings(dropped)
	return vec, dropped
}
