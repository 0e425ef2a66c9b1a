package growth

import (
	"fmt"
	"math"
	"strings"
)

// LengthHeightBoundary is the age in months from which standing height tables apply.
const LengthHeightBoundary = 24

// Sex of the subject.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// Sexes lists the supported values in reference-set order.
var Sexes = []Sex{Male, Female}

// ParseSex accepts male/female, m/f and the 1/0 encoding used by the classifier.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "1", "boy", "laki-laki":
		return Male, nil
	case "female", "f", "0", "girl", "perempuan":
		return Female, nil
	}
	return "", inputErrorf("sex", "unknown value %q", s)
}

// Standard names the WHO measurement standard a table belongs to.
type Standard string

const (
	// Length is recumbent length, 0-24 months.
	Length Standard = "length"
	// Height is standing height, 24-60 months.
	Height Standard = "height"
)

// Standards lists the supported values in reference-set order.
var Standards = []Standard{Length, Height}

func ParseStandard(s string) (Standard, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "length", "panjang":
		return Length, nil
	case "height", "tinggi":
		return Height, nil
	}
	return "", inputErrorf("standard", "unknown value %q", s)
}

// StandardFor returns the standard used at the given age. 24.0 months uses Height.
func StandardFor(months float64) Standard {
	if months < LengthHeightBoundary {
		return Length
	}
	return Height
}

// Row is one age entry of a WHO LMS table.
type Row struct {
	Month float64 `json:"month" yaml:"month"`
	L     float64 `json:"l" yaml:"l"`
	M     float64 `json:"m" yaml:"m"`
	S     float64 `json:"s" yaml:"s"`
}

// Validate checks the row can be used by the LMS transform.
func (r Row) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"month", r.Month}, {"L", r.L}, {"M", r.M}, {"S", r.S}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &DomainError{Field: f.name, Value: f.v, Reason: "not a finite number"}
		}
	}
	if r.M <= 0 {
		return &DomainError{Field: "M", Value: r.M, Reason: "median must be positive"}
	}
	return nil
}

// Table is an immutable WHO reference table for one sex and standard.
type Table struct {
	Sex      Sex
	Standard Standard
	rows     []Row
}

// NewTable validates rows and returns a table owning a copy of them. Ages must be strictly
// increasing and every row must have a positive median.
func NewTable(sex Sex, std Standard, rows []Row) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s/%s reference table has no rows", sex, std)
	}
	cp := make([]Row, len(rows))
	for i, r := range rows {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s/%s row %d: %w", sex, std, i, err)
		}
		if i > 0 && r.Month <= rows[i-1].Month {
			return nil, fmt.Errorf("%s/%s row %d: month %g does not increase after %g",
				sex, std, i, r.Month, rows[i-1].Month)
		}
		cp[i] = r
	}
	return &Table{Sex: sex, Standard: std, rows: cp}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns a copy of the table rows.
func (t *Table) Rows() []Row {
	cp := make([]Row, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// Exact returns the row whose month equals months exactly.
func (t *Table) Exact(months float64) (Row, error) {
	for _, r := range t.rows {
		if r.Month == months {
			return r, nil
		}
	}
	return Row{}, &LookupError{Sex: t.Sex, Standard: t.Standard, Month: months}
}

// Nearest returns the row minimizing |month - months|. Ties resolve to the first row in
// table order.
func (t *Table) Nearest(months float64) Row {
	best := 0
	bestDist := math.Abs(t.rows[0].Month - months)
	for i := 1; i < len(t.rows); i++ {
		if d := math.Abs(t.rows[i].Month - months); d < bestDist {
			best, bestDist = i, d
		}
	}
	return t.rows[best]
}

// LookupPolicy selects how a reference row is matched to an age.
type LookupPolicy int

const (
	// LookupAuto uses LookupExact for direct ages and LookupNearest for date-based ages.
	LookupAuto LookupPolicy = iota
	LookupExact
	LookupNearest
)

func (p LookupPolicy) String() string {
	switch p {
	case LookupExact:
		return "exact"
	case LookupNearest:
		return "nearest"
	default:
		return "auto"
	}
}

func ParseLookupPolicy(s string) (LookupPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return LookupAuto, nil
	case "exact":
		return LookupExact, nil
	case "nearest":
		return LookupNearest, nil
	}
	return LookupAuto, fmt.Errorf("unknown lookup policy %q (want auto, exact or nearest)", s)
}

// resolve returns the concrete policy for an age mode.
func (p LookupPolicy) resolve(mode AgeMode) LookupPolicy {
	if p != LookupAuto {
		return p
	}
	if mode == AgeFromDates {
		return LookupNearest
	}
	return LookupExact
}

// Lookup finds the row for months using the given policy.
func (t *Table) Lookup(months float64, p LookupPolicy) (Row, error) {
	if p == LookupNearest {
		return t.Nearest(months), nil
	}
	return t.Exact(months)
}

type tableKey struct {
	sex Sex
	std Standard
}

// ReferenceSet holds the four WHO tables. It is read-only once built.
type ReferenceSet struct {
	tables map[tableKey]*Table
}

// NewReferenceSet builds a set from tables. Every (sex, standard) pair must be present once.
func NewReferenceSet(tables ...*Table) (*ReferenceSet, error) {
	rs := &ReferenceSet{tables: make(map[tableKey]*Table, len(tables))}
	for _, t := range tables {
		if t == nil {
			return nil, fmt.Errorf("nil reference table")
		}
		k := tableKey{t.Sex, t.Standard}
		if _, ok := rs.tables[k]; ok {
			return nil, fmt.Errorf("duplicate %s/%s reference table", t.Sex, t.Standard)
		}
		rs.tables[k] = t
	}
	for _, s := range Sexes {
		for _, std := range Standards {
			if _, ok := rs.tables[tableKey{s, std}]; !ok {
				return nil, fmt.Errorf("missing %s/%s reference table", s, std)
			}
		}
	}
	return rs, nil
}

// Table returns the table for sex and standard.
func (rs *ReferenceSet) Table(sex Sex, std Standard) (*Table, bool) {
	t, ok := rs.tables[tableKey{sex, std}]
	return t, ok
}

// Select returns the table applicable to sex at the given age.
func (rs *ReferenceSet) Select(sex Sex, months float64) (*Table, error) {
	std := StandardFor(months)
	t, ok := rs.Table(sex, std)
	if !ok {
		return nil, inputErrorf("sex", "no %s reference table for %q", std, sex)
	}
	return t, nil
}

// Tables returns all tables ordered by sex then standard.
func (rs *ReferenceSet) Tables() []*Table {
	list := make([]*Table, 0, len(rs.tables))
	for _, s := range Sexes {
		for _, std := range Standards {
			if t, ok := rs.tables[tableKey{s, std}]; ok {
				list = append(list, t)
			}
		}
	}
	return list
}
