package growth

import (
	"fmt"
	"log/slog"
	"math"
)

// Subject is one measurement to assess.
type Subject struct {
	Sex    Sex
	Value  float64 // cm, as measured
	Method Method
	Age    Age
}

// Validate checks the subject before any lookup is made.
func (s Subject) Validate() error {
	if s.Sex != Male && s.Sex != Female {
		return inputErrorf("sex", "unknown value %q", s.Sex)
	}
	if s.Method != Standing && s.Method != LyingDown {
		return inputErrorf("method", "unknown value %q", s.Method)
	}
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) || s.Value <= 0 {
		return inputErrorf("measurement", "%g cm must be a positive number", s.Value)
	}
	if math.IsNaN(s.Age.Months) || s.Age.Months < 0 || s.Age.Months > MaxAgeMonths {
		return inputErrorf("age", "%g months is outside [0, %d]", s.Age.Months, MaxAgeMonths)
	}
	return nil
}

// Features is the input handed to the secondary classifier. Value is the uncorrected
// measurement the classifier was trained on.
type Features struct {
	Sex       Sex
	Value     float64
	Method    Method
	AgeMonths float64
	ZScore    float64
}

// Labeler produces the secondary, model-derived label for an assessment.
type Labeler interface {
	Label(f Features) (string, error)
}

// Result is the outcome of one assessment.
type Result struct {
	Sex        Sex      `json:"sex" yaml:"sex"`
	Method     Method   `json:"method" yaml:"method"`
	Age        Age      `json:"age" yaml:"age"`
	Standard   Standard `json:"standard" yaml:"standard"`
	Lookup     string   `json:"lookup" yaml:"lookup"`
	Reference  Row      `json:"reference" yaml:"reference"`
	Measured   float64  `json:"measured_cm" yaml:"measured_cm"`
	Adjustment float64  `json:"adjustment_cm" yaml:"adjustment_cm"`
	Corrected  float64  `json:"corrected_cm" yaml:"corrected_cm"`
	ZScore     float64  `json:"z_score" yaml:"z_score"`
	ZRounded   float64  `json:"z_score_rounded" yaml:"z_score_rounded"`
	Category   Category `json:"category" yaml:"category"`
	Label      string   `json:"label" yaml:"label"`
	ModelLabel string   `json:"model_label,omitempty" yaml:"model_label,omitempty"`
	Advice     string   `json:"advice" yaml:"advice"`
}

// Option configures an Assessor.
type Option func(*Assessor)

// WithLabeler sets the secondary classifier. Without one, results carry no model label.
func WithLabeler(l Labeler) Option {
	return func(a *Assessor) { a.labeler = l }
}

// WithLookupPolicy overrides the default LookupAuto policy.
func WithLookupPolicy(p LookupPolicy) Option {
	return func(a *Assessor) { a.lookup = p }
}

// WithLocale selects the language of labels and advice.
func WithLocale(l Locale) Option {
	return func(a *Assessor) { a.locale = l }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assessor) { a.logger = l }
}

// Assessor holds the reference tables and classifier loaded at startup. It has no mutable
// state and is safe for concurrent use.
type Assessor struct {
	refs    *ReferenceSet
	labeler Labeler
	lookup  LookupPolicy
	locale  Locale
	logger  *slog.Logger
}

// NewAssessor returns an Assessor over refs.
func NewAssessor(refs *ReferenceSet, opts ...Option) (*Assessor, error) {
	if refs == nil {
		return nil, fmt.Errorf("reference set required")
	}
	a := &Assessor{
		refs:   refs,
		locale: Indonesian,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// References returns the reference set the assessor was built with.
func (a *Assessor) References() *ReferenceSet { return a.refs }

// Assess runs the full chain for one subject: table selection, row lookup, position
// correction, z-score, banding and the secondary label.
func (a *Assessor) Assess(s Subject) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	months := s.Age.Months
	table, err := a.refs.Select(s.Sex, months)
	if err != nil {
		return nil, err
	}

	policy := a.lookup.resolve(s.Age.Mode)
	row, err := table.Lookup(months, policy)
	if err != nil {
		return nil, err
	}

	corrected, adj := Correct(s.Value, s.Method, months)
	z, err := ZScore(corrected, row)
	if err != nil {
		return nil, err
	}
	cat := Classify(z)

	res := &Result{
		Sex:        s.Sex,
		Method:     s.Method,
		Age:        s.Age,
		Standard:   table.Standard,
		Lookup:     policy.String(),
		Reference:  row,
		Measured:   s.Value,
		Adjustment: adj,
		Corrected:  corrected,
		ZScore:     z,
		ZRounded:   math.Round(z*100) / 100,
		Category:   cat,
		Label:      a.locale.Label(cat),
		Advice:     a.locale.Advice(cat),
	}

	if a.labeler != nil {
		lbl, err := a.labeler.Label(Features{
			Sex:       s.Sex,
			Value:     s.Value,
			Method:    s.Method,
			AgeMonths: months,
			ZScore:    z,
		})
		if err != nil {
			return nil, fmt.Errorf("classifying assessment: %w", err)
		}
		res.ModelLabel = lbl
	}

	a.logger.Debug("assessed",
		"sex", s.Sex,
		"age", months,
		"standard", table.Standard,
		"lookup", res.Lookup,
		"row", row.Month,
		"corrected", corrected,
		"z", z,
		"category", cat,
	)
	return res, nil
}
