package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rafianfasaa/stunting/pkg/growth"
)

// assessRequest is the raw subject as entered on the command line or posted to the API.
// Either AgeMonths or both dates must be set.
type assessRequest struct {
	Sex       string  `json:"sex" yaml:"sex"`
	HeightCM  float64 `json:"height_cm" yaml:"height_cm"`
	Method    string  `json:"method" yaml:"method"`
	AgeMonths *int    `json:"age_months,omitempty" yaml:"age_months,omitempty"`
	BirthDate string  `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	TestDate  string  `json:"test_date,omitempty" yaml:"test_date,omitempty"`
}

func (r *assessRequest) subject() (growth.Subject, error) {
	var s growth.Subject

	sex, err := growth.ParseSex(r.Sex)
	if err != nil {
		return s, err
	}
	method, err := growth.ParseMethod(r.Method)
	if err != nil {
		return s, err
	}
	age, err := r.age()
	if err != nil {
		return s, err
	}

	s = growth.Subject{
		Sex:    sex,
		Value:  r.HeightCM,
		Method: method,
		Age:    age,
	}
	return s, s.Validate()
}

func (r *assessRequest) age() (growth.Age, error) {
	hasDates := r.BirthDate != "" || r.TestDate != ""
	switch {
	case r.AgeMonths != nil && hasDates:
		return growth.Age{}, &growth.InputError{Field: "age", Reason: "set either age in months or birth and test dates, not both"}
	case r.AgeMonths != nil:
		return growth.AgeInMonths(*r.AgeMonths)
	case hasDates:
		birth, err := parseDate("birth_date", r.BirthDate)
		if err != nil {
			return growth.Age{}, err
		}
		test, err := parseDate("test_date", r.TestDate)
		if err != nil {
			return growth.Age{}, err
		}
		return growth.AgeBetween(birth, test)
	}
	return growth.Age{}, &growth.InputError{Field: "age", Reason: "age in months or birth and test dates required"}
}

func parseDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, &growth.InputError{Field: field, Reason: "required"}
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, &growth.InputError{Field: field, Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", v)}
	}
	return t, nil
}

// subjectKey identifies the normalized subject, used to memoize assessments.
func subjectKey(s growth.Subject) string {
	return fmt.Sprintf("%s|%s|%g|%g|%d", s.Sex, s.Method, s.Value, s.Age.Months, s.Age.Mode)
}
