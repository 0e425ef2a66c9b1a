package growth

import (
	"time"
)

const (
	// MaxAgeMonths is the upper bound of the reference standards.
	MaxAgeMonths = 60

	daysPerMonth = 30
)

// AgeMode records how an Age was produced. It selects the default lookup policy.
type AgeMode int

const (
	// AgeDirect is a whole-month age supplied by the caller.
	AgeDirect AgeMode = iota
	// AgeFromDates is an age derived from a birth date and a test date.
	AgeFromDates
)

func (m AgeMode) String() string {
	if m == AgeFromDates {
		return "dates"
	}
	return "direct"
}

// Age is a resolved subject age.
type Age struct {
	// Months is the age used for table selection and lookup. In AgeFromDates mode it is
	// WholeMonths + Days/30.
	Months      float64 `json:"months" yaml:"months"`
	WholeMonths int     `json:"whole_months" yaml:"whole_months"`
	Days        int     `json:"days" yaml:"days"`
	Mode        AgeMode `json:"-" yaml:"-"`
}

// AgeInMonths returns a direct age of whole months.
func AgeInMonths(months int) (Age, error) {
	if months < 0 || months > MaxAgeMonths {
		return Age{}, inputErrorf("age", "%d months is outside [0, %d]", months, MaxAgeMonths)
	}
	return Age{
		Months:      float64(months),
		WholeMonths: months,
		Mode:        AgeDirect,
	}, nil
}

// AgeBetween computes the age at test from a birth date. Only the calendar dates are used.
func AgeBetween(birth, test time.Time) (Age, error) {
	by, bm, bd := birth.Date()
	ty, tm, td := test.Date()

	if ty < by || (ty == by && (tm < bm || (tm == bm && td < bd))) {
		return Age{}, inputErrorf("test_date", "%s is before birth date %s",
			test.Format(time.DateOnly), birth.Format(time.DateOnly))
	}

	months := (ty-by)*12 + int(tm-bm)
	days := td - bd
	if td < bd {
		months--
		// borrow the previous calendar month: its days past the birth day, plus td
		rest := daysIn(ty, tm-1) - bd
		if rest < 0 {
			rest = 0
		}
		days = rest + td
	}

	a := Age{
		Months:      float64(months) + float64(days)/daysPerMonth,
		WholeMonths: months,
		Days:        days,
		Mode:        AgeFromDates,
	}
	if a.Months > MaxAgeMonths {
		return Age{}, inputErrorf("age", "%.2f months is outside [0, %d]", a.Months, MaxAgeMonths)
	}
	return a, nil
}

// daysIn returns the number of days in month m of year y; m may be 0 (December of y-1).
func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
