package growth

import "math"

const degenerateS = 1e-6

// ZScore converts measurement x to a z-score with the LMS parameters of a reference row.
//
// A row whose S is effectively zero has no spread; it yields 0 when L is also zero and
// (x-M)/(L+1e-6) otherwise, which is not the LMS transform but is kept for compatibility
// with the published results of this tool.
func ZScore(x float64, r Row) (float64, error) {
	if r.M <= 0 || math.IsNaN(r.M) {
		return 0, &DomainError{Field: "M", Value: r.M, Reason: "median must be positive"}
	}
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, inputErrorf("measurement", "%g cm must be a positive number", x)
	}

	switch {
	case math.Abs(r.S) < degenerateS:
		if r.L == 0 {
			return 0, nil
		}
		return (x - r.M) / (r.L + degenerateS), nil
	case r.L != 0:
		return (math.Pow(x/r.M, r.L) - 1) / (r.L * r.S), nil
	default:
		return math.Log(x/r.M) / r.S, nil
	}
}

// ValueAt returns the measurement whose z-score against r is z. It is the inverse of ZScore
// for rows with a non-degenerate S.
func ValueAt(z float64, r Row) float64 {
	if r.L == 0 {
		return r.M * math.Exp(z*r.S)
	}
	return r.M * math.Pow(1+r.L*r.S*z, 1/r.L)
}

// Category is a height-for-age band.
type Category string

const (
	SeverelyStunted Category = "severely_stunted"
	Stunted         Category = "stunted"
	Normal          Category = "normal"
	Tall            Category = "tall"
)

// categories lists every band from lowest to highest.
var categories = []Category{SeverelyStunted, Stunted, Normal, Tall}

// Classify bands a height-for-age z-score:
//
//	z < -3        severely stunted
//	-3 <= z < -2  stunted
//	-2 <= z <= 3  normal
//	z > 3         tall
func Classify(z float64) Category {
	switch {
	case z < -3:
		return SeverelyStunted
	case z < -2:
		return Stunted
	case z <= 3:
		return Normal
	default:
		return Tall
	}
}
