package growth

import (
	"strings"
)

// MethodCorrectionCM is the length/height offset applied when the measuring position does
// not match the standard for the subject's age.
const MethodCorrectionCM = 0.7

// Method is the position the subject was measured in.
type Method string

const (
	Standing  Method = "standing"
	LyingDown Method = "lying_down"
)

// ParseMethod accepts standing/lying_down and the labels used by the training data.
func ParseMethod(s string) (Method, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	switch v {
	case "standing", "stand", "berdiri":
		return Standing, nil
	case "lying_down", "lying", "recumbent", "terlentang":
		return LyingDown, nil
	}
	return "", inputErrorf("method", "unknown value %q", s)
}

// StandardMethod returns the position the reference standard expects at the given age.
func StandardMethod(months float64) Method {
	if StandardFor(months) == Length {
		return LyingDown
	}
	return Standing
}

// Correct returns the measurement adjusted to the age-appropriate position and the signed
// adjustment applied. Any mismatch subtracts MethodCorrectionCM:
//
//	age < 24, standing     -0.7
//	age >= 24, lying down  -0.7
func Correct(value float64, method Method, months float64) (corrected, adjustment float64) {
	if method == StandardMethod(months) {
		return value, 0
	}
	return value - MethodCorrectionCM, -MethodCorrectionCM
}
