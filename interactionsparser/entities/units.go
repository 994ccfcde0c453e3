package entities

import "errors"

// ErrInvalidMeasurement is returned when a biometric value makes a
// derived quantity undefined, e.g. a non-positive height for BMI.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// FeetInchesToCm converts an imperial height to centimeters.
func FeetInchesToCm(feet, inches float64) float64 {
	return (feet*12 + inches) * 2.54
}

// PoundsToKg converts an imperial weight to kilograms.
func PoundsToKg(pounds float64) float64 {
	return pounds * 0.453592
}

// BMI computes weightKg / (heightCm/100)^2. Both measurements must be
// positive, otherwise the result is undefined and ErrInvalidMeasurement
// is returned.
func BMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 {
		return 0, ErrInvalidMeasurement
	}
	if weightKg <= 0 {
		return 0, ErrInvalidMeasurement
	}
	heightM := heightCm / 100
	return weightKg / (heightM * heightM), nil
}
