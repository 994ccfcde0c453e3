package entities

// BiometricProfile carries the user measurements embedded in a
// drug-information prompt. Height and weight are stored in metric;
// imperial inputs are converted at the edge before the profile is built.
type BiometricProfile struct {
	HeightCm   float64 `json:"heightCm"`
	WeightKg   float64 `json:"weightKg"`
	AgeYears   int     `json:"ageYears"`
	IsPregnant bool    `json:"isPregnant"`
}

// BMI recomputes the body mass index from the stored measurements.
// It is never cached on the profile so it cannot go stale.
func (p BiometricProfile) BMI() (float64, error) {
	return BMI(p.HeightCm, p.WeightKg)
}
