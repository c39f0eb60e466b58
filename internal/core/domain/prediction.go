package domain

// PredictionInput carries the six raw feature values of a single candidate.
// Pointers distinguish "absent" from a legitimate zero: a nil field is a
// user input error, not a model invocation.
type PredictionInput struct {
	Age           *float64 `json:"age"`
	WeightKg      *float64 `json:"weight_kg"`
	HeightCm      *float64 `json:"height_cm"`
	Hemoglobin    *float64 `json:"hemoglobin_g_dl"`
	GenderCode    *float64 `json:"gender_code"`
	EducationCode *float64 `json:"education_code"`
}

// MissingFields lists the absent inputs in feature order.
func (in PredictionInput) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value *float64
	}{
		{"age", in.Age},
		{"weight_kg", in.WeightKg},
		{"height_cm", in.HeightCm},
		{"hemoglobin_g_dl", in.Hemoglobin},
		{"gender_code", in.GenderCode},
		{"education_code", in.EducationCode},
	} {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type PredictionResult struct {
	Eligible    bool    `json:"eligible"`
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}
