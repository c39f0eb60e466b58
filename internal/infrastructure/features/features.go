// Package features turns raw donor records into model-ready numeric
// matrices: date filtering, mean imputation, categorical encoding and
// per-batch z-score standardization.
package features

import (
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

// ClusteringFeatures is the fixed column order fed to the segmentation
// pipeline.
var ClusteringFeatures = []string{"age", "poids", "taille", "genre", "deja_donne", "taux_hb"}

// PredictionFeatures is the fixed column order the eligibility classifier
// is trained and queried with.
var PredictionFeatures = []string{"age", "poids", "taille", "taux_hb", "genre", "niveau_etude"}

var genderCodes = map[string]float64{"homme": 0, "femme": 1}

var donatedCodes = map[string]float64{"oui": 1, "non": 0}

var educationCodes = map[string]float64{
	"aucun":              0,
	"primaire":           1,
	"secondaire":         2,
	"universitaire":      3,
	"master":             4,
	"doctorat":           5,
	"pas precise":        0,
	"etudes superieures": 3,
}

// encode maps a categorical value through its fixed dictionary. Unknown
// categories map to 0 rather than erroring; downstream code relies on that,
// so the caller only gets a flag to count and log the fallback.
func encode(codes map[string]float64, value string) (float64, bool) {
	if code, ok := codes[value]; ok {
		return code, false
	}
	return 0, true
}

func GenderCode(gender string) float64 {
	code, _ := encode(genderCodes, gender)
	return code
}

func EducationCode(education string) float64 {
	code, _ := encode(educationCodes, education)
	return code
}

// FilterByDate keeps rows whose form date falls within [from, to]
// inclusive. Rows without a parseable date are dropped before filtering.
// With both bounds zero the input is returned unfiltered; from > to yields
// an empty batch, not an error.
func FilterByDate(donors []domain.DonorRecord, from, to time.Time) []domain.DonorRecord {
	if from.IsZero() && to.IsZero() {
		return donors
	}
	out := make([]domain.DonorRecord, 0, len(donors))
	for _, d := range donors {
		if !d.HasFormDate {
			continue
		}
		if !from.IsZero() && d.FormDate.Before(from) {
			continue
		}
		if !to.IsZero() && d.FormDate.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Scaler holds the per-column standardization parameters of the batch it
// was fitted on, so inference can reuse the training-time transform.
type Scaler struct {
	Means  []float64
	Scales []float64
}

func FitScaler(m *mat.Dense) *Scaler {
	rows, cols := m.Dims()
	s := &Scaler{Means: make([]float64, cols), Scales: make([]float64, cols)}
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		s.Means[j] = stat.Mean(col, nil)
		s.Scales[j] = stat.PopStdDev(col, nil)
	}
	return s
}

// Transform z-scores a single row in place-safe fashion. Zero-variance
// columns standardize to zero.
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		if s.Scales[j] == 0 {
			out[j] = 0
			continue
		}
		out[j] = (v - s.Means[j]) / s.Scales[j]
	}
	return out
}

func (s *Scaler) TransformMatrix(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		out.SetRow(i, s.Transform(m.RawRowView(i)))
	}
	return out
}

// Batch is the prepared clustering input: the standardized feature matrix
// and the imputed, row-aligned original records.
type Batch struct {
	Rows         []domain.DonorRecord
	Matrix       *mat.Dense
	Standardized *mat.Dense
	Scaler       *Scaler
}

// PrepareClustering builds the six-column clustering batch: filter, impute
// numeric columns with the batch mean rounded to one decimal, encode the
// categorical columns, standardize over the current batch. Statistics are
// never reused across calls, so values from different windows are not
// comparable.
func PrepareClustering(donors []domain.DonorRecord, from, to time.Time, logger *slog.Logger) *Batch {
	rows := FilterByDate(donors, from, to)
	if len(rows) == 0 {
		return &Batch{}
	}

	ages := imputedColumn(rows, func(d domain.DonorRecord) float64 { return d.Age })
	weights := imputedColumn(rows, func(d domain.DonorRecord) float64 { return d.WeightKg })
	heights := imputedColumn(rows, func(d domain.DonorRecord) float64 { return d.HeightCm })
	hbs := imputedColumn(rows, func(d domain.DonorRecord) float64 { return d.Hemoglobin })

	var genderDefaults, donatedDefaults int
	m := mat.NewDense(len(rows), len(ClusteringFeatures), nil)
	enriched := make([]domain.DonorRecord, len(rows))
	for i, d := range rows {
		gender, defaulted := encode(genderCodes, d.Gender)
		if defaulted {
			genderDefaults++
		}
		donated, defaulted := encode(donatedCodes, d.AlreadyDonated)
		if defaulted {
			donatedDefaults++
		}
		m.SetRow(i, []float64{ages[i], weights[i], heights[i], gender, donated, hbs[i]})

		d.Age, d.WeightKg, d.HeightCm, d.Hemoglobin = ages[i], weights[i], heights[i], hbs[i]
		enriched[i] = d
	}
	logDefaults(logger, "genre", genderDefaults)
	logDefaults(logger, "deja_donne", donatedDefaults)

	scaler := FitScaler(m)
	return &Batch{
		Rows:         enriched,
		Matrix:       m,
		Standardized: scaler.TransformMatrix(m),
		Scaler:       scaler,
	}
}

// TrainingSet extracts the prediction features and binarized labels from
// the full dataset. Rows missing any required field are dropped, not
// imputed.
func TrainingSet(donors []domain.DonorRecord) (x [][]float64, y []int) {
	for _, d := range donors {
		if domain.Missing(d.Age) || domain.Missing(d.WeightKg) ||
			domain.Missing(d.HeightCm) || domain.Missing(d.Hemoglobin) {
			continue
		}
		gender, _ := encode(genderCodes, d.Gender)
		education, _ := encode(educationCodes, d.Education)
		x = append(x, []float64{d.Age, d.WeightKg, d.HeightCm, d.Hemoglobin, gender, education})
		label := 0
		if d.Eligibility == domain.EligibilityEligible {
			label = 1
		}
		y = append(y, label)
	}
	return x, y
}

// imputedColumn replaces missing values with the mean of the present ones,
// rounded to one decimal. Columns that are entirely missing stay NaN-free
// only if at least one value is present, matching the source behavior.
func imputedColumn(rows []domain.DonorRecord, pick func(domain.DonorRecord) float64) []float64 {
	out := make([]float64, len(rows))
	var sum float64
	var n int
	for i, d := range rows {
		out[i] = pick(d)
		if !math.IsNaN(out[i]) {
			sum += out[i]
			n++
		}
	}
	if n == 0 {
		for i := range out {
			out[i] = 0
		}
		return out
	}
	fill := round1(sum / float64(n))
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = fill
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func logDefaults(logger *slog.Logger, column string, count int) {
	if logger == nil || count == 0 {
		return
	}
	logger.Warn("categorical_defaulted", "column", column, "count", count)
}
