package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/infrastructure/features"
)

func TestPredictRejectsMissingFields(t *testing.T) {
	svc := NewPredictionService(&fakeModel{}, nil)

	_, err := svc.Predict(context.Background(), domain.PredictionInput{
		Age:      ptr(30),
		WeightKg: ptr(70),
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if !strings.Contains(err.Error(), "height_cm") {
		t.Fatalf("error should name the missing field: %v", err)
	}
}

func TestPredictStandardizesWithTrainingScaler(t *testing.T) {
	scaler := &features.Scaler{
		Means:  []float64{30, 70, 170, 13, 0.5, 2},
		Scales: []float64{10, 10, 10, 1, 0.5, 1},
	}
	model := &fakeModel{label: 1, probability: 0.85}
	svc := NewPredictionService(model, scaler)

	result, err := svc.Predict(context.Background(), domain.PredictionInput{
		Age:           ptr(40),
		WeightKg:      ptr(80),
		HeightCm:      ptr(180),
		Hemoglobin:    ptr(14),
		GenderCode:    ptr(0),
		EducationCode: ptr(3),
	})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if !result.Eligible || result.Label != "Éligible" || result.Probability != 0.85 {
		t.Fatalf("result = %+v", result)
	}

	want := []float64{1, 1, 1, 1, -1, 1}
	if len(model.lastRow) != len(want) {
		t.Fatalf("model row = %v", model.lastRow)
	}
	for i := range want {
		if model.lastRow[i] != want[i] {
			t.Fatalf("standardized row = %v, want %v", model.lastRow, want)
		}
	}
}

func TestPredictNegativeLabel(t *testing.T) {
	svc := NewPredictionService(&fakeModel{label: 0, probability: 0.7}, nil)

	result, err := svc.Predict(context.Background(), domain.PredictionInput{
		Age:           ptr(30),
		WeightKg:      ptr(70),
		HeightCm:      ptr(175),
		Hemoglobin:    ptr(11),
		GenderCode:    ptr(1),
		EducationCode: ptr(2),
	})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if result.Eligible || result.Label != "Non éligible" {
		t.Fatalf("result = %+v", result)
	}
}

func TestImportancesAreNamedAndSorted(t *testing.T) {
	model := &fakeModel{importances: []float64{0.1, 0.05, 0.15, 0.5, 0.12, 0.08}}
	svc := NewPredictionService(model, nil)

	out := svc.Importances(context.Background())
	if len(out) != 6 {
		t.Fatalf("expected 6 importances, got %d", len(out))
	}
	if out[0].Feature != "taux_hb" || out[0].Importance != 0.5 {
		t.Fatalf("top importance = %+v", out[0])
	}
	for i := 1; i < len(out); i++ {
		if out[i].Importance > out[i-1].Importance {
			t.Fatalf("importances not sorted: %+v", out)
		}
	}
}
