package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/core/ports"
	"github.com/hemoboard/hemoboard/internal/infrastructure/features"
)

const (
	predictionLabelEligible    = "Éligible"
	predictionLabelNonEligible = "Non éligible"
)

// PredictionService answers eligibility queries against a model trained
// once at startup. The scaler is the one fitted on the training batch, so
// inference inputs go through the exact training-time transform.
type PredictionService struct {
	model  ports.EligibilityModel
	scaler *features.Scaler
}

func NewPredictionService(model ports.EligibilityModel, scaler *features.Scaler) *PredictionService {
	return &PredictionService{model: model, scaler: scaler}
}

func (s *PredictionService) Predict(_ context.Context, in domain.PredictionInput) (*domain.PredictionResult, error) {
	if missing := in.MissingFields(); len(missing) > 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "predict eligibility",
			fmt.Errorf("missing fields: %s", strings.Join(missing, ", ")))
	}

	row := []float64{*in.Age, *in.WeightKg, *in.HeightCm, *in.Hemoglobin, *in.GenderCode, *in.EducationCode}
	if s.scaler != nil {
		row = s.scaler.Transform(row)
	}

	label, probability, err := s.model.Predict(row)
	if err != nil {
		return nil, err
	}

	result := &domain.PredictionResult{
		Eligible:    label == 1,
		Label:       predictionLabelNonEligible,
		Probability: probability,
	}
	if result.Eligible {
		result.Label = predictionLabelEligible
	}
	return result, nil
}

// Importances returns the model's feature importances paired with the
// feature names, sorted by decreasing weight.
func (s *PredictionService) Importances(context.Context) []domain.FeatureImportance {
	raw := s.model.Importances()
	out := make([]domain.FeatureImportance, 0, len(raw))
	for i, importance := range raw {
		name := fmt.Sprintf("feature_%d", i)
		if i < len(features.PredictionFeatures) {
			name = features.PredictionFeatures[i]
		}
		out = append(out, domain.FeatureImportance{Feature: name, Importance: importance})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}
