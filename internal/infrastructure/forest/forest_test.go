package forest

import (
	"math"
	"testing"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

// separableSet builds a two-feature set where the second feature fully
// determines the label. The first feature is noise shared by both classes.
func separableSet() ([][]float64, []int) {
	var x [][]float64
	var y []int
	for i := 0; i < 20; i++ {
		noise := float64(i % 5)
		x = append(x, []float64{noise, 10 + float64(i%3)})
		y = append(y, 1)
		x = append(x, []float64{noise, 2 + float64(i%3)})
		y = append(y, 0)
	}
	return x, y
}

func TestTrainAndPredictSeparableData(t *testing.T) {
	x, y := separableSet()
	f, err := Train(x, y, Config{Trees: 30, MaxDepth: 6, Seed: 42})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	label, prob, err := f.Predict([]float64{2, 11})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if label != 1 {
		t.Fatalf("high-hemoglobin row predicted %d", label)
	}
	if prob < 0.5 || prob > 1 {
		t.Fatalf("probability out of range: %v", prob)
	}

	label, prob, err = f.Predict([]float64{2, 3})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if label != 0 {
		t.Fatalf("low row predicted %d", label)
	}
	if prob < 0.5 || prob > 1 {
		t.Fatalf("probability out of range: %v", prob)
	}
}

func TestTrainIsDeterministicForSeed(t *testing.T) {
	x, y := separableSet()

	first, err := Train(x, y, Config{Trees: 10, Seed: 7})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	second, err := Train(x, y, Config{Trees: 10, Seed: 7})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	p1, _ := first.PredictProba([]float64{1, 6})
	p2, _ := second.PredictProba([]float64{1, 6})
	if p1 != p2 {
		t.Fatalf("same seed gave different probabilities: %v vs %v", p1, p2)
	}

	i1, i2 := first.Importances(), second.Importances()
	for j := range i1 {
		if i1[j] != i2[j] {
			t.Fatalf("same seed gave different importances: %v vs %v", i1, i2)
		}
	}
}

func TestImportancesFavorInformativeFeature(t *testing.T) {
	x, y := separableSet()
	f, err := Train(x, y, Config{Trees: 30, Seed: 42})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	imp := f.Importances()
	if len(imp) != 2 {
		t.Fatalf("expected 2 importances, got %d", len(imp))
	}
	if imp[1] <= imp[0] {
		t.Fatalf("informative feature should dominate: %v", imp)
	}
	sum := imp[0] + imp[1]
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("importances should sum to 1, got %v", sum)
	}
}

func TestTrainRejectsEmptyInput(t *testing.T) {
	_, err := Train(nil, nil, DefaultConfig())
	if !domain.IsKind(err, domain.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestTrainRejectsMismatchedLabels(t *testing.T) {
	_, err := Train([][]float64{{1, 2}}, []int{0, 1}, DefaultConfig())
	if err == nil {
		t.Fatal("expected error for mismatched rows and labels")
	}
}

func TestPredictRejectsWrongWidth(t *testing.T) {
	x, y := separableSet()
	f, err := Train(x, y, Config{Trees: 5, Seed: 1})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	_, _, err = f.Predict([]float64{1, 2, 3})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
